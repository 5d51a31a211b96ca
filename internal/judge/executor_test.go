package judge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/store"

	"github.com/stretchr/testify/require"
)

// shLanguage copies the submitted source verbatim to the executable path
// and marks it executable, standing in for a real compiler so these tests
// never depend on a toolchain being installed.
func shLanguage() config.Language {
	return config.Language{
		Name:     "sh",
		FileName: "main.sh",
		Command: []string{
			"/bin/sh", "-c", `cp "$1" "$2" && chmod +x "$2"`, "--",
			"%INPUT%", "%OUTPUT%",
		},
	}
}

func failLanguage() config.Language {
	return config.Language{
		Name:     "broken",
		FileName: "main.sh",
		Command:  []string{"/bin/sh", "-c", "exit 1"},
	}
}

func writeCaseFiles(t *testing.T, dir string, content string) (inputPath, answerPath string) {
	t.Helper()
	inputPath = filepath.Join(dir, "in.txt")
	answerPath = filepath.Join(dir, "ans.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte(content), 0o644))
	require.NoError(t, os.WriteFile(answerPath, []byte(content), 0o644))
	return inputPath, answerPath
}

const catSource = "#!/bin/sh\ncat\n"
const sleepSource = "#!/bin/sh\nsleep 2\n"

func newTestState(problemIDs []uint32, caseCounts []int) *core.State {
	return core.NewState(store.Disabled(), problemIDs, caseCounts)
}

func TestExecuteSimpleAccept(t *testing.T) {
	dir := t.TempDir()
	in1, ans1 := writeCaseFiles(t, mkdir(t, dir, "c1"), "hello\n")
	in2, ans2 := writeCaseFiles(t, mkdir(t, dir, "c2"), "world\n")

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:   0,
			Name: "echo",
			Type: config.TypeStandard,
			Cases: []config.Case{
				{Score: 50, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 2_000_000},
				{Score: 50, InputFile: in2, AnswerFile: ans2, TimeLimitUS: 2_000_000},
			},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{2})

	sub := core.PostJob{SourceCode: catSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.Accepted, job.Result)
	require.InDelta(t, 100.0, job.Score, 1e-3)
	require.Len(t, job.Cases, 3)
	require.Equal(t, core.CompilationSuccess, job.Cases[0].Result)
	require.Equal(t, core.Accepted, job.Cases[1].Result)
	require.Equal(t, core.Accepted, job.Cases[2].Result)
}

func TestExecuteWrongAnswer(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "in.txt")
	ans1 := filepath.Join(dir, "ans.txt")
	require.NoError(t, os.WriteFile(in1, []byte("hello\n"), 0o644))
	require.NoError(t, os.WriteFile(ans1, []byte("goodbye\n"), 0o644))

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:    0,
			Name:  "echo",
			Type:  config.TypeStandard,
			Cases: []config.Case{{Score: 100, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 2_000_000}},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{1})

	sub := core.PostJob{SourceCode: catSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.WrongAnswer, job.Result)
	require.Equal(t, core.WrongAnswer, job.Cases[1].Result)
}

func TestExecuteCompilationError(t *testing.T) {
	dir := t.TempDir()
	in1, ans1 := writeCaseFiles(t, dir, "x\n")

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:    0,
			Name:  "echo",
			Type:  config.TypeStandard,
			Cases: []config.Case{{Score: 100, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 2_000_000}},
		}},
		Languages: []config.Language{failLanguage()},
	}
	state := newTestState([]uint32{0}, []int{1})

	sub := core.PostJob{SourceCode: catSource, Language: "broken", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.CompilationError, job.Result)
	require.Equal(t, core.CompilationError, job.Cases[0].Result)
	// every case is Skipped, not run, when compilation fails.
	require.Equal(t, core.Skipped, job.Cases[1].Result)
}

func TestExecuteTimeLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	in1, ans1 := writeCaseFiles(t, dir, "x\n")

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:    0,
			Name:  "sleepy",
			Type:  config.TypeStandard,
			Cases: []config.Case{{Score: 100, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 10_000}},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{1})

	sub := core.PostJob{SourceCode: sleepSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.TimeLimitExceeded, job.Result)
	require.Equal(t, core.TimeLimitExceeded, job.Cases[1].Result)
}

const conditionalSleepSource = "#!/bin/sh\nread line\nif [ \"$line\" = \"slow\" ]; then sleep 2; fi\necho \"$line\"\n"

// TestExecuteTimeLimitExceededDoesNotSkipLaterCases guards against
// conflating a fatal per-case verdict with compilation failure: only a
// failed compile may skip the remaining cases, grounded on
// function_post_jobs.rs's post_jobs_action, which gates skipping solely on
// job_result == CompilationError in both the packed and linear loops.
func TestExecuteTimeLimitExceededDoesNotSkipLaterCases(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "in1.txt")
	ans1 := filepath.Join(dir, "ans1.txt")
	require.NoError(t, os.WriteFile(in1, []byte("slow\n"), 0o644))
	require.NoError(t, os.WriteFile(ans1, []byte("slow\n"), 0o644))

	in2 := filepath.Join(dir, "in2.txt")
	ans2 := filepath.Join(dir, "ans2.txt")
	require.NoError(t, os.WriteFile(in2, []byte("fast\n"), 0o644))
	require.NoError(t, os.WriteFile(ans2, []byte("fast\n"), 0o644))

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:   0,
			Name: "maybe-slow",
			Type: config.TypeStandard,
			Cases: []config.Case{
				{Score: 50, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 10_000},
				{Score: 50, InputFile: in2, AnswerFile: ans2, TimeLimitUS: 2_000_000},
			},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{2})

	sub := core.PostJob{SourceCode: conditionalSleepSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.TimeLimitExceeded, job.Result)
	require.Equal(t, core.TimeLimitExceeded, job.Cases[1].Result)
	// case 2 still ran despite case 1's fatal verdict.
	require.Equal(t, core.Accepted, job.Cases[2].Result)
}

// TestExecuteTimeLimitExceededDoesNotSkipIndependentPack checks the same
// non-suppression across pack boundaries: a fatal verdict in pack i must
// not skip pack i+1, per spec.md's "pack boundaries reset this".
func TestExecuteTimeLimitExceededDoesNotSkipIndependentPack(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "in1.txt")
	ans1 := filepath.Join(dir, "ans1.txt")
	require.NoError(t, os.WriteFile(in1, []byte("slow\n"), 0o644))
	require.NoError(t, os.WriteFile(ans1, []byte("slow\n"), 0o644))

	in2, ans2 := writeCaseFiles(t, mkdir(t, dir, "c2"), "fast\n")

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:   0,
			Name: "maybe-slow-packed",
			Type: config.TypeStandard,
			Cases: []config.Case{
				{Score: 50, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 10_000},
				{Score: 50, InputFile: in2, AnswerFile: ans2, TimeLimitUS: 2_000_000},
			},
			Misc: config.Misc{Packing: [][]int{{1}, {2}}},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{2})

	sub := core.PostJob{SourceCode: conditionalSleepSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Equal(t, core.TimeLimitExceeded, job.Cases[1].Result)
	require.Equal(t, core.Accepted, job.Cases[2].Result)
}

func TestExecutePackingSkipsRemainderOfFailedPack(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "in1.txt")
	ans1 := filepath.Join(dir, "ans1.txt")
	require.NoError(t, os.WriteFile(in1, []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(ans1, []byte("b\n"), 0o644)) // mismatched: case 1 fails

	in2, ans2 := writeCaseFiles(t, mkdir(t, dir, "c2"), "c\n")
	in3, ans3 := writeCaseFiles(t, mkdir(t, dir, "c3"), "d\n")

	cfg := &config.Config{
		Problems: []config.Problem{{
			ID:   0,
			Name: "packed",
			Type: config.TypeStandard,
			Cases: []config.Case{
				{Score: 40, InputFile: in1, AnswerFile: ans1, TimeLimitUS: 2_000_000},
				{Score: 30, InputFile: in2, AnswerFile: ans2, TimeLimitUS: 2_000_000},
				{Score: 30, InputFile: in3, AnswerFile: ans3, TimeLimitUS: 2_000_000},
			},
			Misc: config.Misc{Packing: [][]int{{1, 2}, {3}}},
		}},
		Languages: []config.Language{shLanguage()},
	}
	state := newTestState([]uint32{0}, []int{3})

	sub := core.PostJob{SourceCode: catSource, Language: "sh", UserID: 0, ProblemID: 0}
	job, err := Execute(state, cfg, sub, false, 0)
	require.NoError(t, err)
	require.Len(t, job.Cases, 4) // compile + 3 cases
	require.Equal(t, core.WrongAnswer, job.Cases[1].Result)
	require.Equal(t, core.Skipped, job.Cases[2].Result) // same pack, skipped
	require.Equal(t, core.Accepted, job.Cases[3].Result) // independent pack, still runs
}

func mkdir(t *testing.T, base, name string) string {
	t.Helper()
	p := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(p, 0o755))
	return p
}
