package judge

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/metrics"
)

// caseContext bundles the parts of a single job evaluation that every case
// needs: the problem being judged, its two distinct indices (problemIdx into
// the config's problem list, for the global case-time table; contestProblemIdx
// into the owning contest's problem_ids, for the submitting user's own
// shortest_times row — these can differ whenever a contest's problem_ids is a
// reordered subset of the full config, see DESIGN.md), and the compiled
// program to run.
type caseContext struct {
	state             *core.State
	problem           config.Problem
	problemIdx        int
	contestProblemIdx int
	sub               core.PostJob
	exePath           string
}

// runCase executes the compiled program against one test case and scores it,
// grounded on the source's run_test_case. fatal is non-zero (TimeLimitExceeded,
// RuntimeError or SystemError) when the case failure must also become the
// job's overall verdict.
func runCase(ctx caseContext, c config.Case, caseIdx int) (result core.Verdict, info string, timeUsedMicros int64, fatal core.Verdict, scoreAwarded float32) {
	caseStart := time.Now()
	defer func() {
		metrics.CaseDuration.WithLabelValues(ctx.problem.Name, string(ctx.problem.Type)).Observe(time.Since(caseStart).Seconds())
	}()

	scratch, err := os.MkdirTemp("", "csoj-case-")
	if err != nil {
		return core.SystemError, "", 0, core.SystemError, 0
	}
	defer os.RemoveAll(scratch)

	inFile, err := os.Open(c.InputFile)
	if err != nil {
		return core.SystemError, "", 0, core.SystemError, 0
	}
	defer inFile.Close()

	outPath := filepath.Join(scratch, "test.out")
	outFile, err := os.Create(outPath)
	if err != nil {
		return core.SystemError, "", 0, core.SystemError, 0
	}

	cmd := exec.Command(ctx.exePath)
	cmd.Stdin = inFile
	cmd.Stdout = outFile
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		outFile.Close()
		return core.SystemError, "", 0, core.SystemError, 0
	}

	start := time.Now()
	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	timeout := time.Duration(c.TimeLimitUS) * time.Microsecond
	select {
	case err := <-waitErr:
		outFile.Close()
		if err != nil {
			return core.RuntimeError, "", 0, core.RuntimeError, 0
		}
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		<-waitErr
		outFile.Close()
		return core.TimeLimitExceeded, "", 0, core.TimeLimitExceeded, 0
	}
	elapsedMicros := time.Since(start).Microseconds()

	switch ctx.problem.Type {
	case config.TypeStandard:
		accepted, cerr := compareStandard(outPath, c.AnswerFile)
		if cerr != nil {
			return core.SystemError, "", 0, core.SystemError, 0
		}
		return scored(accepted, c.Score, 1.0)

	case config.TypeStrict:
		accepted, cerr := compareStrict(outPath, c.AnswerFile)
		if cerr != nil {
			return core.SystemError, "", 0, core.SystemError, 0
		}
		return scored(accepted, c.Score, 1.0)

	case config.TypeSPJ:
		accepted, spjInfo, spjErr := runSPJ(ctx.problem.Misc.SpecialJudge, outPath, c.AnswerFile)
		if spjErr {
			return core.SPJError, "", 0, 0, 0
		}
		result, _, _, _, awarded := scored(accepted, c.Score, 1.0)
		return result, spjInfo, 0, 0, awarded

	case config.TypeDynamicRanking:
		ratio := float32(1.0)
		if ctx.problem.Misc.DynamicRankingRatio != nil {
			ratio = 1.0 - *ctx.problem.Misc.DynamicRankingRatio
		}
		accepted, cerr := compareStandard(outPath, c.AnswerFile)
		if cerr != nil {
			return core.SystemError, "", 0, core.SystemError, 0
		}

		ctx.state.RecordCaseTime(ctx.problemIdx, caseIdx, elapsedMicros)
		if ctx.contestProblemIdx >= 0 {
			ctx.state.WithContest(ctx.sub.ContestID, func(contest *core.Contest) bool {
				userIdx := contest.IndexOfUser(ctx.sub.UserID)
				if userIdx < 0 {
					return false
				}
				row := contest.Users[userIdx].ShortestTimes
				if ctx.contestProblemIdx >= len(row) || caseIdx >= len(row[ctx.contestProblemIdx]) {
					return false
				}
				if elapsedMicros < row[ctx.contestProblemIdx][caseIdx] {
					row[ctx.contestProblemIdx][caseIdx] = elapsedMicros
					return true
				}
				return false
			})
		}

		result, _, _, _, awarded := scored(accepted, c.Score, ratio)
		return result, "", elapsedMicros, 0, awarded

	default:
		return core.SystemError, "", 0, core.SystemError, 0
	}
}

func scored(accepted bool, caseScore, ratio float32) (core.Verdict, string, int64, core.Verdict, float32) {
	if accepted {
		return core.Accepted, "", 0, 0, caseScore * ratio
	}
	return core.WrongAnswer, "", 0, 0, 0
}
