// Package judge implements the Job Executor (C6) and Contest Updater (C7):
// compiling and running a submission against a problem's test cases under
// packing rules, and applying the resulting score to the submitting user's
// contest standing. Grounded on the source's post_jobs_action/run_test_case
// pair (jobs_module/function_post_jobs.rs).
package judge

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/csoj/csoj/internal/apierr"
	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/metrics"
)

const scoreEpsilon = 1e-3

// CheckSubmission runs the POST /jobs precondition gates (spec.md §4.5):
// the submitting user must exist; if the submission targets a real contest,
// the user and problem must be contest members, the current time must fall
// within the contest window, and the per-user submission limit (if any)
// must not be exhausted. PUT /jobs/{id} re-evaluation skips these gates
// entirely — it always re-runs the original, already-accepted submission.
func CheckSubmission(state *core.State, sub core.PostJob) *apierr.Error {
	if _, ok := state.FindUser(sub.UserID); !ok {
		return apierr.NotFoundf("user %d not found", sub.UserID)
	}

	if sub.ContestID == 0 {
		return nil
	}

	contest, ok := state.FindContest(sub.ContestID)
	if !ok {
		return apierr.NotFoundf("contest %d not found", sub.ContestID)
	}

	if contest.IndexOfUser(sub.UserID) < 0 {
		return apierr.InvalidArgumentf("user %d is not registered for contest %d", sub.UserID, sub.ContestID)
	}
	if contest.IndexOfProblem(sub.ProblemID) < 0 {
		return apierr.InvalidArgumentf("problem %d is not part of contest %d", sub.ProblemID, sub.ContestID)
	}
	now := core.Now()
	if now.Before(contest.From.Time) || now.After(contest.To.Time) {
		return apierr.InvalidArgumentf("contest %d is not currently accepting submissions", sub.ContestID)
	}

	if contest.SubmissionLimit > 0 {
		idx := contest.IndexOfUser(sub.UserID)
		if contest.Users[idx].SubmissionCount >= contest.SubmissionLimit {
			return apierr.RateLimitf("submission limit reached for contest %d", sub.ContestID)
		}
	}
	return nil
}

// Execute runs the full evaluation pipeline for sub and returns the
// resulting job record. When isPut is false, a new job id is assigned and
// the Contest Updater increments submission_count; when true, existingID
// names the job being re-evaluated in place (submission_count untouched,
// id preserved).
func Execute(state *core.State, cfg *config.Config, sub core.PostJob, isPut bool, existingID uint32) (core.Job, error) {
	start := time.Now()
	defer func() { metrics.JobDuration.Observe(time.Since(start).Seconds()) }()

	createdTime := core.Now()

	problemIdx := cfg.IndexOfProblem(sub.ProblemID)
	language, langOK := cfg.FindLanguage(sub.Language)
	if problemIdx < 0 || !langOK {
		job := finish(sub, createdTime, core.SystemError, 0, nil, isPut, existingID)
		return persist(state, job, isPut, existingID)
	}
	problem := cfg.Problems[problemIdx]

	scratchDir, err := os.MkdirTemp("", "csoj-job-")
	if err != nil {
		return core.Job{}, apierr.Externalf("could not create scratch directory: %v", err)
	}
	defer os.RemoveAll(scratchDir)

	sourcePath := filepath.Join(scratchDir, language.FileName)
	if err := os.WriteFile(sourcePath, []byte(sub.SourceCode), 0o644); err != nil {
		job := finish(sub, createdTime, core.SystemError, 0, nil, isPut, existingID)
		return persist(state, job, isPut, existingID)
	}
	exePath := filepath.Join(scratchDir, "judge_target")

	cases := []core.CaseResult{compileStep(language, sourcePath, exePath)}
	compileOK := cases[0].Result == core.CompilationSuccess

	contestProblemIdx := -1
	if sub.ContestID != 0 {
		if contest, ok := state.FindContest(sub.ContestID); ok {
			contestProblemIdx = contest.IndexOfProblem(sub.ProblemID)
		}
	}

	cctx := caseContext{
		state:             state,
		problem:           problem,
		problemIdx:        problemIdx,
		contestProblemIdx: contestProblemIdx,
		sub:               sub,
		exePath:           exePath,
	}

	var scoreSum float32
	var fatal core.Verdict

	runOne := func(c config.Case, id uint32) core.CaseResult {
		if !compileOK {
			// OQ-1: the source marks every case Waiting when compilation
			// fails; Skipped is the more accurate verdict and is the
			// choice made here (see DESIGN.md).
			return core.CaseResult{ID: id, Result: core.Skipped}
		}
		result, info, timeUsed, caseFatal, awarded := runCase(cctx, c, int(id)-1)
		if caseFatal != 0 {
			fatal = caseFatal
		}
		scoreSum += awarded
		return core.CaseResult{ID: id, Result: result, Info: info, Time: timeUsed}
	}

	if problem.Misc.Packing != nil {
		for _, pack := range problem.Misc.Packing {
			packAccepted := true
			for _, caseID := range pack {
				if !packAccepted {
					cases = append(cases, core.CaseResult{ID: uint32(caseID), Result: core.Skipped})
					continue
				}
				c := problem.Cases[caseID-1]
				result := runOne(c, uint32(caseID))
				if result.Result != core.Accepted {
					packAccepted = false
				}
				cases = append(cases, result)
			}
		}
	} else {
		for i, c := range problem.Cases {
			cases = append(cases, runOne(c, uint32(i+1)))
		}
	}

	verdict := finalVerdict(compileOK, fatal, problem, scoreSum)
	job := finish(sub, createdTime, verdict, scoreSum, cases, isPut, existingID)
	return persist(state, job, isPut, existingID)
}

// persist stores the finished job (creating or overwriting per isPut) and
// folds its score into the submitting user's contest standing.
func persist(state *core.State, job core.Job, isPut bool, existingID uint32) (core.Job, error) {
	metrics.JobsTotal.WithLabelValues(job.Result.String()).Inc()

	var err error
	if isPut {
		job.ID = existingID
		_, err = state.UpdateJob(job)
	} else {
		job, err = state.CreateJob(job)
	}
	if err != nil {
		return job, apierr.Externalf("could not persist job: %v", err)
	}

	if err := ApplyContestUpdate(state, job, isPut); err != nil {
		return job, apierr.Externalf("could not persist contest update: %v", err)
	}
	return job, nil
}

func finalVerdict(compileOK bool, fatal core.Verdict, problem config.Problem, scoreSum float32) core.Verdict {
	if !compileOK {
		return core.CompilationError
	}
	if fatal != 0 {
		return fatal
	}

	maxScore := float32(100.0)
	if problem.Type == config.TypeDynamicRanking && problem.Misc.DynamicRankingRatio != nil {
		maxScore = 100.0 * (1.0 - *problem.Misc.DynamicRankingRatio)
	}

	switch {
	case math.Abs(float64(scoreSum-maxScore)) < scoreEpsilon:
		return core.Accepted
	case scoreSum < maxScore:
		return core.WrongAnswer
	default:
		return core.SystemError
	}
}

func finish(sub core.PostJob, createdTime core.Instant, verdict core.Verdict, score float32, cases []core.CaseResult, isPut bool, existingID uint32) core.Job {
	job := core.Job{
		ID:          existingID,
		CreatedTime: createdTime,
		UpdatedTime: core.Now(),
		Submission:  sub,
		State:       "Finished",
		Result:      verdict,
		Score:       score,
		Cases:       cases,
	}
	return job
}

func compileStep(language config.Language, sourcePath, exePath string) core.CaseResult {
	program, args := substituteArgv(language.Command, map[string]string{
		"%INPUT%":  sourcePath,
		"%OUTPUT%": exePath,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return core.CaseResult{ID: 0, Result: core.CompilationError}
	}
	return core.CaseResult{ID: 0, Result: core.CompilationSuccess}
}

func substituteArgv(template []string, subs map[string]string) (program string, args []string) {
	if len(template) == 0 {
		return "", nil
	}
	program = template[0]
	args = make([]string, 0, len(template)-1)
	for _, tok := range template[1:] {
		if replacement, ok := subs[tok]; ok {
			args = append(args, replacement)
		} else {
			args = append(args, tok)
		}
	}
	return program, args
}
