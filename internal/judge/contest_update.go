package judge

import "github.com/csoj/csoj/internal/core"

// ApplyContestUpdate is the Contest Updater (C7): it folds a finished job's
// score into the submitting user's standing in job.Submission.ContestID,
// grounded on the tail of the source's post_jobs_action. It is a no-op for
// contest_id 0 (spec.md §4.6 scopes it to "provided contest_id != 0"), and
// always uses the contest-local problem index (position within
// contest.ProblemIDs), not the config-global one case.go uses for the
// case-time table.
//
// OQ-4: highest_scores/latest_submission only ever move forward
// (score_sum >= highest_scores[p]). OQ-5: a later contest update (spec.md
// §4.4) discards every user's scoring state, including users kept in the
// new user_ids, rather than attempting to remap it. This mirrors the
// source's function_post_contests.rs, which rebuilds every user's RankInfo
// from scratch on update — see DESIGN.md for why that behavior is kept
// rather than fixed.
func ApplyContestUpdate(state *core.State, job core.Job, isPut bool) error {
	if job.Submission.ContestID == 0 {
		return nil
	}
	_, err := state.WithContest(job.Submission.ContestID, func(contest *core.Contest) bool {
		problemIdx := contest.IndexOfProblem(job.Submission.ProblemID)
		if problemIdx < 0 {
			return false
		}
		userIdx := contest.IndexOfUser(job.Submission.UserID)
		if userIdx < 0 {
			return false
		}

		rank := &contest.Users[userIdx]
		if problemIdx >= len(rank.LatestScores) {
			return false
		}

		rank.LatestScores[problemIdx] = job.Score
		if job.Score >= rank.HighestScores[problemIdx] {
			rank.HighestScores[problemIdx] = job.Score
			rank.LatestSubmission = job.CreatedTime
		}
		if !isPut {
			rank.SubmissionCount++
		}
		return true
	})
	return err
}
