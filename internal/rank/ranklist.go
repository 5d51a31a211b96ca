// Package rank computes a contest's ranklist: the scoring-rule projection,
// the dynamic-ranking competitive bonus, and the four tie-breaker sorts,
// grounded on the source's get_contests_contestId_ranklist handler.
package rank

import (
	"sort"

	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
)

// ScoringRule selects which per-problem score vector feeds the ranklist.
type ScoringRule string

const (
	ScoringLatest  ScoringRule = "latest"
	ScoringHighest ScoringRule = "highest"
)

// TieBreaker selects the secondary sort key applied after score.
type TieBreaker string

const (
	TieSubmissionTime  TieBreaker = "submission_time"
	TieSubmissionCount TieBreaker = "submission_count"
	TieUserID          TieBreaker = "user_id"
	TieNone            TieBreaker = "none"
)

// Compute returns a freshly ranked copy of contest.Users; it never mutates
// its inputs. bestTimes[i][j] is the process-wide best observed time for
// problem i (config order) case j, from the Case-Time Table (C5).
func Compute(contest core.Contest, problems []config.Problem, bestTimes [][]int64, rule ScoringRule, tb TieBreaker) []core.RankInfo {
	users := make([]core.RankInfo, len(contest.Users))
	copy(users, contest.Users)

	for i := range users {
		applyScoringRule(&users[i], rule)
		applyCompetitiveBonus(&users[i], contest.ProblemIDs, problems, bestTimes)
	}

	sortUsers(users, tb)
	assignRanks(users, tb)
	return users
}

func applyScoringRule(u *core.RankInfo, rule ScoringRule) {
	base := u.LatestScores
	if rule == ScoringHighest {
		base = u.HighestScores
	}
	u.Scores = append([]float32(nil), base...)

	var sum float32
	for _, s := range base {
		sum += s
	}
	u.Score = uint32(sum)
}

// applyCompetitiveBonus adds the dynamic-ranking share to both u.Scores[i]
// (as a float accumulator) and u.Score (as the running truncated-to-u32
// sum, matching the source's per-case truncate-and-accumulate instead of
// truncating once at the end).
func applyCompetitiveBonus(u *core.RankInfo, problemIDs []uint32, problems []config.Problem, bestTimes [][]int64) {
	for i, problemID := range problemIDs {
		idx := indexOfProblem(problems, problemID)
		if idx < 0 {
			continue
		}
		p := problems[idx]
		if p.Type != config.TypeDynamicRanking || p.Misc.DynamicRankingRatio == nil {
			continue
		}
		ratio := *p.Misc.DynamicRankingRatio

		// bestTimes (the global Case-Time Table) is indexed in config
		// order (idx); the user's own shortest_times/scores are indexed
		// in this contest's problem_ids order (i).
		if idx >= len(bestTimes) || i >= len(u.ShortestTimes) {
			continue
		}
		var problemBonus float32
		for j, c := range p.Cases {
			if j >= len(bestTimes[idx]) || j >= len(u.ShortestTimes[i]) {
				continue
			}
			personal := u.ShortestTimes[i][j]
			if personal <= 0 || personal == core.MaxCaseTime {
				continue
			}
			share := c.Score * ratio * (float32(bestTimes[idx][j]) / float32(personal))
			problemBonus += share
			u.Score += uint32(share)
		}
		if i < len(u.Scores) {
			u.Scores[i] += problemBonus
		}
	}
}

func indexOfProblem(problems []config.Problem, id uint32) int {
	for i, p := range problems {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func sortUsers(users []core.RankInfo, tb TieBreaker) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		switch tb {
		case TieSubmissionTime:
			if !a.LatestSubmission.Equal(b.LatestSubmission.Time) {
				return a.LatestSubmission.Before(b.LatestSubmission.Time)
			}
		case TieSubmissionCount:
			if a.SubmissionCount != b.SubmissionCount {
				return a.SubmissionCount < b.SubmissionCount
			}
		}
		return a.User.ID < b.User.ID
	})
}

// assignRanks gives the first-placed user rank 1; each subsequent user
// inherits the previous rank when the tie-breaker's equality condition
// holds, otherwise takes the 1-based position.
func assignRanks(users []core.RankInfo, tb TieBreaker) {
	if len(users) == 0 {
		return
	}
	users[0].Rank = 1
	for i := 1; i < len(users); i++ {
		tied := users[i].Score == users[i-1].Score
		switch tb {
		case TieSubmissionTime:
			tied = tied && users[i].LatestSubmission.Equal(users[i-1].LatestSubmission.Time)
		case TieSubmissionCount:
			tied = tied && users[i].SubmissionCount == users[i-1].SubmissionCount
		case TieUserID:
			tied = false // every user id is distinct, so ranks are always distinct
		}
		if tied {
			users[i].Rank = users[i-1].Rank
		} else {
			users[i].Rank = uint32(i + 1)
		}
	}
}
