package core

// RankInfo is one user's standing within a contest. Rank is recomputed on
// every ranklist request; it is not persisted as part of the invariant
// state, only carried along for the response shape.
type RankInfo struct {
	User  User    `json:"user"`
	Rank  uint32  `json:"rank"`
	Scores []float32 `json:"scores"`

	HighestScores []float32 `json:"highest_scores"`
	LatestScores  []float32 `json:"latest_scores"`

	CompetitiveScoreSum float32 `json:"competitive_score_sum"`
	// ShortestTimes[p][c] is this user's best observed time in microseconds
	// for case c of problem p, dimensioned from the problem's case count
	// (not pre-sized to a fixed 20, see OQ-3 in DESIGN.md).
	ShortestTimes [][]int64 `json:"shortest_times"`

	LatestSubmission Instant `json:"latest_submission"`
	Score            uint32  `json:"score"`
	SubmissionCount  uint32  `json:"submission_count"`
}

// NewRankInfo builds a zero-state RankInfo for a user newly entering a
// contest with the given per-problem case counts.
func NewRankInfo(user User, caseCounts []int) RankInfo {
	n := len(caseCounts)
	scores := make([]float32, n)
	highest := make([]float32, n)
	latest := make([]float32, n)
	times := make([][]int64, n)
	for i, cc := range caseCounts {
		row := make([]int64, cc)
		for j := range row {
			row[j] = MaxCaseTime
		}
		times[i] = row
	}
	return RankInfo{
		User:             user,
		Scores:           scores,
		HighestScores:    highest,
		LatestScores:     latest,
		ShortestTimes:    times,
		LatestSubmission: NewInstant(TimeMaxUTC),
	}
}

// Contest is a dense, monotone-indexed registry entry. Contest 0 is the
// implicit all-problems/all-users/no-limit contest and is never returned by
// list endpoints nor updatable through the id-overwrite path.
type Contest struct {
	ID              uint32     `json:"id"`
	Name            string     `json:"name"`
	From            Instant    `json:"from"`
	To              Instant    `json:"to"`
	ProblemIDs      []uint32   `json:"problem_ids"`
	UserIDs         []uint32   `json:"user_ids"`
	SubmissionLimit uint32     `json:"submission_limit"`
	Users           []RankInfo `json:"users"`
}

// PostContest is the POST /contests request body.
type PostContest struct {
	ID              *uint32  `json:"id"`
	Name            string   `json:"name" binding:"required"`
	From            Instant  `json:"from"`
	To              Instant  `json:"to"`
	ProblemIDs      []uint32 `json:"problem_ids"`
	UserIDs         []uint32 `json:"user_ids"`
	SubmissionLimit uint32   `json:"submission_limit"`
}

// IndexOfUser returns the index of user id within c.UserIDs, or -1.
func (c *Contest) IndexOfUser(userID uint32) int {
	for i, id := range c.UserIDs {
		if id == userID {
			return i
		}
	}
	return -1
}

// IndexOfProblem returns the index of problem id within c.ProblemIDs, or -1.
func (c *Contest) IndexOfProblem(problemID uint32) int {
	for i, id := range c.ProblemIDs {
		if id == problemID {
			return i
		}
	}
	return -1
}
