package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/csoj/csoj/internal/apierr"
	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/rank"

	"github.com/gin-gonic/gin"
)

// postContests handles create (no id) and replace (id present, nonzero),
// grounded on function_post_contests.rs's check_valid/check_repeated pair.
func postContests(state *core.State, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body core.PostContest
		if err := c.ShouldBindJSON(&body); err != nil {
			fail(c, apierr.InvalidArgumentf("%v", err))
			return
		}

		var nextUserID uint32
		state.Users(func(users []core.User) {
			for _, u := range users {
				if u.ID >= nextUserID {
					nextUserID = u.ID + 1
				}
			}
		})
		for _, id := range body.UserIDs {
			if id >= nextUserID {
				fail(c, apierr.NotFoundf("user %d not found", id))
				return
			}
		}
		for _, id := range body.ProblemIDs {
			if cfg.IndexOfProblem(id) < 0 {
				fail(c, apierr.NotFoundf("problem %d not found", id))
				return
			}
		}
		if hasDuplicates(body.UserIDs) || hasDuplicatesU32(body.ProblemIDs) {
			fail(c, apierr.InvalidArgumentf("user_ids/problem_ids must not contain duplicates"))
			return
		}

		caseCounts := make([]int, len(body.ProblemIDs))
		for i, pid := range body.ProblemIDs {
			idx := cfg.IndexOfProblem(pid)
			caseCounts[i] = len(cfg.Problems[idx].Cases)
		}

		users := make([]core.RankInfo, len(body.UserIDs))
		for i, uid := range body.UserIDs {
			u, _ := state.FindUser(uid)
			users[i] = core.NewRankInfo(u, caseCounts)
		}

		contest := core.Contest{
			Name:            body.Name,
			From:            body.From,
			To:              body.To,
			ProblemIDs:      body.ProblemIDs,
			UserIDs:         body.UserIDs,
			SubmissionLimit: body.SubmissionLimit,
			Users:           users,
		}

		if body.ID == nil {
			created, err := state.CreateContest(contest, false)
			if err != nil {
				failExternal(c, err)
				return
			}
			ok(c, created)
			return
		}

		if *body.ID == 0 {
			fail(c, apierr.InvalidArgumentf("contest 0 cannot be updated"))
			return
		}
		if _, found := state.FindContest(*body.ID); !found {
			fail(c, apierr.NotFoundf("contest %d not found", *body.ID))
			return
		}
		contest.ID = *body.ID
		updated, err := state.CreateContest(contest, true)
		if err != nil {
			failExternal(c, err)
			return
		}
		ok(c, updated)
	}
}

func hasDuplicates(ids []uint32) bool { return hasDuplicatesU32(ids) }

func hasDuplicatesU32(ids []uint32) bool {
	seen := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func getContests(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		var out []core.Contest
		state.Contests(func(contests []core.Contest) {
			for _, contest := range contests {
				if contest.ID != 0 {
					out = append(out, contest)
				}
			}
		})
		c.JSON(http.StatusOK, out)
	}
}

func getContestByID(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil || id == 0 {
			fail(c, apierr.InvalidArgumentf("invalid contest id"))
			return
		}
		contest, found := state.FindContest(uint32(id))
		if !found {
			fail(c, apierr.NotFoundf("contest %d not found", id))
			return
		}
		ok(c, contest)
	}
}

func getRanklist(state *core.State, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, apierr.InvalidArgumentf("invalid contest id"))
			return
		}
		contest, found := state.FindContest(uint32(id))
		if !found {
			fail(c, apierr.NotFoundf("contest %d not found", id))
			return
		}

		scoringRule := rank.ScoringRule(c.DefaultQuery("scoring_rule", string(rank.ScoringLatest)))
		tieBreaker := rank.TieBreaker(c.DefaultQuery("tie_breaker", string(rank.TieNone)))

		bestTimes := caseTimeSnapshot(state, cfg)
		ranked := rank.Compute(contest, cfg.Problems, bestTimes, scoringRule, tieBreaker)
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
		ok(c, ranked)
	}
}

// caseTimeSnapshot reads a consistent copy of every problem's case-time row
// for use by the ranklist's competitive-bonus calculation.
func caseTimeSnapshot(state *core.State, cfg *config.Config) [][]int64 {
	snapshot := make([][]int64, len(cfg.Problems))
	for i, p := range cfg.Problems {
		row := make([]int64, len(p.Cases))
		for j := range row {
			row[j] = state.CaseTime(i, j)
		}
		snapshot[i] = row
	}
	return snapshot
}
