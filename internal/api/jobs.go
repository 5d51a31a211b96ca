package api

import (
	"net/http"
	"strconv"

	"github.com/csoj/csoj/internal/apierr"
	"github.com/csoj/csoj/internal/config"
	"github.com/csoj/csoj/internal/core"
	"github.com/csoj/csoj/internal/judge"

	"github.com/gin-gonic/gin"
)

func postJobs(state *core.State, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub core.PostJob
		if err := c.ShouldBindJSON(&sub); err != nil {
			fail(c, apierr.InvalidArgumentf("%v", err))
			return
		}

		if apiErr := judge.CheckSubmission(state, sub); apiErr != nil {
			fail(c, apiErr)
			return
		}

		job, err := judge.Execute(state, cfg, sub, false, 0)
		if err != nil {
			if apiErr, isAPIErr := err.(*apierr.Error); isAPIErr {
				fail(c, apiErr)
				return
			}
			failExternal(c, err)
			return
		}
		ok(c, job)
	}
}

func putJob(state *core.State, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, apierr.InvalidArgumentf("invalid job id"))
			return
		}
		existing, found := state.FindJob(uint32(id))
		if !found {
			fail(c, apierr.NotFoundf("job %d not found", id))
			return
		}

		job, err2 := judge.Execute(state, cfg, existing.Submission, true, uint32(id))
		if err2 != nil {
			if apiErr, isAPIErr := err2.(*apierr.Error); isAPIErr {
				fail(c, apiErr)
				return
			}
			failExternal(c, err2)
			return
		}
		ok(c, job)
	}
}

func getJobByID(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			fail(c, apierr.InvalidArgumentf("invalid job id"))
			return
		}
		job, found := state.FindJob(uint32(id))
		if !found {
			fail(c, apierr.NotFoundf("job %d not found", id))
			return
		}
		ok(c, job)
	}
}

// jobFilter holds the parsed, optional GET /jobs query filters.
type jobFilter struct {
	userID    *uint32
	contestID *uint32
	problemID *uint32
	language  string
	from, to  *core.Instant
	state     string
	result    *core.Verdict
}

func getJobs(state *core.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, apiErr := parseJobFilter(c, state)
		if apiErr != nil {
			fail(c, apiErr)
			return
		}

		var out []core.Job
		state.Jobs(func(jobs []core.Job) {
			for _, j := range jobs {
				if matchesJobFilter(j, filter) {
					out = append(out, j)
				}
			}
		})
		c.JSON(http.StatusOK, out)
	}
}

func parseJobFilter(c *gin.Context, state *core.State) (jobFilter, *apierr.Error) {
	var f jobFilter

	if v := c.Query("user_name"); v != "" {
		var found bool
		state.Users(func(users []core.User) {
			for _, u := range users {
				if u.Name == v {
					id := u.ID
					f.userID = &id
					found = true
					return
				}
			}
		})
		if !found {
			return f, apierr.NotFoundf("user %q not found", v)
		}
	}
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid user_id")
		}
		u32 := uint32(id)
		f.userID = &u32
	}
	if v := c.Query("contest_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid contest_id")
		}
		u32 := uint32(id)
		f.contestID = &u32
	}
	if v := c.Query("problem_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid problem_id")
		}
		u32 := uint32(id)
		f.problemID = &u32
	}
	f.language = c.Query("language")
	f.state = c.Query("state")
	if v := c.Query("from"); v != "" {
		t, err := core.ParseInstant(v)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid from")
		}
		f.from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := core.ParseInstant(v)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid to")
		}
		f.to = &t
	}
	if v := c.Query("result"); v != "" {
		verdict, err := core.ParseVerdict(v)
		if err != nil {
			return f, apierr.InvalidArgumentf("invalid result")
		}
		f.result = &verdict
	}
	return f, nil
}

func matchesJobFilter(j core.Job, f jobFilter) bool {
	if f.userID != nil && j.Submission.UserID != *f.userID {
		return false
	}
	if f.contestID != nil && j.Submission.ContestID != *f.contestID {
		return false
	}
	if f.problemID != nil && j.Submission.ProblemID != *f.problemID {
		return false
	}
	if f.language != "" && j.Submission.Language != f.language {
		return false
	}
	if f.state != "" && j.State != f.state {
		return false
	}
	if f.result != nil && j.Result != *f.result {
		return false
	}
	if f.from != nil && j.CreatedTime.Before(f.from.Time) {
		return false
	}
	if f.to != nil && j.CreatedTime.After(f.to.Time) {
		return false
	}
	return true
}
