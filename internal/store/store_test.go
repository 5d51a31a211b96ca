package store

import (
	"path/filepath"
	"testing"

	"github.com/csoj/csoj/internal/core"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dsn)
	require.NoError(t, err)
	require.True(t, s.Enabled())
	return s
}

func TestDisabledStoreIsNoop(t *testing.T) {
	s := Disabled()
	require.False(t, s.Enabled())
}

func TestUserRoundTrip(t *testing.T) {
	s := openTestStore(t)

	users := []core.User{{ID: 0, Name: "root"}, {ID: 1, Name: "alice"}}
	require.NoError(t, s.SaveUsers(users, 2))

	got, next, err := s.LoadUsers()
	require.NoError(t, err)
	require.Equal(t, uint32(2), next)
	require.Equal(t, users, got)

	// A second save fully replaces the table rather than appending.
	users2 := []core.User{{ID: 0, Name: "root"}}
	require.NoError(t, s.SaveUsers(users2, 1))
	got2, next2, err := s.LoadUsers()
	require.NoError(t, err)
	require.Equal(t, uint32(1), next2)
	require.Equal(t, users2, got2)
}

func TestJobRoundTrip(t *testing.T) {
	s := openTestStore(t)

	job := core.Job{
		ID:          0,
		CreatedTime: core.Now(),
		UpdatedTime: core.Now(),
		Submission: core.PostJob{
			SourceCode: "fn main() {}",
			Language:   "Rust",
			UserID:     1,
			ContestID:  0,
			ProblemID:  0,
		},
		State:  "Finished",
		Result: core.Accepted,
		Score:  100,
		Cases: []core.CaseResult{
			{ID: 0, Result: core.CompilationSuccess},
			{ID: 1, Result: core.Accepted, Time: 123},
		},
	}

	require.NoError(t, s.SaveJobs([]core.Job{job}, 1))

	got, next, err := s.LoadJobs()
	require.NoError(t, err)
	require.Equal(t, uint32(1), next)
	require.Len(t, got, 1)
	require.Equal(t, job.Submission, got[0].Submission)
	require.Equal(t, job.Result, got[0].Result)
	require.Equal(t, job.Cases, got[0].Cases)
	require.WithinDuration(t, job.CreatedTime.Time, got[0].CreatedTime.Time, 0)
}

func TestContestRoundTrip(t *testing.T) {
	s := openTestStore(t)

	rootUser := core.User{ID: 0, Name: "root"}
	contest := core.Contest{
		ID:              0,
		Name:            "root",
		From:            core.NewInstant(core.TimeMaxUTC),
		To:              core.NewInstant(core.TimeMinUTC),
		ProblemIDs:      []uint32{0, 1},
		UserIDs:         []uint32{0},
		SubmissionLimit: 0,
		Users:           []core.RankInfo{core.NewRankInfo(rootUser, []int{2, 1})},
	}

	require.NoError(t, s.SaveContests([]core.Contest{contest}, 1))

	got, next, err := s.LoadContests()
	require.NoError(t, err)
	require.Equal(t, uint32(1), next)
	require.Len(t, got, 1)
	require.Equal(t, contest.ProblemIDs, got[0].ProblemIDs)
	require.Equal(t, contest.UserIDs, got[0].UserIDs)
	require.Equal(t, contest.Users, got[0].Users)
}
