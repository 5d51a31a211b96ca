package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/csoj/csoj/internal/core"

	"github.com/stretchr/testify/require"
)

func TestPostContestsCreatesContestWithRankInfoPerUser(t *testing.T) {
	r, _ := newTestRouter()
	doJSON(r, http.MethodPost, "/users", core.PostUser{Name: "alice"})

	body := core.PostContest{
		Name:       "weekly",
		ProblemIDs: []uint32{0},
		UserIDs:    []uint32{1},
	}
	rec := doJSON(r, http.MethodPost, "/contests", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var contest core.Contest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contest))
	require.Equal(t, uint32(1), contest.ID)
	require.Len(t, contest.Users, 1)
	require.Equal(t, uint32(1), contest.Users[0].User.ID)
}

func TestPostContestsRejectsUnknownUser(t *testing.T) {
	r, _ := newTestRouter()
	body := core.PostContest{Name: "weekly", ProblemIDs: []uint32{0}, UserIDs: []uint32{7}}
	rec := doJSON(r, http.MethodPost, "/contests", body)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostContestsRejectsUpdatingContestZero(t *testing.T) {
	r, _ := newTestRouter()
	zero := uint32(0)
	body := core.PostContest{ID: &zero, Name: "root"}
	rec := doJSON(r, http.MethodPost, "/contests", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetContestsExcludesContestZero(t *testing.T) {
	r, _ := newTestRouter()
	rec := doJSON(r, http.MethodGet, "/contests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var contests []core.Contest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contests))
	require.Empty(t, contests)
}

func TestGetContestByIDRejectsZero(t *testing.T) {
	r, _ := newTestRouter()
	rec := doJSON(r, http.MethodGet, "/contests/0", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
