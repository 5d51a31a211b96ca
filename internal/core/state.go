package core

import "sync"

// State bundles the four in-memory registries behind one lock apiece,
// grounded on the teacher's judger.AppState: construct one value at startup,
// pass it into every handler, never reach for process-global state.
//
// Lock order, when more than one registry must be held at once, is fixed:
// users -> contests -> jobs -> case times. Handlers that only ever touch one
// registry take only that registry's lock.
type State struct {
	store Store

	usersMu    sync.RWMutex
	users      []User
	nextUserID uint32

	contestsMu    sync.RWMutex
	contests      []Contest
	nextContestID uint32

	jobsMu    sync.RWMutex
	jobs      []Job
	nextJobID uint32

	caseTimesMu sync.RWMutex
	caseTimes   [][]int64
}

// NewState builds the default registries: the root user (id 0), the
// implicit contest 0 spanning every configured problem, and an empty job
// list. caseCounts[i] is the number of test cases for the i-th configured
// problem, in configuration order; problemIDs is that same problem's id.
func NewState(store Store, problemIDs []uint32, caseCounts []int) *State {
	root := User{ID: 0, Name: "root"}

	caseTimes := make([][]int64, len(caseCounts))
	for i, cc := range caseCounts {
		row := make([]int64, cc)
		for j := range row {
			row[j] = MaxCaseTime
		}
		caseTimes[i] = row
	}

	ids := make([]uint32, len(problemIDs))
	copy(ids, problemIDs)

	contest0 := Contest{
		ID:         0,
		Name:       "root",
		From:       NewInstant(TimeMaxUTC),
		To:         NewInstant(TimeMinUTC),
		ProblemIDs: ids,
		UserIDs:    []uint32{0},
		Users:      []RankInfo{NewRankInfo(root, caseCounts)},
	}

	return &State{
		store:         store,
		users:         []User{root},
		nextUserID:    1,
		contests:      []Contest{contest0},
		nextContestID: 1,
		jobs:          nil,
		nextJobID:     0,
		caseTimes:     caseTimes,
	}
}

// LoadFromStore overwrites the freshly constructed default registries with
// whatever the store already holds. Call once at startup, before serving any
// request, when persistence is enabled and a fresh reset was not requested.
// Case times are never persisted (spec.md §4.1's table omits them): they stay
// config-derived and reset to MaxCaseTime on every process restart.
func (s *State) LoadFromStore() error {
	if !s.store.Enabled() {
		return nil
	}

	users, nextUserID, err := s.store.LoadUsers()
	if err != nil {
		return err
	}
	contests, nextContestID, err := s.store.LoadContests()
	if err != nil {
		return err
	}
	jobs, nextJobID, err := s.store.LoadJobs()
	if err != nil {
		return err
	}

	s.usersMu.Lock()
	s.users, s.nextUserID = users, nextUserID
	s.usersMu.Unlock()

	s.contestsMu.Lock()
	s.contests, s.nextContestID = contests, nextContestID
	s.contestsMu.Unlock()

	s.jobsMu.Lock()
	s.jobs, s.nextJobID = jobs, nextJobID
	s.jobsMu.Unlock()

	return nil
}

// ResetStorage overwrites the store's tables with the current in-memory
// registries (the freshly constructed defaults, if called right after
// NewState). Used by the --reset-storage startup flag.
func (s *State) ResetStorage() error {
	if !s.store.Enabled() {
		return nil
	}
	if err := s.saveUsersLocked(); err != nil {
		return err
	}
	if err := s.saveContestsLocked(); err != nil {
		return err
	}
	return s.saveJobsLocked()
}

func (s *State) saveUsersLocked() error {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	return s.store.SaveUsers(s.users, s.nextUserID)
}

func (s *State) saveContestsLocked() error {
	s.contestsMu.RLock()
	defer s.contestsMu.RUnlock()
	return s.store.SaveContests(s.contests, s.nextContestID)
}

func (s *State) saveJobsLocked() error {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	return s.store.SaveJobs(s.jobs, s.nextJobID)
}

// Users runs fn with the user registry held for reading, passing it the
// registry as a copy-free slice view; fn must not retain the slice beyond
// the call.
func (s *State) Users(fn func(users []User)) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	fn(s.users)
}

// FindUser returns the user with the given id and whether it was found.
func (s *State) FindUser(id uint32) (User, bool) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// UserNameTaken reports whether name is already in use by any user,
// including the user being renamed: the registry check runs identically
// before both the create and the rename path (spec.md §4.2), so renaming a
// user to a name already present anywhere in the registry is rejected even
// when it is that same user's current name.
func (s *State) UserNameTaken(name string) bool {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	for _, u := range s.users {
		if u.Name == name {
			return true
		}
	}
	return false
}

// CreateUser appends a new user with an auto-assigned id, persists the user
// registry if storage is enabled, and grows contest 0's user_ids/users in
// lockstep (every user is implicitly a member of the all-problems contest).
// Lock order: users, then contests, matching the registry-wide convention.
func (s *State) CreateUser(name string) (User, error) {
	s.usersMu.Lock()
	u := User{ID: s.nextUserID, Name: name}
	s.users = append(s.users, u)
	s.nextUserID++
	var err error
	if s.store.Enabled() {
		err = s.store.SaveUsers(s.users, s.nextUserID)
	}
	s.usersMu.Unlock()
	if err != nil {
		return u, err
	}

	s.caseTimesMu.RLock()
	caseCounts := make([]int, len(s.caseTimes))
	for p, row := range s.caseTimes {
		caseCounts[p] = len(row)
	}
	s.caseTimesMu.RUnlock()

	s.contestsMu.Lock()
	for i := range s.contests {
		if s.contests[i].ID == 0 {
			s.contests[i].UserIDs = append(s.contests[i].UserIDs, u.ID)
			s.contests[i].Users = append(s.contests[i].Users, NewRankInfo(u, caseCounts))
			if s.store.Enabled() {
				err = s.store.SaveContests(s.contests, s.nextContestID)
			}
			break
		}
	}
	s.contestsMu.Unlock()
	return u, err
}

// RenameUser overwrites the name of an existing user in place.
func (s *State) RenameUser(id uint32, name string) (User, bool, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Name = name
			var err error
			if s.store.Enabled() {
				err = s.store.SaveUsers(s.users, s.nextUserID)
			}
			return s.users[i], true, err
		}
	}
	return User{}, false, nil
}

// Contests runs fn with the contest registry held for reading.
func (s *State) Contests(fn func(contests []Contest)) {
	s.contestsMu.RLock()
	defer s.contestsMu.RUnlock()
	fn(s.contests)
}

// FindContest returns the contest with the given id and whether it was found.
func (s *State) FindContest(id uint32) (Contest, bool) {
	s.contestsMu.RLock()
	defer s.contestsMu.RUnlock()
	for _, c := range s.contests {
		if c.ID == id {
			return c, true
		}
	}
	return Contest{}, false
}

// WithContest runs fn with exclusive access to the single contest matching
// id, persisting the registry afterwards if fn returns true and storage is
// enabled. Returns whether the contest was found.
func (s *State) WithContest(id uint32, fn func(c *Contest) bool) (bool, error) {
	s.contestsMu.Lock()
	defer s.contestsMu.Unlock()
	for i := range s.contests {
		if s.contests[i].ID == id {
			changed := fn(&s.contests[i])
			var err error
			if changed && s.store.Enabled() {
				err = s.store.SaveContests(s.contests, s.nextContestID)
			}
			return true, err
		}
	}
	return false, nil
}

// CreateContest appends c with an auto-assigned id, or overwrites the
// contest already at c.ID when overwrite is true.
func (s *State) CreateContest(c Contest, overwrite bool) (Contest, error) {
	s.contestsMu.Lock()
	defer s.contestsMu.Unlock()

	if overwrite {
		for i := range s.contests {
			if s.contests[i].ID == c.ID {
				s.contests[i] = c
				var err error
				if s.store.Enabled() {
					err = s.store.SaveContests(s.contests, s.nextContestID)
				}
				return c, err
			}
		}
	}

	c.ID = s.nextContestID
	s.contests = append(s.contests, c)
	s.nextContestID++
	var err error
	if s.store.Enabled() {
		err = s.store.SaveContests(s.contests, s.nextContestID)
	}
	return c, err
}

// Jobs runs fn with the job registry held for reading.
func (s *State) Jobs(fn func(jobs []Job)) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	fn(s.jobs)
}

// FindJob returns the job with the given id and whether it was found.
func (s *State) FindJob(id uint32) (Job, bool) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	for _, j := range s.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}

// CreateJob appends a new job with an auto-assigned id.
func (s *State) CreateJob(j Job) (Job, error) {
	s.jobsMu.Lock()
	j.ID = s.nextJobID
	s.jobs = append(s.jobs, j)
	s.nextJobID++
	var err error
	if s.store.Enabled() {
		err = s.store.SaveJobs(s.jobs, s.nextJobID)
	}
	s.jobsMu.Unlock()
	return j, err
}

// UpdateJob overwrites the job at j.ID in place, persisting afterwards.
func (s *State) UpdateJob(j Job) (bool, error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == j.ID {
			s.jobs[i] = j
			var err error
			if s.store.Enabled() {
				err = s.store.SaveJobs(s.jobs, s.nextJobID)
			}
			return true, err
		}
	}
	return false, nil
}

// CaseTime returns the shortest observed time for case c of problem slot p.
func (s *State) CaseTime(p, c int) int64 {
	s.caseTimesMu.RLock()
	defer s.caseTimesMu.RUnlock()
	if p < 0 || p >= len(s.caseTimes) || c < 0 || c >= len(s.caseTimes[p]) {
		return MaxCaseTime
	}
	return s.caseTimes[p][c]
}

// RecordCaseTime lowers the shortest observed time for case c of problem
// slot p if t beats it, and reports whether it did.
func (s *State) RecordCaseTime(p, c int, t int64) bool {
	s.caseTimesMu.Lock()
	defer s.caseTimesMu.Unlock()
	if p < 0 || p >= len(s.caseTimes) || c < 0 || c >= len(s.caseTimes[p]) {
		return false
	}
	if t < s.caseTimes[p][c] {
		s.caseTimes[p][c] = t
		return true
	}
	return false
}
