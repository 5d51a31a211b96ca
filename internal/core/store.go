package core

// Store is the durable mirror of the user, job and contest registries
// (spec.md §4.1, component C2). Implementations live outside core (see
// internal/store) so the registries never depend on a concrete database
// driver. State checks Enabled() before every Load/Save call, so a Store
// that is not Enabled() is never asked to load or save and persistence is a
// no-op; the in-memory registries become authoritative.
type Store interface {
	Enabled() bool

	LoadUsers() (users []User, nextID uint32, err error)
	SaveUsers(users []User, nextID uint32) error

	LoadContests() (contests []Contest, nextID uint32, err error)
	SaveContests(contests []Contest, nextID uint32) error

	LoadJobs() (jobs []Job, nextID uint32, err error)
	SaveJobs(jobs []Job, nextID uint32) error
}
