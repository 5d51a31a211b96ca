package store

// Row models for the write-through tables (spec.md §4.1). Nested structures
// (problem_ids, user_ids, users, cases, submission) round-trip as embedded
// JSON text columns rather than normalised child tables, matching the
// source's schema shape.

// counterRow backs all three counters (next_user_id, next_job_id,
// next_contest_id) in the single id_counters table, one row per key,
// upserted in place rather than deleted-and-reinserted. There are no
// separate user_id_count, job_id_count or contest_id_count tables.
type counterRow struct {
	Key   string `gorm:"primaryKey"`
	Value uint32
}

func (counterRow) TableName() string { return "id_counters" }

// userRow backs user_list.
type userRow struct {
	ID   uint32 `gorm:"primaryKey"`
	Name string
}

func (userRow) TableName() string { return "user_list" }

// jobRow backs response_content.
type jobRow struct {
	ID            uint32 `gorm:"primaryKey"`
	CreatedTime   string
	UpdatedTime   string
	SubmissionJSON string
	State         string
	ResultText    string
	Score         float32
	CasesJSON     string
}

func (jobRow) TableName() string { return "response_content" }

// contestRow backs contest.
type contestRow struct {
	ID              uint32 `gorm:"primaryKey"`
	Name            string
	FromTime        string
	ToTime          string
	ProblemIDsJSON  string
	UserIDsJSON     string
	SubmissionLimit uint32
	UsersJSON       string
}

func (contestRow) TableName() string { return "contest" }
