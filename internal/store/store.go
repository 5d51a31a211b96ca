// Package store is the gorm/sqlite-backed implementation of core.Store
// (component C2). It follows the source's write-through contract literally:
// list tables are rewritten DELETE-then-INSERT-all inside one transaction,
// counter tables are upserted, and every write happens before the request
// that triggered it returns.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/csoj/csoj/internal/core"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	keyNextUserID    = "next_user_id"
	keyNextJobID     = "next_job_id"
	keyNextContestID = "next_contest_id"
)

// Store is a gorm-backed core.Store. A zero-value Store (nil db) is the
// disabled store: Enabled reports false, and core.State then skips every
// Load/Save call. The Load/Save methods themselves always use the database;
// they are not no-ops on a zero-value Store.
type Store struct {
	db *gorm.DB
}

var _ core.Store = (*Store)(nil)

// Disabled returns a Store with persistence turned off, for the
// --storage-less run mode.
func Disabled() *Store {
	return &Store{}
}

// Open creates or opens the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			zap.S().Infof("store: creating directory %s for database file", dir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}

	if err := db.AutoMigrate(&counterRow{}, &userRow{}, &jobRow{}, &contestRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Enabled() bool { return s.db != nil }

func (s *Store) upsertCounter(key string, value uint32) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&counterRow{Key: key, Value: value}).Error
}

func (s *Store) readCounter(key string) (uint32, error) {
	var row counterRow
	err := s.db.Where("key = ?", key).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: read counter %s: %w", key, err)
	}
	return row.Value, nil
}

// LoadUsers implements core.Store.
func (s *Store) LoadUsers() ([]core.User, uint32, error) {
	var rows []userRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}
	next, err := s.readCounter(keyNextUserID)
	if err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}
	users := make([]core.User, len(rows))
	for i, r := range rows {
		users[i] = core.User{ID: r.ID, Name: r.Name}
	}
	return users, next, nil
}

// SaveUsers implements core.Store.
func (s *Store) SaveUsers(users []core.User, nextID uint32) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&userRow{}).Error; err != nil {
			return err
		}
		for _, u := range users {
			if err := tx.Create(&userRow{ID: u.ID, Name: u.Name}).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&counterRow{Key: keyNextUserID, Value: nextID}).Error
	})
}

// LoadJobs implements core.Store.
func (s *Store) LoadJobs() ([]core.Job, uint32, error) {
	var rows []jobRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}
	next, err := s.readCounter(keyNextJobID)
	if err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}

	jobs := make([]core.Job, len(rows))
	for i, r := range rows {
		created, err := core.ParseInstant(r.CreatedTime)
		if err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: job %d created_time: %w", r.ID, err)
		}
		updated, err := core.ParseInstant(r.UpdatedTime)
		if err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: job %d updated_time: %w", r.ID, err)
		}
		result, err := core.ParseVerdict(r.ResultText)
		if err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: job %d result: %w", r.ID, err)
		}
		var submission core.PostJob
		if err := json.Unmarshal([]byte(r.SubmissionJSON), &submission); err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: job %d submission: %w", r.ID, err)
		}
		var cases []core.CaseResult
		if err := json.Unmarshal([]byte(r.CasesJSON), &cases); err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: job %d cases: %w", r.ID, err)
		}
		jobs[i] = core.Job{
			ID:          r.ID,
			CreatedTime: created,
			UpdatedTime: updated,
			Submission:  submission,
			State:       r.State,
			Result:      result,
			Score:       r.Score,
			Cases:       cases,
		}
	}
	return jobs, next, nil
}

// SaveJobs implements core.Store.
func (s *Store) SaveJobs(jobs []core.Job, nextID uint32) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&jobRow{}).Error; err != nil {
			return err
		}
		for _, j := range jobs {
			submissionJSON, err := json.Marshal(j.Submission)
			if err != nil {
				return err
			}
			casesJSON, err := json.Marshal(j.Cases)
			if err != nil {
				return err
			}
			row := jobRow{
				ID:             j.ID,
				CreatedTime:    j.CreatedTime.String(),
				UpdatedTime:    j.UpdatedTime.String(),
				SubmissionJSON: string(submissionJSON),
				State:          j.State,
				ResultText:     j.Result.String(),
				Score:          j.Score,
				CasesJSON:      string(casesJSON),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&counterRow{Key: keyNextJobID, Value: nextID}).Error
	})
}

// LoadContests implements core.Store.
func (s *Store) LoadContests() ([]core.Contest, uint32, error) {
	var rows []contestRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}
	next, err := s.readCounter(keyNextContestID)
	if err != nil {
		return nil, 0, fmt.Errorf("store: unsuccessful retrieve: %w", err)
	}

	contests := make([]core.Contest, len(rows))
	for i, r := range rows {
		from, err := core.ParseInstant(r.FromTime)
		if err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: contest %d from: %w", r.ID, err)
		}
		to, err := core.ParseInstant(r.ToTime)
		if err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: contest %d to: %w", r.ID, err)
		}
		var problemIDs, userIDs []uint32
		if err := json.Unmarshal([]byte(r.ProblemIDsJSON), &problemIDs); err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: contest %d problem_ids: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.UserIDsJSON), &userIDs); err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: contest %d user_ids: %w", r.ID, err)
		}
		var users []core.RankInfo
		if err := json.Unmarshal([]byte(r.UsersJSON), &users); err != nil {
			return nil, 0, fmt.Errorf("store: unsuccessful retrieve: contest %d users: %w", r.ID, err)
		}
		contests[i] = core.Contest{
			ID:              r.ID,
			Name:            r.Name,
			From:            from,
			To:              to,
			ProblemIDs:      problemIDs,
			UserIDs:         userIDs,
			SubmissionLimit: r.SubmissionLimit,
			Users:           users,
		}
	}
	return contests, next, nil
}

// SaveContests implements core.Store.
func (s *Store) SaveContests(contests []core.Contest, nextID uint32) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&contestRow{}).Error; err != nil {
			return err
		}
		for _, c := range contests {
			problemIDsJSON, err := json.Marshal(c.ProblemIDs)
			if err != nil {
				return err
			}
			userIDsJSON, err := json.Marshal(c.UserIDs)
			if err != nil {
				return err
			}
			usersJSON, err := json.Marshal(c.Users)
			if err != nil {
				return err
			}
			row := contestRow{
				ID:              c.ID,
				Name:            c.Name,
				FromTime:        c.From.String(),
				ToTime:          c.To.String(),
				ProblemIDsJSON:  string(problemIDsJSON),
				UserIDsJSON:     string(userIDsJSON),
				SubmissionLimit: c.SubmissionLimit,
				UsersJSON:       string(usersJSON),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&counterRow{Key: keyNextContestID, Value: nextID}).Error
	})
}
