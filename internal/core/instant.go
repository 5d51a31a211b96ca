package core

import (
	"encoding/json"
	"time"
)

// instantLayout renders timestamps with millisecond precision, matching the
// RFC-3339 form the reference implementation emits.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// TimeMaxUTC and TimeMinUTC are the sentinel bounds used by contest 0 and by
// a RankInfo that has never seen a submission.
var (
	TimeMaxUTC = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
	TimeMinUTC = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Instant wraps time.Time so it always round-trips as millisecond-precision
// RFC-3339, the wire format spec.md §4.1 requires for the store and the API.
type Instant struct {
	time.Time
}

func Now() Instant {
	return Instant{time.Now().UTC().Truncate(time.Millisecond)}
}

func NewInstant(t time.Time) Instant {
	return Instant{t.UTC()}
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Time.Format(instantLayout))
}

// String renders the same millisecond-precision RFC-3339 form as
// MarshalJSON, unquoted, for use in raw store columns.
func (i Instant) String() string {
	return i.Time.Format(instantLayout)
}

// ParseInstant parses a string previously produced by Instant.String.
func ParseInstant(s string) (Instant, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Instant{}, err
	}
	return Instant{t.UTC()}, nil
}

func (i *Instant) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	i.Time = t.UTC()
	return nil
}
