package core

import (
	"encoding/json"
	"fmt"
)

// Verdict is a closed sum type. It is always serialised through the display
// string table below; it is never derived from the Go identifier, so
// renaming a constant never changes the wire format.
type Verdict int

const (
	Waiting Verdict = iota
	Running
	Accepted
	CompilationError
	CompilationSuccess
	WrongAnswer
	RuntimeError
	TimeLimitExceeded
	MemoryLimitExceeded
	SystemError
	SPJError
	Skipped
)

var verdictText = map[Verdict]string{
	Waiting:             "Waiting",
	Running:             "Running",
	Accepted:            "Accepted",
	CompilationError:    "Compilation Error",
	CompilationSuccess:  "Compilation Success",
	WrongAnswer:         "Wrong Answer",
	RuntimeError:        "Runtime Error",
	TimeLimitExceeded:   "Time Limit Exceeded",
	MemoryLimitExceeded: "Memory Limit Exceeded",
	SystemError:         "System Error",
	SPJError:            "SPJ Error",
	Skipped:             "Skipped",
}

var verdictFromText map[string]Verdict

func init() {
	verdictFromText = make(map[string]Verdict, len(verdictText))
	for v, s := range verdictText {
		verdictFromText[s] = v
	}
}

func (v Verdict) String() string {
	if s, ok := verdictText[v]; ok {
		return s
	}
	return "Unknown"
}

func ParseVerdict(s string) (Verdict, error) {
	if v, ok := verdictFromText[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown verdict %q", s)
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Verdict) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
