// Package config loads the startup configuration file: the server bind
// address, the problem set (cases, comparison type, packing, special judge,
// dynamic ranking ratio) and the language table (compile command
// templates). The file is JSON, per spec; this intentionally does not reuse
// the teacher's YAML loader (see DESIGN.md for why gopkg.in/yaml.v3 was
// dropped).
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// ProblemType selects the comparison strategy run_case uses for every case
// of a problem.
type ProblemType string

const (
	TypeStandard       ProblemType = "standard"
	TypeStrict         ProblemType = "strict"
	TypeSPJ            ProblemType = "spj"
	TypeDynamicRanking ProblemType = "dynamic_ranking"
)

// Case is one test case of a Problem.
type Case struct {
	Score       float32 `json:"score"`
	InputFile   string  `json:"input_file"`
	AnswerFile  string  `json:"answer_file"`
	TimeLimitUS uint64  `json:"time_limit_us"`
	MemoryLimit uint64  `json:"memory_limit"`
}

// Misc holds the optional, type-dependent knobs of a Problem.
type Misc struct {
	// Packing groups case ids (1-based, matching Problem.Cases index+1)
	// into packs evaluated together; nil means linear iteration.
	Packing [][]int `json:"packing,omitempty"`
	// SpecialJudge is the argv of the spj program for TypeSPJ problems.
	SpecialJudge []string `json:"special_judge,omitempty"`
	// DynamicRankingRatio is the competitive-share of a case's score,
	// required and in (0,1) for TypeDynamicRanking problems.
	DynamicRankingRatio *float32 `json:"dynamic_ranking_ratio,omitempty"`
}

// Problem is one judgeable problem, immutable for the life of the process.
type Problem struct {
	ID    uint32      `json:"id"`
	Name  string      `json:"name"`
	Type  ProblemType `json:"type"`
	Cases []Case      `json:"cases"`
	Misc  Misc        `json:"misc"`
}

// Language is one accepted submission language, with a compile command
// template. %INPUT% and %OUTPUT% are substituted with the scratch source
// and executable paths at compile time.
type Language struct {
	Name     string   `json:"name"`
	FileName string   `json:"file_name"`
	Command  []string `json:"command"`
}

// Server holds the HTTP bind address, owned by the routing collaborator
// but parsed here since it lives in the same config file.
type Server struct {
	BindAddress string `json:"bind_address"`
	BindPort    uint16 `json:"bind_port"`
}

// Config is the full, immutable startup snapshot (component C1).
type Config struct {
	Server    Server     `json:"server"`
	Problems  []Problem  `json:"problems"`
	Languages []Language `json:"languages"`
}

// Load reads and parses the config file at path, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

const softCaseLimit = 20

// Validate checks the invariants spec.md assumes every Problem satisfies:
// scores sum to 100, dynamic_ranking problems carry a ratio in (0,1), spj
// problems carry a non-empty special judge argv. A problem with zero cases
// is rejected as nonsensical. It does not reject problems with more than
// softCaseLimit cases (OQ-3 made shortest_times dynamically sized) — that
// case count is a boot-time soft warning instead, see CaseCountWarnings.
func (c *Config) Validate() error {
	seenLang := make(map[string]bool, len(c.Languages))
	for _, l := range c.Languages {
		if l.Name == "" || len(l.Command) == 0 {
			return fmt.Errorf("language %q: name and command are required", l.Name)
		}
		if seenLang[l.Name] {
			return fmt.Errorf("language %q: duplicate name", l.Name)
		}
		seenLang[l.Name] = true
	}

	seenProblem := make(map[uint32]bool, len(c.Problems))
	for _, p := range c.Problems {
		if seenProblem[p.ID] {
			return fmt.Errorf("problem %d: duplicate id", p.ID)
		}
		seenProblem[p.ID] = true

		if len(p.Cases) == 0 {
			return fmt.Errorf("problem %d: no cases", p.ID)
		}

		var sum float32
		for _, c := range p.Cases {
			sum += c.Score
		}
		if math.Abs(float64(sum-100.0)) > 1e-3 {
			return fmt.Errorf("problem %d: case scores sum to %.3f, want 100.0", p.ID, sum)
		}

		switch p.Type {
		case TypeStandard, TypeStrict:
		case TypeSPJ:
			if len(p.Misc.SpecialJudge) == 0 {
				return fmt.Errorf("problem %d: spj type requires misc.special_judge", p.ID)
			}
		case TypeDynamicRanking:
			r := p.Misc.DynamicRankingRatio
			if r == nil || *r <= 0 || *r >= 1 {
				return fmt.Errorf("problem %d: dynamic_ranking type requires misc.dynamic_ranking_ratio in (0,1)", p.ID)
			}
		default:
			return fmt.Errorf("problem %d: unknown type %q", p.ID, p.Type)
		}

		if p.Misc.Packing != nil {
			seen := make(map[int]bool)
			for _, pack := range p.Misc.Packing {
				for _, id := range pack {
					if id < 1 || id > len(p.Cases) {
						return fmt.Errorf("problem %d: packing references out-of-range case id %d", p.ID, id)
					}
					if seen[id] {
						return fmt.Errorf("problem %d: packing lists case id %d twice", p.ID, id)
					}
					seen[id] = true
				}
			}
		}
	}

	return nil
}

// CaseCountWarnings returns one message per problem whose case count
// exceeds softCaseLimit, for the caller to log at boot (SPEC_FULL.md
// §4.13). It never fails Validate: a problem with many cases is unusual,
// not invalid.
func (c *Config) CaseCountWarnings() []string {
	var warnings []string
	for _, p := range c.Problems {
		if len(p.Cases) > softCaseLimit {
			warnings = append(warnings, fmt.Sprintf("problem %d (%s): %d cases exceeds the soft limit of %d", p.ID, p.Name, len(p.Cases), softCaseLimit))
		}
	}
	return warnings
}

// FindLanguage returns the language with the given name.
func (c *Config) FindLanguage(name string) (Language, bool) {
	for _, l := range c.Languages {
		if l.Name == name {
			return l, true
		}
	}
	return Language{}, false
}

// IndexOfProblem returns the config-order index of the problem with the
// given id, or -1.
func (c *Config) IndexOfProblem(id uint32) int {
	for i, p := range c.Problems {
		if p.ID == id {
			return i
		}
	}
	return -1
}
