package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func ratio(f float32) *float32 { return &f }

func validConfig() Config {
	return Config{
		Server: Server{BindAddress: "0.0.0.0", BindPort: 12345},
		Problems: []Problem{
			{
				ID:   0,
				Name: "A+B",
				Type: TypeStandard,
				Cases: []Case{
					{Score: 50, InputFile: "1.in", AnswerFile: "1.ans", TimeLimitUS: 1000000, MemoryLimit: 1 << 20},
					{Score: 50, InputFile: "2.in", AnswerFile: "2.ans", TimeLimitUS: 1000000, MemoryLimit: 1 << 20},
				},
			},
		},
		Languages: []Language{
			{Name: "Rust", FileName: "main.rs", Command: []string{"rustc", "%INPUT%", "-o", "%OUTPUT%"}},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadCaseScoreSum(t *testing.T) {
	cfg := validConfig()
	cfg.Problems[0].Cases[1].Score = 40
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateProblemID(t *testing.T) {
	cfg := validConfig()
	cfg.Problems = append(cfg.Problems, cfg.Problems[0])
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsDynamicRankingWithoutRatio(t *testing.T) {
	cfg := validConfig()
	cfg.Problems[0].Type = TypeDynamicRanking
	require.Error(t, cfg.Validate())

	cfg.Problems[0].Misc.DynamicRankingRatio = ratio(1.5)
	require.Error(t, cfg.Validate())

	cfg.Problems[0].Misc.DynamicRankingRatio = ratio(0.5)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsSPJWithoutJudgeProgram(t *testing.T) {
	cfg := validConfig()
	cfg.Problems[0].Type = TypeSPJ
	require.Error(t, cfg.Validate())

	cfg.Problems[0].Misc.SpecialJudge = []string{"./spj", "%OUTPUT%", "%ANSWER%"}
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsPackingWithOutOfRangeCase(t *testing.T) {
	cfg := validConfig()
	cfg.Problems[0].Misc.Packing = [][]int{{1, 2, 3}}
	require.Error(t, cfg.Validate())

	cfg.Problems[0].Misc.Packing = [][]int{{1, 2}}
	require.NoError(t, cfg.Validate())
}

func TestCaseCountWarningsFlagsProblemsOverSoftLimit(t *testing.T) {
	cfg := validConfig()
	require.Empty(t, cfg.CaseCountWarnings())

	cases := make([]Case, 25)
	for i := range cases {
		cases[i] = Case{Score: 4, InputFile: "x.in", AnswerFile: "x.ans", TimeLimitUS: 1000000}
	}
	cfg.Problems[0].Cases = cases

	require.NoError(t, cfg.Validate())
	warnings := cfg.CaseCountWarnings()
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "A+B")
}

func TestLoadRoundTripsThroughJSON(t *testing.T) {
	cfg := validConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Server, loaded.Server)
	require.Len(t, loaded.Problems, 1)
	require.Equal(t, cfg.Problems[0].Name, loaded.Problems[0].Name)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Problems[0].Cases[0].Score = 1
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	require.Error(t, err)
}
