package train

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every normative CLI flag from the external interface (§6).
// main.go binds these to flag.* vars; HyperParams loaded from a YAML file
// can override the algorithm-tuning subset at startup, mirroring the
// teacher's flags-select-mode / YAML-carries-hyperparameters split.
type Config struct {
	Iterations          int
	EpisodesPerIter     int
	Simulations         int
	LearningRate        float64
	ReplaySize          int
	BatchSize           int
	Epochs              int
	CheckpointFrequency int
	EvaluationGames     int
	GatingThreshold     float64
	Cpuct               float64
	TempOpeningMoves    int
	Temperature         float64
	DirichletAlpha      float64
	DirichletEps        float64
	MaxGameMoves        int
	Seed                int64
	HiddenDim           int
	OutputDir           string
	Device              string
	Verbose             bool
}

// DefaultConfig mirrors the reference trainer's argparse defaults exactly.
func DefaultConfig() Config {
	return Config{
		Iterations:          20,
		EpisodesPerIter:     8,
		Simulations:         100,
		LearningRate:        1e-3,
		ReplaySize:          20000,
		BatchSize:           64,
		Epochs:              2,
		CheckpointFrequency: 1,
		EvaluationGames:     20,
		GatingThreshold:     0.55,
		Cpuct:               1.25,
		TempOpeningMoves:    12,
		Temperature:         1.0,
		DirichletAlpha:      0.3,
		DirichletEps:        0.25,
		MaxGameMoves:        300,
		Seed:                7,
		HiddenDim:           256,
		OutputDir:           "checkpoints",
		Device:              "cpu",
		Verbose:             false,
	}
}

// HyperParameter is a single named override, loaded from a YAML hyperparams
// file the way the teacher's reinforcement.HyperParameter is.
type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

// OuterConfig is viper's double-unmarshal envelope: the YAML document's
// top-level "kind"/"def" shape, re-marshaled into HyperParamsConfig.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// HyperParamsConfig is the inner document: a flat list of hyperparameter
// overrides plus an optional training deadline.
type HyperParamsConfig struct {
	HyperParams      []HyperParameter  `mapstructure:"hyperParams"`
	TrainingDeadline map[string]string `mapstructure:"trainingDeadline"`
}

// GetHyperParamOrDefault returns the named override if present, else def.
func (cfg *HyperParamsConfig) GetHyperParamOrDefault(param string, def float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return def
}

// WithTrainingDeadline extends ctx by the configured deadline, if any.
func (cfg *HyperParamsConfig) WithTrainingDeadline(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrainingDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// LoadHyperParams reads path via viper, following the teacher's
// double-unmarshal-through-OuterConfig pattern: viper decodes the raw YAML
// into OuterConfig, whose Def blob is re-marshaled and unmarshaled into the
// concrete HyperParamsConfig shape.
func LoadHyperParams(path string) (*HyperParamsConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	inner := &HyperParamsConfig{}
	if err := yaml.Unmarshal(spec, inner); err != nil {
		return nil, err
	}
	return inner, nil
}

// ApplyOverrides layers hp's named overrides onto cfg, for the subset of
// fields the reference tooling also tunes from an external file.
func (cfg *Config) ApplyOverrides(hp *HyperParamsConfig) {
	cfg.Cpuct = hp.GetHyperParamOrDefault("cpuct", cfg.Cpuct)
	cfg.DirichletAlpha = hp.GetHyperParamOrDefault("dirichletAlpha", cfg.DirichletAlpha)
	cfg.DirichletEps = hp.GetHyperParamOrDefault("dirichletEps", cfg.DirichletEps)
	cfg.Temperature = hp.GetHyperParamOrDefault("temperature", cfg.Temperature)
	cfg.GatingThreshold = hp.GetHyperParamOrDefault("gatingThreshold", cfg.GatingThreshold)
	cfg.LearningRate = hp.GetHyperParamOrDefault("learningRate", cfg.LearningRate)
}
