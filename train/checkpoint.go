package train

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Expectations carries the reference tooling's free-text performance
// targets through to the metadata sidecar, unchanged in shape from the
// original Python trainer's "expectations" dict.
type Expectations struct {
	PrimaryTarget   string `json:"primary_target"`
	BenchmarkTarget string `json:"benchmark_target"`
}

// HistoryRecord is one iteration's entry in the metadata sidecar's
// history[] array.
type HistoryRecord struct {
	Iteration       int     `json:"iteration"`
	SelfPlayWinners []int   `json:"self_play_winners"`
	ReplaySize      int     `json:"replay_size"`
	PolicyLoss      float64 `json:"policy_loss"`
	ValueLoss       float64 `json:"value_loss"`
	GatingWinRate   float64 `json:"gating_win_rate"`
	Promoted        bool    `json:"promoted"`
}

// Metadata is the JSON sidecar accompanying every checkpoint emission.
type Metadata struct {
	CreatedAt       string          `json:"created_at"`
	Seed            int64           `json:"seed"`
	Hyperparameters Config          `json:"hyperparameters"`
	History         []HistoryRecord `json:"history"`
	Expectations    Expectations    `json:"expectations"`
}

// WriteMetadata serializes meta to <dir>/metadata.json.
func WriteMetadata(dir string, meta *Metadata) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "metadata.json"), b, 0o644)
}

// Checkpointer is a Trainable that can also persist its opaque parameter
// blob. The blob's internal format is the approximator's own concern; only
// the save entry point is specified here, and the interface has no restore
// method.
type Checkpointer interface {
	Trainable
	SaveCheckpoint(path string) error
}

// EmitCheckpoints writes the latest checkpoint unconditionally and the
// best checkpoint only when this iteration promoted a new best, matching
// "latest checkpoint, best checkpoint (when promoted)" from the emission
// rule.
func EmitCheckpoints(dir string, latest Checkpointer, best Checkpointer, promoted bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := latest.SaveCheckpoint(filepath.Join(dir, "latest.ckpt")); err != nil {
		return err
	}
	if promoted {
		if err := best.SaveCheckpoint(filepath.Join(dir, "best.ckpt")); err != nil {
			return err
		}
	}
	return nil
}
