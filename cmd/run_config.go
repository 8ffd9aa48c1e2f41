package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hierembed/trainsched/schedule"
)

// Defaults describe a CIFAR-sized training set.
const (
	defaultNumSamples = 50000
	defaultBatchSize  = 128
)

// RunConfig is the YAML form of a replay. Options take the selected schedule's
// defaults where unset.
type RunConfig struct {
	Schedule   string             `yaml:"schedule"`
	NumSamples int                `yaml:"num_samples"`
	BatchSize  int                `yaml:"batch_size"`
	Epochs     int                `yaml:"epochs"` // 0 = recommended horizon
	Options    schedule.Overrides `yaml:"options"`
}

// DefaultRunConfig returns the configuration used when no file is given.
func DefaultRunConfig() RunConfig {
	return RunConfig{Schedule: "resnet-schedule", NumSamples: defaultNumSamples, BatchSize: defaultBatchSize}
}

// LoadRunConfig reads a run config from path. Keys missing from the file keep
// DefaultRunConfig values; unknown keys are an error.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("reading run config: %w", err)
	}
	cfg := DefaultRunConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RunConfig{}, fmt.Errorf("parsing run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, fmt.Errorf("run config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the chosen schedule.
func (c RunConfig) Validate() error {
	if !schedule.IsValidSchedule(c.Schedule) {
		return fmt.Errorf("%w: %q", schedule.ErrUnknownSchedule, c.Schedule)
	}
	if c.NumSamples <= 0 {
		return fmt.Errorf("num_samples must be positive, got %d", c.NumSamples)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be non-negative, got %d", c.Epochs)
	}
	return nil
}
