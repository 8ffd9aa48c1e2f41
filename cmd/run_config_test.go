package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hierembed/trainsched/schedule"
)

func TestLoadRunConfig_FullFile(t *testing.T) {
	// GIVEN a config setting every key
	path := writeTempFile(t, "run.yaml", `
schedule: clr
num_samples: 1000
batch_size: 100
epochs: 40
options:
  step_len: 2
  max_lr: 0.05
`)

	// WHEN loaded
	cfg, err := LoadRunConfig(path)

	// THEN every key lands in its field
	require.NoError(t, err)
	assert.Equal(t, "clr", cfg.Schedule)
	assert.Equal(t, 1000, cfg.NumSamples)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 40, cfg.Epochs)
	require.NotNil(t, cfg.Options.StepLen)
	assert.Equal(t, 2, *cfg.Options.StepLen)
	require.NotNil(t, cfg.Options.MaxLR)
	assert.Equal(t, 0.05, *cfg.Options.MaxLR)
	assert.Nil(t, cfg.Options.MinLR)
}

func TestLoadRunConfig_MissingKeysKeepDefaults(t *testing.T) {
	cfg, err := LoadRunConfig(writeTempFile(t, "run.yaml", "schedule: sgdr\n"))
	require.NoError(t, err)
	assert.Equal(t, "sgdr", cfg.Schedule)
	assert.Equal(t, defaultNumSamples, cfg.NumSamples)
	assert.Equal(t, defaultBatchSize, cfg.BatchSize)
	assert.Equal(t, 0, cfg.Epochs)
}

func TestLoadRunConfig_EmptyFileIsDefault(t *testing.T) {
	cfg, err := LoadRunConfig(writeTempFile(t, "run.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultRunConfig(), cfg)
}

func TestLoadRunConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown top-level key", "schedule: sgd\nlearning_rate: 0.1\n"},
		{"unknown option key", "schedule: sgd\noptions:\n  factor: 0.5\n"},
		{"unknown schedule", "schedule: adam\n"},
		{"zero batch size", "schedule: sgd\nbatch_size: 0\n"},
		{"negative epochs", "schedule: sgd\nepochs: -3\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadRunConfig(writeTempFile(t, "run.yaml", tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRunConfig_UnknownScheduleIsTyped(t *testing.T) {
	_, err := LoadRunConfig(writeTempFile(t, "run.yaml", "schedule: adam\n"))
	assert.True(t, errors.Is(err, schedule.ErrUnknownSchedule))
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
