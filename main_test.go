package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newRootCmd())
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("DOOMRL_REPLAY_CAPACITY", "123")
	t.Setenv("DOOMRL_EXPERIMENT_BATCH_SIZE", "16")
	t.Setenv("DOOMRL_ENV_GRAY", "false")

	cfg, err := loadConfig(newRootCmd())
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.Replay.Capacity)
	assert.Equal(t, 16, cfg.Experiment.BatchSize)
	assert.False(t, cfg.Env.Gray)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("DOOMRL_REPLAY_PRIORITY_EXPONENT", "2")

	_, err := loadConfig(newRootCmd())
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename,
		[]byte("agent:\n  epsilon: 0.5\nreplay:\n  capacity: 300\n"), 0o644))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filename,
		"--capacity", "400"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Agent.Epsilon)

	// Flags take precedence over the file
	assert.Equal(t, 400, cfg.Replay.Capacity)

	// Each command starts from the defaults
	cfg, err = loadConfig(newRootCmd())
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config",
		filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

func TestDefaultReplayFitsInMemory(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 100*120*4, cfg.observationLen())

	// Each stored transition holds one observation of float64 features
	assert.Equal(t, cfg.Replay.Capacity*cfg.observationLen()*8,
		cfg.replayBytes())
	assert.Less(t, cfg.replayBytes(), 1<<30)

	cfg.Env.Gray = false
	assert.Equal(t, 3*100*120*4, cfg.observationLen())
}
