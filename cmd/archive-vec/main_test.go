package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"cleanup", "backfill", "analyze", "probe"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	origDB, origRoot := dbPath, archiveRoot
	t.Cleanup(func() { dbPath, archiveRoot = origDB, origRoot })

	dbPath = "/tmp/test.db"
	archiveRoot = "/srv/archive"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.Database())
	assert.Equal(t, "/srv/archive", cfg.ArchiveRoot)
}

func TestCleanupDefaultsToDryRun(t *testing.T) {
	f := cleanupCmd.Flags().Lookup("execute")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}
