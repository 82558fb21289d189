package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ensureFiles(t *testing.T, rootDir string, files ...string) {
	for _, f := range files {
		p := filepath.Join(rootDir, f)
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestEnsureRoot(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, EnsureRoot(tmpDir))
	require.NoError(t, WriteConfigFile(tmpDir, DefaultConfig()))

	data, err := os.ReadFile(ConfigFile(tmpDir))
	require.NoError(t, err)
	checkConfig(t, string(data))

	ensureFiles(t, tmpDir, "data", "headers", "proofs", "config/config.toml")
}

func TestEnsureTestRoot(t *testing.T) {
	cfg, err := ResetTestRoot(t.Name())
	require.NoError(t, err)
	defer os.RemoveAll(cfg.RootDir)

	data, err := os.ReadFile(ConfigFile(cfg.RootDir))
	require.NoError(t, err)
	checkConfig(t, string(data))

	assert.Equal(t, TestConfig().SetRoot(cfg.RootDir), cfg)
	baseConfig := DefaultBaseConfig()
	ensureFiles(t, cfg.RootDir, defaultDataDir, baseConfig.ProofPath)
}

func checkConfig(t *testing.T, configFile string) {
	t.Helper()
	// list of words we expect in the config
	var elems = []string{
		"chain-name",
		"vkey",
		"db-backend",
		"trusting-period",
		"primary",
		"prometheus",
		"namespace",
	}
	for _, e := range elems {
		assert.True(t, strings.Contains(configFile, e), "missing %q", e)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := TestConfig()
	cfg.ChainName = "osmosis"
	cfg.ProofPath = `C:\proofs "quoted"`
	cfg.Prover.Strategy = StrategyConsensus
	cfg.Prover.TrustingPeriod = 90 * time.Minute
	cfg.RPC.Concurrency = 9
	cfg.Instrumentation.Prometheus = true

	require.NoError(t, os.MkdirAll(filepath.Join(dir, defaultConfigDir), 0700))
	require.NoError(t, WriteConfigFile(dir, cfg))

	got, err := ReadConfigFile(ConfigFile(dir))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	require.NoError(t, got.ValidateBasic())
}

func TestReadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) string {
		p := filepath.Join(dir, "config.toml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0600))
		return p
	}

	_, err := ReadConfigFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = ReadConfigFile(write("chain-name = "))
	assert.Error(t, err, "syntax")

	_, err = ReadConfigFile(write("chian-name = \"typo\"\n"))
	assert.Error(t, err, "unknown key")

	_, err = ReadConfigFile(write("[prover]\ntrusting-period = \"fortnight\"\n"))
	assert.Error(t, err, "bad duration")

	cfg, err := ReadConfigFile(write("[rpc]\nconcurrency = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.RPC.Concurrency)
	assert.Equal(t, DefaultProverConfig(), cfg.Prover, "unset keys keep their defaults")
}
