package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) map[string]string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	got := make(map[string]string)
	cmd := &cobra.Command{
		Use: "root",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range []string{HomeFlag, "chain-name", "prover.strategy"} {
				got[key] = viper.GetString(key)
			}
			return nil
		},
	}
	cmd.Flags().String("chain-name", "flag-default", "")
	cmd = PrepareBaseCmd(cmd, "LIGHTIVCTEST", "/nonexistent")
	InitEnv("LIGHTIVCTEST")

	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return got
}

func TestBindFlagsLoadViper(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "config"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config", "config.toml"),
		[]byte("chain-name = \"from-file\"\n[prover]\nstrategy = \"consensus\"\n"), 0600))

	got := runCommand(t, "--home", home)
	assert.Equal(t, home, got[HomeFlag])
	assert.Equal(t, "consensus", got["prover.strategy"])
	// an unset flag does not shadow the file
	assert.Equal(t, "from-file", got["chain-name"])

	got = runCommand(t, "--home", home, "--chain-name", "from-flag")
	assert.Equal(t, "from-flag", got["chain-name"])
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"),
		[]byte("[prover]\nstrategy = \"consensus\"\n"), 0600))
	t.Setenv("LIGHTIVCTEST_PROVER_STRATEGY", "light")

	got := runCommand(t, "--home", home)
	assert.Equal(t, "light", got["prover.strategy"])
}

func TestMissingConfigFile(t *testing.T) {
	got := runCommand(t, "--home", t.TempDir())
	assert.Equal(t, "flag-default", got["chain-name"])
	assert.Empty(t, got["prover.strategy"])
}

func TestMalformedConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("chain-name = "), 0600))

	viper.Reset()
	t.Cleanup(viper.Reset)
	cmd := PrepareBaseCmd(&cobra.Command{Use: "root", RunE: func(*cobra.Command, []string) error { return nil }},
		"LIGHTIVCTEST", home)
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}
