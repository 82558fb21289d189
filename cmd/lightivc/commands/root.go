package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/libs/cli"
	"github.com/tendermint/lightivc/libs/log"
)

// EnvPrefix prefixes the environment variables read into the config, e.g.
// LIGHTIVC_PROVER_STRATEGY.
const EnvPrefix = "LIGHTIVC"

// ParseConfig retrieves the default environment configuration,
// sets up the root and ensures that the root exists
func ParseConfig(conf *config.Config) (*config.Config, error) {
	if err := viper.Unmarshal(conf); err != nil {
		return nil, err
	}

	conf.SetRoot(conf.RootDir)

	if err := conf.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	return conf, nil
}

// RootCommand constructs the root command-line entry point. Subcommands see
// conf and logger after the config file, environment and flags were applied.
func RootCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lightivc",
		Short: "Incrementally prove chains of light client headers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == VersionCmd.Name() {
				return nil
			}

			if err := cli.BindFlagsLoadViper(cmd, args); err != nil {
				return err
			}

			pconf, err := ParseConfig(conf)
			if err != nil {
				return err
			}
			*conf = *pconf
			if err := config.EnsureRoot(conf.RootDir); err != nil {
				return err
			}
			return log.OverrideWithNewLogger(logger, conf.LogFormat, conf.LogLevel)
		},
	}
	cmd.PersistentFlags().StringP(cli.HomeFlag, "", os.ExpandEnv(filepath.Join("$HOME", config.DefaultLightIVCDir)), "directory for config and data")
	cmd.PersistentFlags().String("log-level", conf.LogLevel, "log level")
	cmd.PersistentFlags().String("chain-name", conf.ChainName, "name the proofs are stored under")
	cobra.OnInitialize(func() { cli.InitEnv(EnvPrefix) })
	return cmd
}
