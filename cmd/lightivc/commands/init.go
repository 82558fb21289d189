package commands

import (
	"github.com/spf13/cobra"

	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/libs/log"
	tmos "github.com/tendermint/lightivc/libs/os"
)

// MakeInitCommand returns the command that writes the config file of a new
// home directory. An existing config file is checked, not overwritten.
func MakeInitCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFile(conf.RootDir)
			if tmos.FileExists(path) {
				existing, err := config.ReadConfigFile(path)
				if err != nil {
					return err
				}
				if err := existing.ValidateBasic(); err != nil {
					return err
				}
				logger.Info("found config file", "path", path)
				return nil
			}

			if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			}
			logger.Info("generated config file", "path", path)
			return nil
		},
	}
	cmd.Flags().String("vkey", conf.VerifyingKey, "hex encoded verifying key of the step program")
	return cmd
}
