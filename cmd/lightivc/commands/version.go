package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/lightivc/version"
)

var verbose bool

// VersionCmd ...
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			return nil
		}
		values, err := json.MarshalIndent(struct {
			LightIVC      string `json:"lightivc"`
			TapeVersion   uint64 `json:"tape_version"`
			BlockProtocol uint64 `json:"block_protocol"`
		}{
			LightIVC:      version.Version,
			TapeVersion:   version.TapeVersion,
			BlockProtocol: version.BlockProtocol.Uint64(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(values))
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show tape and block protocol versions")
}
