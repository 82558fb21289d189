package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/lightivc/store"
	"github.com/tendermint/lightivc/types"
)

// MakeShowCommand returns the command that prints the public values of a
// proof file.
func MakeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <proof file>",
		Short: "Print the public values committed by a proof",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := store.ReadProofFile(args[0])
			if err != nil {
				return err
			}
			if err := r.ValidateBasic(); err != nil {
				return err
			}
			values, err := r.Values()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(struct {
				Chain  string             `json:"chain"`
				Index  int64              `json:"index"`
				Name   string             `json:"name"`
				Run    string             `json:"run_id"`
				Values types.PublicValues `json:"public_values"`
			}{r.Chain, r.Index, r.Name, r.RunID, values}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
