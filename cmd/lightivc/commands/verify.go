package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/libs/log"
	"github.com/tendermint/lightivc/prover"
	"github.com/tendermint/lightivc/store"
)

// MakeVerifyCommand returns the command that audits the stored proof
// chains.
func MakeVerifyCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Audit the stored proof chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			vkey, err := conf.VKey()
			if err != nil {
				return err
			}
			strategy, err := conf.Prover.NewStrategy()
			if err != nil {
				return err
			}

			db, err := config.DefaultDBProvider(&config.DBContext{ID: proofDBName, Config: conf})
			if err != nil {
				return err
			}
			defer db.Close()

			chains := []string{conf.ChainName}
			if all {
				if chains, err = store.Chains(db); err != nil {
					return err
				}
			}
			stores := make([]*store.ProofStore, 0, len(chains))
			for _, chain := range chains {
				s, err := store.New(db, chain)
				if err != nil {
					return err
				}
				stores = append(stores, s)
			}

			cp := prover.New(vkey, strategy, prover.WithLogger(logger))
			results, err := cp.AuditChains(cmd.Context(), stores...)
			if err != nil {
				return err
			}

			var failed int
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tFAILED\t%v\n", res.Chain, res.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tsteps=%d\thead=%v\tvalid=%t\n", res.Chain, res.Steps, res.Head, res.Valid)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d chains failed the audit", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "audit every chain in the store, not only chain-name")
	return cmd
}
