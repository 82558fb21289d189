package commands

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/libs/log"
	"github.com/tendermint/lightivc/light/provider"
	lighthttp "github.com/tendermint/lightivc/light/provider/http"
	"github.com/tendermint/lightivc/prover"
)

// MakeFetchCommand returns the command that downloads light blocks from the
// RPC primary into the headers directory.
func MakeFetchCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var (
		from, to int64
		genesis  bool
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download light blocks into the headers directory",
		Long: `fetch downloads the light blocks from --from to --to, inclusive, and
writes each to the headers directory as <height>.json. Without --to it fetches
up to the latest height of the primary. With --genesis the block at --from is
written to the genesis file instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conf.Prover.Strategy != config.StrategyLight {
				return fmt.Errorf("fetch downloads light blocks; strategy %q reads another header format", conf.Prover.Strategy)
			}
			if conf.RPC.ChainID == "" {
				return errors.New("rpc.chain-id must be set to fetch headers")
			}
			p, err := lighthttp.NewWithClient(conf.RPC.ChainID, conf.RPC.Primary, &gohttp.Client{Timeout: conf.RPC.Timeout})
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), conf, logger, p, from, to, genesis)
		},
	}
	cmd.Flags().Int64Var(&from, "from", 1, "first height to fetch")
	cmd.Flags().Int64Var(&to, "to", 0, "last height to fetch, 0 for the latest")
	cmd.Flags().BoolVar(&genesis, "genesis", false, "write the block at --from to the genesis file")
	return cmd
}

func runFetch(
	ctx context.Context,
	conf *config.Config,
	logger log.Logger,
	p provider.Provider,
	from, to int64,
	genesis bool,
) error {
	if genesis {
		to = from
	}
	if to == 0 {
		latest, err := p.LightBlock(ctx, 0)
		if err != nil {
			return fmt.Errorf("fetching latest height: %w", err)
		}
		to = latest.Height
	}

	blocks, err := prover.FetchRange(ctx, p, from, to, conf.RPC.Concurrency)
	if err != nil {
		return err
	}

	if genesis {
		file := conf.Prover.GenesisFile()
		name := strings.TrimSuffix(filepath.Base(file), prover.HeaderFileExt)
		path, err := prover.WriteHeaderFile(filepath.Dir(file), name, blocks[0])
		if err != nil {
			return err
		}
		logger.Info("wrote genesis header", "height", blocks[0].Height, "path", path)
		return nil
	}

	dir := conf.Prover.HeadersDir()
	for _, lb := range blocks {
		if _, err := prover.WriteHeaderFile(dir, strconv.FormatInt(lb.Height, 10), lb); err != nil {
			return err
		}
	}
	logger.Info("fetched headers", "from", from, "to", to, "dir", dir, "primary", p)
	return nil
}
