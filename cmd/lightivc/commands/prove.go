package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/lightivc/config"
	"github.com/tendermint/lightivc/ivc"
	"github.com/tendermint/lightivc/libs/log"
	tmos "github.com/tendermint/lightivc/libs/os"
	"github.com/tendermint/lightivc/prover"
	"github.com/tendermint/lightivc/store"
)

const proofDBName = "proofs"

// MakeProveCommand returns the command that folds the header files into a
// chain of proofs.
func MakeProveCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var (
		genesisFile string
		reset       bool
	)
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove the genesis header and fold every header file onto it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := tmos.TrapSignal(cmd.Context(), logger)
			defer stop()

			if genesisFile == "" {
				genesisFile = conf.Prover.GenesisFile()
			}
			return runProve(ctx, conf, logger, genesisFile, reset)
		},
	}
	cmd.Flags().StringVar(&genesisFile, "genesis", "", "header file the chain is rooted at (default prover.genesis-file)")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete the proofs already stored for the chain")
	return cmd
}

func runProve(ctx context.Context, conf *config.Config, logger log.Logger, genesisFile string, reset bool) error {
	vkey, err := conf.VKey()
	if err != nil {
		return err
	}
	strategy, err := conf.Prover.NewStrategy()
	if err != nil {
		return err
	}
	decode, err := prover.DecoderFor(conf.Prover.Strategy)
	if err != nil {
		return err
	}

	genesis, err := prover.ReadHeaderFile(genesisFile, decode)
	if err != nil {
		return fmt.Errorf("reading genesis: %w", err)
	}
	headers, err := prover.DirSource{Dir: conf.Prover.HeadersDir(), Decode: decode}.Headers()
	if err != nil {
		return err
	}
	headers = withoutHeader(headers, genesis)

	db, err := config.DefaultDBProvider(&config.DBContext{ID: proofDBName, Config: conf})
	if err != nil {
		return err
	}
	defer db.Close()

	proofs, err := openChain(db, conf.ChainName, reset)
	if err != nil {
		return err
	}

	metrics, programMetrics := prover.NopMetrics(), ivc.NopMetrics()
	if conf.Instrumentation.Prometheus {
		metrics = prover.PrometheusMetrics(conf.Instrumentation.Namespace, "chain_name", conf.ChainName)
		programMetrics = ivc.PrometheusMetrics(conf.Instrumentation.Namespace, "chain_name", conf.ChainName)
		srv, err := startPrometheusServer(conf.Instrumentation, logger)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Error("stopping prometheus server", "err", err)
			}
		}()
	}

	cp := prover.New(vkey, strategy,
		prover.WithStore(proofs),
		prover.WithProofDir(conf.ProofDir()),
		prover.WithLogger(logger),
		prover.WithMetrics(metrics),
		prover.WithProgramMetrics(programMetrics),
	)
	steps, err := cp.ProveChain(ctx, conf.ChainName, genesis, headers)
	if err != nil {
		return err
	}

	last := steps[len(steps)-1]
	logger.Info("proved chain",
		"chain", conf.ChainName,
		"steps", len(steps),
		"head", last.Outcome.PublicValues.HeadHash,
		"ok", last.Outcome.OK())
	return nil
}

func openChain(db dbm.DB, chain string, reset bool) (*store.ProofStore, error) {
	proofs, err := store.New(db, chain)
	if err != nil {
		return nil, err
	}
	if proofs.Size() == 0 {
		return proofs, nil
	}
	if !reset {
		return nil, fmt.Errorf("chain %q already has %d proofs; use --reset or another chain-name", chain, proofs.Size())
	}
	latest, err := proofs.Latest()
	if err != nil {
		return nil, err
	}
	if _, err := proofs.Prune(latest.Index + 1); err != nil {
		return nil, err
	}
	return proofs, nil
}

// withoutHeader drops the copies of h from headers.
func withoutHeader(headers []prover.NamedHeader, h prover.NamedHeader) []prover.NamedHeader {
	out := headers[:0]
	for _, nh := range headers {
		if nh.Header.Digest() != h.Header.Digest() {
			out = append(out, nh)
		}
	}
	return out
}

// startPrometheusServer starts a Prometheus HTTP server, listening for
// metrics collectors on cfg.PrometheusListenAddr.
func startPrometheusServer(cfg *config.InstrumentationConfig, logger log.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", cfg.PrometheusListenAddr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler: promhttp.InstrumentMetricHandler(
			prometheus.DefaultRegisterer, promhttp.HandlerFor(
				prometheus.DefaultGatherer,
				promhttp.HandlerOpts{MaxRequestsInFlight: cfg.MaxOpenConnections},
			),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prometheus HTTP server ListenAndServe", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}
