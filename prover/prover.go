package prover

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tendermint/lightivc/ivc"
	"github.com/tendermint/lightivc/libs/log"
	"github.com/tendermint/lightivc/store"
	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/version"
	"github.com/tendermint/lightivc/zkvm"
)

// Step is one proved step of a chain.
type Step struct {
	Index   int64
	Name    string
	Outcome ivc.Outcome
	Proof   zkvm.Proof
}

// Option sets an optional parameter on the ChainProver.
type Option func(*ChainProver)

// WithStore persists every proof of ProveChain to s.
func WithStore(s *store.ProofStore) Option {
	return func(cp *ChainProver) { cp.store = s }
}

// WithProofDir writes every proof of ProveChain to dir as <name>_proof.json.
func WithProofDir(dir string) Option {
	return func(cp *ChainProver) { cp.proofDir = dir }
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(cp *ChainProver) { cp.logger = logger }
}

// WithMetrics sets the prover metrics.
func WithMetrics(m *Metrics) Option {
	return func(cp *ChainProver) { cp.metrics = m }
}

// WithProgramMetrics sets the metrics of the step program.
func WithProgramMetrics(m *ivc.Metrics) Option {
	return func(cp *ChainProver) { cp.programMetrics = m }
}

// ChainProver folds headers into a chain of proofs, one step per header.
// Every proof it makes is sealed under the same verifying key.
type ChainProver struct {
	vkey     types.VerifyingKeyID
	strategy ivc.Strategy
	runID    string

	store          *store.ProofStore
	proofDir       string
	logger         log.Logger
	metrics        *Metrics
	programMetrics *ivc.Metrics
	now            func() time.Time
}

// New returns a prover of chains verified with strategy.
func New(vkey types.VerifyingKeyID, strategy ivc.Strategy, options ...Option) *ChainProver {
	cp := &ChainProver{
		vkey:           vkey,
		strategy:       strategy,
		runID:          uuid.NewString(),
		logger:         log.NewNopLogger(),
		metrics:        NopMetrics(),
		programMetrics: ivc.NopMetrics(),
		now:            time.Now,
	}
	for _, option := range options {
		option(cp)
	}
	cp.logger = cp.logger.With("module", "prover", "run", cp.runID)
	return cp
}

// RunID identifies the records written by this prover.
func (cp *ChainProver) RunID() string { return cp.runID }

// ProveGenesis proves the first step of a chain rooted at genesis.
func (cp *ChainProver) ProveGenesis(genesis NamedHeader) (Step, error) {
	stdin := zkvm.NewStdin()
	err := ivc.WriteInput(stdin, cp.vkey, nil, genesis.Header.Digest(), types.Genesis{}, genesis.Header)
	if err != nil {
		return Step{}, err
	}
	return cp.run(stdin, 0, genesis.Name)
}

// ProveStep proves current follows prior, given the proof of the step that
// ended at prior.
func (cp *ChainProver) ProveStep(prev zkvm.Proof, index int64, prior, current NamedHeader) (Step, error) {
	values, err := prev.Values()
	if err != nil {
		return Step{}, fmt.Errorf("previous proof: %w", err)
	}

	stdin := zkvm.NewStdin()
	stdin.WriteProof(prev)
	err = ivc.WriteInput(stdin, cp.vkey, prev.PublicValues, values.GenesisHash,
		types.Continuation{Prior: prior.Header}, current.Header)
	if err != nil {
		return Step{}, err
	}
	return cp.run(stdin, index, current.Name)
}

func (cp *ChainProver) run(stdin *zkvm.Stdin, index int64, name string) (Step, error) {
	start := time.Now()
	program := ivc.NewProgram(cp.strategy, zkvm.NewProofSetPrecompile(stdin),
		ivc.WithLogger(cp.logger), ivc.WithMetrics(cp.programMetrics))

	env := zkvm.NewEnv(stdin)
	out, err := program.Step(env)
	if err != nil {
		return Step{}, fmt.Errorf("step %d (%s): %w", index, name, err)
	}

	proof := zkvm.NewProof(cp.vkey, env.PublicValues())
	cp.metrics.Proofs.With("ok", strconv.FormatBool(out.OK())).Add(1)
	cp.metrics.ProveSeconds.Observe(time.Since(start).Seconds())
	return Step{Index: index, Name: name, Outcome: out, Proof: proof}, nil
}

// ProveChain proves genesis and then every header in order, persisting each
// proof as it is made. It stops at the first step that aborts and returns
// the steps proved so far. A broken link does not stop the fold: later
// steps commit ok=false.
func (cp *ChainProver) ProveChain(ctx context.Context, chain string, genesis NamedHeader, headers []NamedHeader) ([]Step, error) {
	logger := cp.logger.With("chain", chain)

	step, err := cp.ProveGenesis(genesis)
	if err != nil {
		return nil, err
	}
	if err := cp.persist(chain, step, types.Digest{}); err != nil {
		return nil, err
	}
	logger.Info("proved genesis", "name", genesis.Name, "hash", genesis.Header.Digest(), "ok", step.Outcome.OK())

	steps := []Step{step}
	prior := genesis
	for i, current := range headers {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		step, err = cp.ProveStep(step.Proof, int64(i+1), prior, current)
		if err != nil {
			return steps, err
		}
		if err := cp.persist(chain, step, prior.Header.Digest()); err != nil {
			return steps, err
		}
		steps = append(steps, step)
		cp.metrics.ChainLength.With("chain", chain).Set(float64(step.Index))

		if step.Outcome.OK() {
			logger.Info("proved step", "index", step.Index, "name", current.Name, "head", step.Outcome.PublicValues.HeadHash)
		} else {
			logger.Info("chain broken", "index", step.Index, "name", current.Name, "reason", step.Outcome.Failure)
		}
		prior = current
	}
	return steps, nil
}

func (cp *ChainProver) persist(chain string, step Step, prior types.Digest) error {
	if cp.store == nil && cp.proofDir == "" {
		return nil
	}
	r := store.Record{
		Chain:       chain,
		Index:       step.Index,
		Name:        step.Name,
		TapeVersion: version.TapeVersion,
		RunID:       cp.runID,
		Transition:  transitionKind(step.Outcome.Transition),
		Prior:       prior,
		Created:     cp.now().UTC(),
		Proof:       step.Proof,
	}
	if cp.store != nil {
		if err := cp.store.SaveProof(r); err != nil {
			return fmt.Errorf("saving proof %d: %w", step.Index, err)
		}
	}
	if cp.proofDir != "" {
		path, err := store.WriteProofFile(cp.proofDir, r)
		if err != nil {
			return fmt.Errorf("writing proof %d: %w", step.Index, err)
		}
		cp.logger.Debug("wrote proof", "path", path)
	}
	return nil
}

const (
	transitionGenesis      = "genesis"
	transitionContinuation = "continuation"
)

func transitionKind(t types.Transition) string {
	if _, ok := t.(types.Genesis); ok {
		return transitionGenesis
	}
	return transitionContinuation
}
