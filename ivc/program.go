package ivc

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tendermint/lightivc/libs/bincode"
	"github.com/tendermint/lightivc/libs/log"
	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/zkvm"
)

// Precompile checks that a proof exists, made by the program identified by
// vkey, whose public values hash to digest.
//
//go:generate mockery --case underscore --name Precompile
type Precompile interface {
	VerifyProof(vkey types.VerifyingKeyID, digest types.Digest) error
}

// Outcome is what a step committed. Failure holds the reason for ok=false
// and is nil when the chain is valid.
type Outcome struct {
	PublicValues types.PublicValues
	Transition   types.Transition
	Failure      error
}

// OK reports whether the step committed ok=true.
func (o Outcome) OK() bool { return o.PublicValues.OK }

// ProgramOption sets an optional parameter on the Program.
type ProgramOption func(*Program)

// WithLogger sets the program logger.
func WithLogger(logger log.Logger) ProgramOption {
	return func(p *Program) { p.logger = logger }
}

// WithMetrics sets the program metrics.
func WithMetrics(metrics *Metrics) ProgramOption {
	return func(p *Program) { p.metrics = metrics }
}

// Program runs steps. It holds no state between steps and may be shared.
type Program struct {
	strategy   Strategy
	precompile Precompile
	logger     log.Logger
	metrics    *Metrics
}

// NewProgram returns a program verifying transitions with strategy and
// recursive proofs with precompile.
func NewProgram(strategy Strategy, precompile Precompile, options ...ProgramOption) *Program {
	p := &Program{
		strategy:   strategy,
		precompile: precompile,
		logger:     log.NewNopLogger(),
		metrics:    NopMetrics(),
	}
	for _, option := range options {
		option(p)
	}
	p.logger = p.logger.With("module", "ivc", "strategy", strategy.Name())
	return p
}

// input is everything a step reads from its tape.
type input struct {
	vkey       types.VerifyingKeyID
	prevValues []byte
	genesis    types.Digest
	transition types.Transition
	head       types.ChainHeader
}

// Step runs one step over env. A non-nil error means the step aborted and
// committed nothing; it is an ErrDecode or an ErrPrecompile.
func (p *Program) Step(env *zkvm.Env) (Outcome, error) {
	start := time.Now()

	in, err := p.readInput(env)
	if err != nil {
		p.abort("decode", err)
		return Outcome{}, err
	}

	var failure error
	switch t := in.transition.(type) {
	case types.Genesis:
		failure = p.verifyTransition(t, in)
	case types.Continuation:
		failure, err = p.continuation(t, in)
		if err != nil {
			return Outcome{}, err
		}
	default:
		err := ErrDecode{Item: "prior header", Err: fmt.Errorf("unknown transition %T", t)}
		p.abort("decode", err)
		return Outcome{}, err
	}

	pv := types.PublicValues{
		VKeyHash:    in.vkey.Hash(),
		GenesisHash: in.genesis,
		HeadHash:    in.head.Digest(),
		OK:          failure == nil,
	}
	env.Commit(pv.VKeyHash)
	env.Commit(pv.GenesisHash)
	env.Commit(pv.HeadHash)
	env.CommitBool(pv.OK)

	kind := transitionLabel(in.transition)
	p.metrics.Steps.With("transition", kind, "ok", strconv.FormatBool(pv.OK)).Add(1)
	p.metrics.StepDurationSeconds.With("transition", kind).Observe(time.Since(start).Seconds())
	if height, ok := headHeight(in.head); ok && pv.OK {
		p.metrics.HeadHeight.Set(float64(height))
	}

	if failure != nil {
		p.logger.Info("chain broken", "transition", in.transition, "head", pv.HeadHash, "reason", failure)
	} else {
		p.logger.Debug("step verified", "transition", in.transition, "head", pv.HeadHash)
	}

	return Outcome{PublicValues: pv, Transition: in.transition, Failure: failure}, nil
}

func (p *Program) readInput(env *zkvm.Env) (input, error) {
	var in input

	if err := env.Read(&in.vkey); err != nil {
		return in, ErrDecode{Item: "verifying key", Err: err}
	}

	var prev bincode.Bytes
	if err := env.Read(&prev); err != nil {
		return in, ErrDecode{Item: "previous public values", Err: err}
	}
	in.prevValues = prev

	raw, err := env.ReadVec()
	if err != nil {
		return in, ErrDecode{Item: "genesis hash", Err: err}
	}
	if in.genesis, err = types.DigestFromBytes(raw); err != nil {
		return in, ErrDecode{Item: "genesis hash", Err: err}
	}

	if raw, err = env.ReadVec(); err != nil {
		return in, ErrDecode{Item: "prior header", Err: err}
	}
	if in.transition, err = types.DecodeTransition(raw, p.strategy.DecodeHeader); err != nil {
		return in, ErrDecode{Item: "prior header", Err: err}
	}

	if raw, err = env.ReadVec(); err != nil {
		return in, ErrDecode{Item: "current header", Err: err}
	}
	if in.head, err = p.strategy.DecodeHeader(raw); err != nil {
		return in, ErrDecode{Item: "current header", Err: err}
	}

	return in, nil
}

// continuation runs the continuity checks, the recursive proof check and the
// transition check. failure is the reason for ok=false.
func (p *Program) continuation(t types.Continuation, in input) (failure, fatal error) {
	prev := bincode.From(in.prevValues)

	var vkeyHash, genesis, head types.Digest
	if err := prev.Read(&vkeyHash); err != nil {
		return nil, p.decodeError("previous vkey hash", err)
	}
	if want := in.vkey.Hash(); vkeyHash != want {
		return p.inconsistent(ConsistencyError{Check: CheckVKeyHash, Want: vkeyHash, Got: want}), nil
	}

	if err := prev.Read(&genesis); err != nil {
		return nil, p.decodeError("previous genesis hash", err)
	}
	if genesis != in.genesis {
		return p.inconsistent(ConsistencyError{Check: CheckGenesisHash, Want: genesis, Got: in.genesis}), nil
	}

	if err := prev.Read(&head); err != nil {
		return nil, p.decodeError("previous head hash", err)
	}
	if prior := t.Prior.Digest(); head != prior {
		return p.inconsistent(ConsistencyError{Check: CheckHeadHash, Want: head, Got: prior}), nil
	}

	ok, err := prev.ReadBool()
	if err != nil {
		return nil, p.decodeError("previous ok", err)
	}
	if !ok {
		return p.inconsistent(ConsistencyError{Check: CheckPriorOK}), nil
	}

	digest := types.DigestOf(in.prevValues)
	if err := p.precompile.VerifyProof(in.vkey, digest); err != nil {
		err = ErrPrecompile{Digest: digest, Err: err}
		p.abort("precompile", err)
		return nil, err
	}

	return p.verifyTransition(t, in), nil
}

func (p *Program) verifyTransition(t types.Transition, in input) error {
	if err := p.strategy.VerifyTransition(t, in.head, in.genesis); err != nil {
		return VerificationError{Transition: t, Reason: err}
	}
	return nil
}

func (p *Program) inconsistent(err ConsistencyError) error {
	p.metrics.ConsistencyFailures.With("check", err.Check.String()).Add(1)
	return err
}

func (p *Program) decodeError(item string, err error) error {
	err = ErrDecode{Item: item, Err: err}
	p.abort("decode", err)
	return err
}

func (p *Program) abort(reason string, err error) {
	p.metrics.Aborts.With("reason", reason).Add(1)
	p.logger.Error("step aborted", "err", err)
}

func headHeight(h types.ChainHeader) (int64, bool) {
	switch h := h.(type) {
	case *types.LightBlock:
		if h.SignedHeader != nil && h.Header != nil {
			return h.Height, true
		}
	case *types.ExtendedHeader:
		return h.Height(), true
	}
	return 0, false
}

func transitionLabel(t types.Transition) string {
	if _, ok := t.(types.Genesis); ok {
		return "genesis"
	}
	return "continuation"
}

// IsFatal reports whether err aborts a step.
func IsFatal(err error) bool {
	var decodeErr ErrDecode
	var precompileErr ErrPrecompile
	return errors.As(err, &decodeErr) || errors.As(err, &precompileErr)
}

// WriteInput writes the five input items of a step to stdin, in the order
// Step reads them. prevValues is ignored by a Genesis step and may be empty.
func WriteInput(
	stdin *zkvm.Stdin,
	vkey types.VerifyingKeyID,
	prevValues []byte,
	genesis types.Digest,
	transition types.Transition,
	head types.ChainHeader,
) error {
	prior, err := types.EncodeTransition(transition)
	if err != nil {
		return fmt.Errorf("encoding prior header: %w", err)
	}
	current, err := types.MarshalCBOR(head)
	if err != nil {
		return fmt.Errorf("encoding current header: %w", err)
	}

	stdin.Write(vkey)
	stdin.Write(bincode.Bytes(prevValues))
	stdin.WriteVec(genesis[:])
	stdin.WriteVec(prior)
	stdin.WriteVec(current)
	return nil
}
