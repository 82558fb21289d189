package ivc

import (
	"fmt"
	"time"

	"github.com/tendermint/lightivc/light"
	"github.com/tendermint/lightivc/types"
)

// DefaultVerifySkew is added to the untrusted header time to get the time
// light client verification runs at.
const DefaultVerifySkew = 20 * time.Second

// Strategy decodes headers of one kind and verifies transitions between
// them. A deployment uses one strategy for every step of a chain.
//
//go:generate mockery --case underscore --name Strategy
type Strategy interface {
	Name() string
	// DecodeHeader decodes a required header from its tape encoding.
	DecodeHeader(data []byte) (types.ChainHeader, error)
	// VerifyTransition returns nil if head validly follows t. On Genesis, head
	// must hash to genesis.
	VerifyTransition(t types.Transition, head types.ChainHeader, genesis types.Digest) error
}

// verifyGenesis checks head is a well formed header hashing to genesis.
// A header without a hash has the zero digest and never starts a chain.
func verifyGenesis(head types.ChainHeader, genesis types.Digest, validate func() error) error {
	got := head.Digest()
	if got.IsZero() {
		return fmt.Errorf("%w: header has no hash", ErrInvalidGenesis)
	}
	if err := validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGenesis, err)
	}
	if got != genesis {
		return fmt.Errorf("%w: %v != %v", ErrGenesisMismatch, got, genesis)
	}
	return nil
}

// ConsensusStrategy verifies extended headers by their own validator set
// attestation.
type ConsensusStrategy struct{}

var _ Strategy = ConsensusStrategy{}

func (ConsensusStrategy) Name() string { return "consensus" }

func (ConsensusStrategy) DecodeHeader(data []byte) (types.ChainHeader, error) {
	return types.DecodeExtendedHeader(data)
}

func (ConsensusStrategy) VerifyTransition(t types.Transition, head types.ChainHeader, genesis types.Digest) error {
	untrusted, ok := head.(*types.ExtendedHeader)
	if !ok {
		return fmt.Errorf("header is %T, want *types.ExtendedHeader", head)
	}
	switch t := t.(type) {
	case types.Genesis:
		return verifyGenesis(untrusted, genesis, untrusted.ValidateBasic)
	case types.Continuation:
		prior, ok := t.Prior.(*types.ExtendedHeader)
		if !ok {
			return fmt.Errorf("prior header is %T, want *types.ExtendedHeader", t.Prior)
		}
		// the prior is only bound to the chain by its header hash
		if err := prior.ValidateBasic(); err != nil {
			return fmt.Errorf("prior header: %w", err)
		}
		return prior.Verify(untrusted)
	default:
		return fmt.Errorf("unknown transition %T", t)
	}
}

// LightClientStrategy verifies light blocks with the light client trust
// rules. Verification runs at the untrusted header time plus Skew, so a step
// gives the same answer whenever it is run.
type LightClientStrategy struct {
	Options light.Options
	Skew    time.Duration

	verifier light.ProdVerifier
}

var _ Strategy = LightClientStrategy{}

// NewLightClientStrategy returns a strategy with the default light client
// options and verify skew.
func NewLightClientStrategy() LightClientStrategy {
	return LightClientStrategy{
		Options: light.DefaultOptions(),
		Skew:    DefaultVerifySkew,
	}
}

func (LightClientStrategy) Name() string { return "light" }

func (LightClientStrategy) DecodeHeader(data []byte) (types.ChainHeader, error) {
	return types.DecodeLightBlock(data)
}

func (s LightClientStrategy) VerifyTransition(t types.Transition, head types.ChainHeader, genesis types.Digest) error {
	untrusted, ok := head.(*types.LightBlock)
	if !ok {
		return fmt.Errorf("header is %T, want *types.LightBlock", head)
	}
	switch t := t.(type) {
	case types.Genesis:
		// validate only runs on a non-zero digest, so the header is present
		return verifyGenesis(untrusted, genesis, func() error {
			return untrusted.ValidateBasic(untrusted.ChainID)
		})
	case types.Continuation:
		trusted, ok := t.Prior.(*types.LightBlock)
		if !ok {
			return fmt.Errorf("prior header is %T, want *types.LightBlock", t.Prior)
		}
		verdict := s.verifier.VerifyUpdateHeader(untrusted, trusted, s.Options, untrusted.Timestamp().Add(s.Skew))
		if err := verdict.Err(); err != nil {
			return fmt.Errorf("%v verdict: %w", verdict.Kind, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown transition %T", t)
	}
}
