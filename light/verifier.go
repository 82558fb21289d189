package light

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	tmmath "github.com/tendermint/lightivc/libs/math"
	"github.com/tendermint/lightivc/types"
)

var (
	// DefaultTrustLevel - new header can be trusted if at least one correct
	// validator signed it.
	DefaultTrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 3}
)

// VerdictKind classifies the outcome of a header update.
type VerdictKind int

const (
	// VerdictSuccess means the untrusted header can be trusted.
	VerdictSuccess VerdictKind = iota
	// VerdictNotEnoughTrust means the header may be valid but too little of
	// the trusted validator set signed it. Bisection could still reach it.
	VerdictNotEnoughTrust
	// VerdictInvalid means the header is invalid.
	VerdictInvalid
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictSuccess:
		return "Success"
	case VerdictNotEnoughTrust:
		return "NotEnoughTrust"
	case VerdictInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("VerdictKind(%d)", int(k))
	}
}

// Verdict is the result of ProdVerifier.VerifyUpdateHeader. Reason is nil
// only on success.
type Verdict struct {
	Kind   VerdictKind
	Reason error
}

// OK reports whether the verdict is a success.
func (v Verdict) OK() bool { return v.Kind == VerdictSuccess }

// Err returns Reason, or nil on success.
func (v Verdict) Err() error {
	if v.OK() {
		return nil
	}
	return v.Reason
}

func (v Verdict) String() string {
	if v.Reason == nil {
		return v.Kind.String()
	}
	return fmt.Sprintf("%v: %v", v.Kind, v.Reason)
}

// ProdVerifier verifies one untrusted light block against one trusted light
// block. It has no state: everything it needs is passed in.
type ProdVerifier struct{}

// VerifyUpdateHeader checks that untrusted can be trusted given trusted,
// the options and the time of verification. Adjacent blocks are checked
// against the trusted next validators; skipping blocks need
// opts.TrustThreshold of the trusted set to have signed.
//
// Failures after the options and the trusted block were accepted are
// wrapped in ErrVerificationFailed.
func (ProdVerifier) VerifyUpdateHeader(
	untrusted, trusted *types.LightBlock,
	opts Options,
	now time.Time,
) Verdict {
	u := update{trusted: trusted, untrusted: untrusted, opts: opts, now: now}
	if err := u.checkSetup(); err != nil {
		return Verdict{Kind: VerdictInvalid, Reason: err}
	}
	kind, err := u.check()
	if err != nil {
		err = ErrVerificationFailed{From: trusted.Height, To: untrusted.Height, Reason: err}
	}
	return Verdict{Kind: kind, Reason: err}
}

// Verify checks untrusted against trusted with the adjacent or the skipping
// rules, whichever the heights call for. The error is one of
// ErrOldHeaderExpired, ErrInvalidHeader or ErrNewValSetCantBeTrusted, or
// describes bad input.
func Verify(trusted, untrusted *types.LightBlock, opts Options, now time.Time) error {
	u := update{trusted: trusted, untrusted: untrusted, opts: opts, now: now}
	if err := u.checkSetup(); err != nil {
		return err
	}
	_, err := u.check()
	return err
}

// VerifyAdjacent is Verify for an untrusted block directly following
// trusted.
func VerifyAdjacent(trusted, untrusted *types.LightBlock, opts Options, now time.Time) error {
	if err := checkPresent(trusted, untrusted); err != nil {
		return err
	}
	if untrusted.Height != trusted.Height+1 {
		return errors.New("headers must be adjacent in height")
	}
	return Verify(trusted, untrusted, opts, now)
}

// VerifyNonAdjacent is Verify for an untrusted block at least two heights
// above trusted.
func VerifyNonAdjacent(trusted, untrusted *types.LightBlock, opts Options, now time.Time) error {
	if err := checkPresent(trusted, untrusted); err != nil {
		return err
	}
	if untrusted.Height == trusted.Height+1 {
		return errors.New("headers must be non adjacent in height")
	}
	return Verify(trusted, untrusted, opts, now)
}

func checkPresent(trusted, untrusted *types.LightBlock) error {
	switch {
	case trusted == nil || trusted.SignedHeader == nil:
		return errors.New("missing trusted light block")
	case untrusted == nil || untrusted.SignedHeader == nil:
		return errors.New("missing untrusted light block")
	}
	return nil
}

// update is one step from a trusted to an untrusted light block.
type update struct {
	trusted, untrusted *types.LightBlock
	opts               Options
	now                time.Time
}

func (u update) adjacent() bool {
	return u.untrusted.Height == u.trusted.Height+1
}

func (u update) chainID() string { return u.trusted.ChainID }

// checkSetup validates what the caller vouches for: the options and the
// trusted block.
func (u update) checkSetup() error {
	if err := u.opts.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := checkPresent(u.trusted, u.untrusted); err != nil {
		return err
	}
	if err := u.trusted.ValidateBasic(u.chainID()); err != nil {
		return fmt.Errorf("trusted light block: %w", err)
	}
	return nil
}

// check applies the trust rules in order. The untrusted commit is verified
// last: a skipping block can carry an arbitrarily large validator set.
func (u update) check() (VerdictKind, error) {
	if HeaderExpired(u.trusted, u.opts.TrustingPeriod, u.now) {
		return VerdictInvalid, ErrOldHeaderExpired{u.trusted.Time.Add(u.opts.TrustingPeriod), u.now}
	}

	if err := u.checkUntrusted(); err != nil {
		return VerdictInvalid, ErrInvalidHeader{err}
	}

	if u.adjacent() {
		if !bytes.Equal(u.untrusted.ValidatorsHash, u.trusted.NextValidatorsHash) {
			return VerdictInvalid, ErrInvalidHeader{
				fmt.Errorf("expected old header next validators (%X) to match those from new header (%X)",
					u.trusted.NextValidatorsHash,
					u.untrusted.ValidatorsHash,
				)}
		}
	} else {
		err := u.trusted.ValidatorSet.VerifyCommitLightTrusting(u.chainID(), u.untrusted.Commit, u.opts.TrustThreshold)
		var notEnough types.ErrNotEnoughVotingPowerSigned
		switch {
		case errors.As(err, &notEnough):
			return VerdictNotEnoughTrust, ErrNewValSetCantBeTrusted{notEnough}
		case err != nil:
			return VerdictInvalid, err
		}
	}

	if err := u.untrusted.ValidatorSet.VerifyCommitLight(u.chainID(), u.untrusted.Commit.BlockID,
		u.untrusted.Height, u.untrusted.Commit); err != nil {
		return VerdictInvalid, ErrInvalidHeader{err}
	}

	return VerdictSuccess, nil
}

// checkUntrusted checks the untrusted block on its own and its position
// after the trusted one.
func (u update) checkUntrusted() error {
	if err := u.untrusted.ValidateBasic(u.chainID()); err != nil {
		return err
	}

	if u.untrusted.Height <= u.trusted.Height {
		return fmt.Errorf("expected new header height %d to be greater than one of old header %d",
			u.untrusted.Height,
			u.trusted.Height)
	}

	if !u.untrusted.Time.After(u.trusted.Time) {
		return fmt.Errorf("expected new header time %v to be after old header time %v",
			u.untrusted.Time,
			u.trusted.Time)
	}

	if !u.untrusted.Time.Before(u.now.Add(u.opts.ClockDrift)) {
		return fmt.Errorf("new header has a time from the future %v (now: %v; max clock drift: %v)",
			u.untrusted.Time,
			u.now,
			u.opts.ClockDrift)
	}

	return nil
}

// ValidateTrustLevel checks that trustLevel is within the allowed range [1/3,
// 1]. If not, it returns an error. 1/3 is the minimum amount of trust needed
// which does not break the security model.
func ValidateTrustLevel(lvl tmmath.Fraction) error {
	if lvl.Numerator*3 < lvl.Denominator || // < 1/3
		lvl.Numerator > lvl.Denominator || // > 1
		lvl.Denominator == 0 {
		return fmt.Errorf("trustLevel must be within [1/3, 1], given %v", lvl)
	}
	return nil
}

// HeaderExpired reports whether h is at least trustingPeriod old at now.
func HeaderExpired(h types.ChainHeader, trustingPeriod time.Duration, now time.Time) bool {
	return !h.Timestamp().Add(trustingPeriod).After(now)
}
