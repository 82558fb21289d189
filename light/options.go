package light

import (
	"errors"
	"fmt"
	"time"

	tmmath "github.com/tendermint/lightivc/libs/math"
)

const (
	// DefaultTrustingPeriod is how long a trusted header may be used to
	// verify its successors.
	DefaultTrustingPeriod = 14 * 24 * time.Hour
	// DefaultClockDrift is how far into the future a header time may be.
	DefaultClockDrift = 5 * time.Second
)

// Options are the light client parameters of a single verification.
type Options struct {
	TrustThreshold tmmath.Fraction
	TrustingPeriod time.Duration
	ClockDrift     time.Duration
}

// DefaultOptions returns a one third trust threshold, a 14 day trusting
// period and the default clock drift.
func DefaultOptions() Options {
	return Options{
		TrustThreshold: DefaultTrustLevel,
		TrustingPeriod: DefaultTrustingPeriod,
		ClockDrift:     DefaultClockDrift,
	}
}

// ValidateBasic checks the options are usable.
func (o Options) ValidateBasic() error {
	if err := ValidateTrustLevel(o.TrustThreshold); err != nil {
		return err
	}
	if o.TrustingPeriod <= 0 {
		return errors.New("trusting period must be positive")
	}
	if o.ClockDrift < 0 {
		return fmt.Errorf("clock drift can't be negative, got %v", o.ClockDrift)
	}
	return nil
}
