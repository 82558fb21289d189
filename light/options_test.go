package light_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tendermint/lightivc/light"
)

func TestDefaultOptions(t *testing.T) {
	opts := light.DefaultOptions()
	assert.NoError(t, opts.ValidateBasic())
	assert.Equal(t, light.DefaultTrustLevel, opts.TrustThreshold)
	assert.Equal(t, 14*24*time.Hour, opts.TrustingPeriod)

	opts.TrustingPeriod = 0
	assert.Error(t, opts.ValidateBasic())

	opts = light.DefaultOptions()
	opts.ClockDrift = -time.Second
	assert.Error(t, opts.ValidateBasic())
}
