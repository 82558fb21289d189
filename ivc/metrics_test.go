package ivc_test

import (
	"testing"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/ivc"
	"github.com/tendermint/lightivc/ivc/mocks"
	"github.com/tendermint/lightivc/types"
)

func TestPrometheusMetrics(t *testing.T) {
	metrics := ivc.PrometheusMetrics("ivctest", "chain_id", "test-chain")

	g := header("genesis")
	prog := ivc.NewProgram(newStrategy(t, nil), mocks.NewPrecompile(t), ivc.WithMetrics(metrics))
	_, err := prog.Step(tape(t, testVKey, nil, g.Digest(), types.Genesis{}, g))
	require.NoError(t, err)

	families, err := stdprometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found bool
	for _, family := range families {
		if family.GetName() != "ivctest_ivc_steps" {
			continue
		}
		found = true
		require.Len(t, family.GetMetric(), 1)
		m := family.GetMetric()[0]
		assert.EqualValues(t, 1, m.GetCounter().GetValue())

		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		assert.Equal(t, map[string]string{
			"chain_id":   "test-chain",
			"transition": "genesis",
			"ok":         "true",
		}, labels)
	}
	assert.True(t, found)
}
