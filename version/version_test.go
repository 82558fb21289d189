package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsensusJSON(t *testing.T) {
	testCases := []struct {
		msg  string
		c    Consensus
		json string
	}{
		{"empty", Consensus{}, `{"block":"0","app":"0"}`},
		{"block protocol", Consensus{Block: BlockProtocol, App: 1}, `{"block":"11","app":"1"}`},
	}
	for _, tc := range testCases {
		bz, err := json.Marshal(tc.c)
		require.NoError(t, err, tc.msg)
		require.JSONEq(t, tc.json, string(bz), tc.msg)

		var c Consensus
		require.NoError(t, json.Unmarshal(bz, &c), tc.msg)
		require.Equal(t, tc.c, c, tc.msg)
	}
}
