package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	gohttp "net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/lightivc/internal/test/factory"
	"github.com/tendermint/lightivc/light/provider"
	lighthttp "github.com/tendermint/lightivc/light/provider/http"
	"github.com/tendermint/lightivc/types"
)

func TestNewProvider(t *testing.T) {
	c, err := lighthttp.New("chain-test", "192.168.0.1:26657")
	require.NoError(t, err)
	require.Equal(t, "http{http://192.168.0.1:26657}", c.String())

	c, err = lighthttp.New("chain-test", "http://153.200.0.1:26657/")
	require.NoError(t, err)
	require.Equal(t, "http{http://153.200.0.1:26657}", c.String())

	c, err = lighthttp.New("chain-test", "153.200.0.1")
	require.NoError(t, err)
	require.Equal(t, "http{http://153.200.0.1}", c.String())
}

// node serves /commit and /validators for a generated chain.
func node(t *testing.T, chain []*types.LightBlock) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32

	writeResult := func(w gohttp.ResponseWriter, result interface{}) {
		bz, err := json.Marshal(result)
		require.NoError(t, err)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":-1,"result":%s}`, bz)
	}
	writeError := func(w gohttp.ResponseWriter, data string) {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":-1,"error":{"code":-32603,"message":"Internal error","data":%q}}`, data)
	}
	lookup := func(r *gohttp.Request) (*types.LightBlock, string) {
		height := int64(len(chain))
		if h := r.URL.Query().Get("height"); h != "" {
			var err error
			height, err = strconv.ParseInt(h, 10, 64)
			require.NoError(t, err)
		}
		if height > int64(len(chain)) {
			return nil, fmt.Sprintf("height %d must be less than or equal to the current blockchain height %d",
				height, len(chain))
		}
		if height < 2 {
			return nil, fmt.Sprintf("height %d is not available, lowest height is 2", height)
		}
		return chain[height-1], ""
	}

	mux := gohttp.NewServeMux()
	mux.HandleFunc("/commit", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		atomic.AddInt32(&requests, 1)
		lb, msg := lookup(r)
		if lb == nil {
			writeError(w, msg)
			return
		}
		writeResult(w, map[string]interface{}{
			"signed_header": lb.SignedHeader,
			"canonical":     true,
		})
	})
	mux.HandleFunc("/validators", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		atomic.AddInt32(&requests, 1)
		lb, msg := lookup(r)
		if lb == nil {
			writeError(w, msg)
			return
		}
		n := strconv.Itoa(lb.ValidatorSet.Size())
		writeResult(w, map[string]interface{}{
			"block_height": strconv.FormatInt(lb.Height, 10),
			"validators":   lb.ValidatorSet.Validators,
			"count":        n,
			"total":        n,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vals, keys := factory.DeterministicValidatorSet("rpc", 4, 10)
	start := time.Date(2022, 3, 4, 5, 6, 7, 890, time.UTC)
	chain := factory.LightChain(factory.DefaultTestChainID, 6, start, time.Second, vals, keys)
	srv, _ := node(t, chain)

	p, err := lighthttp.New(factory.DefaultTestChainID, srv.URL)
	require.NoError(t, err)

	// let's get the highest block
	lb, err := p.LightBlock(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 6, lb.Height)
	assert.Equal(t, chain[5].Digest(), lb.Digest())

	// historical queries
	lb, err = p.LightBlock(ctx, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, lb.Height)
	assert.Equal(t, chain[2].Digest(), lb.Digest())
	require.NoError(t, lb.ValidatorSet.VerifyCommitLight(factory.DefaultTestChainID, lb.Commit.BlockID, lb.Height, lb.Commit))

	// fetching missing heights (both future and pruned) should return appropriate errors
	_, err = p.LightBlock(ctx, 9001)
	assert.True(t, errors.Is(err, provider.ErrHeightTooHigh), "got %v", err)

	_, err = p.LightBlock(ctx, 1)
	assert.True(t, errors.Is(err, provider.ErrLightBlockNotFound), "got %v", err)

	_, err = p.LightBlock(ctx, -1)
	assert.Error(t, err)
}

func TestProviderRejectsOtherChain(t *testing.T) {
	vals, keys := factory.DeterministicValidatorSet("rpc-other", 4, 10)
	chain := factory.LightChain("other-chain", 3, time.Unix(1600000000, 0).UTC(), time.Second, vals, keys)
	srv, _ := node(t, chain)

	p, err := lighthttp.New(factory.DefaultTestChainID, srv.URL)
	require.NoError(t, err)

	_, err = p.LightBlock(context.Background(), 2)
	var bad provider.ErrBadLightBlock
	assert.True(t, errors.As(err, &bad), "got %v", err)
}

func TestProviderHonorsContext(t *testing.T) {
	p, err := lighthttp.New(factory.DefaultTestChainID, "127.0.0.1:1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.LightBlock(ctx, 1)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
