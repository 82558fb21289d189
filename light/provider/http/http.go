package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"math/rand"
	gohttp "net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tendermint/lightivc/light/provider"
	"github.com/tendermint/lightivc/types"
)

// This is very brittle, see: https://github.com/tendermint/tendermint/issues/4740
var (
	regexpTooHigh    = regexp.MustCompile(`height \d+ must be less than or equal to`)
	regexpNotFound   = regexp.MustCompile(`height \d+ is not available`)
	maxRetryAttempts = uint16(5)
)

const (
	defaultTimeout = 10 * time.Second
	maxPerPage     = 100
)

// http provider fetches light blocks from the JSON-RPC endpoints of a node:
// /commit for the signed header and /validators for the validator set.
type http struct {
	chainID string
	remote  string
	client  *gohttp.Client
}

// New creates a HTTP provider. If no scheme is provided in the remote URL,
// http will be used by default.
func New(chainID, remote string) (provider.Provider, error) {
	return NewWithClient(chainID, remote, &gohttp.Client{Timeout: defaultTimeout})
}

// NewWithClient allows you to provide a custom client.
func NewWithClient(chainID, remote string, client *gohttp.Client) (provider.Provider, error) {
	// Ensure URL scheme is set (default HTTP) when not provided.
	if !strings.Contains(remote, "://") {
		remote = "http://" + remote
	}
	if _, err := url.Parse(remote); err != nil {
		return nil, fmt.Errorf("invalid remote %q: %w", remote, err)
	}
	return &http{
		chainID: chainID,
		remote:  strings.TrimRight(remote, "/"),
		client:  client,
	}, nil
}

func (p *http) String() string {
	return fmt.Sprintf("http{%s}", p.remote)
}

// LightBlock fetches a LightBlock at the given height and checks the
// chainID matches.
func (p *http) LightBlock(ctx context.Context, height int64) (*types.LightBlock, error) {
	if height < 0 {
		return nil, fmt.Errorf("expected height >= 0, got height %d", height)
	}

	sh, err := p.signedHeader(ctx, height)
	if err != nil {
		return nil, err
	}

	if height == 0 {
		height = sh.Height
	}

	vals, err := p.validatorSet(ctx, height)
	if err != nil {
		return nil, err
	}

	lb := &types.LightBlock{
		SignedHeader: sh,
		ValidatorSet: vals,
	}

	if err := lb.ValidateBasic(p.chainID); err != nil {
		return nil, provider.ErrBadLightBlock{Reason: err}
	}

	return lb, nil
}

type resultCommit struct {
	SignedHeader    types.SignedHeader `json:"signed_header"`
	CanonicalCommit bool               `json:"canonical"`
}

func (p *http) signedHeader(ctx context.Context, height int64) (*types.SignedHeader, error) {
	params := url.Values{}
	if height > 0 {
		params.Set("height", strconv.FormatInt(height, 10))
	}

	var res resultCommit
	if err := p.call(ctx, "commit", params, &res); err != nil {
		return nil, err
	}
	if res.SignedHeader.Header == nil {
		return nil, provider.ErrBadLightBlock{Reason: errors.New("signed header is nil")}
	}
	return &res.SignedHeader, nil
}

type resultValidators struct {
	BlockHeight int64              `json:"block_height,string"`
	Validators  []*types.Validator `json:"validators"`
	Count       int                `json:"count,string"`
	Total       int                `json:"total,string"`
}

func (p *http) validatorSet(ctx context.Context, height int64) (*types.ValidatorSet, error) {
	var vals []*types.Validator
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("height", strconv.FormatInt(height, 10))
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(maxPerPage))

		var res resultValidators
		if err := p.call(ctx, "validators", params, &res); err != nil {
			return nil, err
		}
		vals = append(vals, res.Validators...)

		if len(res.Validators) == 0 || len(vals) >= res.Total {
			break
		}
	}
	return types.NewValidatorSet(vals), nil
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (err rpcError) Error() string {
	const baseFormat = "RPC error %v - %s"
	if err.Data != "" {
		return fmt.Sprintf(baseFormat+": %s", err.Code, err.Message, err.Data)
	}
	return fmt.Sprintf(baseFormat, err.Code, err.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// call issues a GET request to the URI endpoint of method, retrying with
// backoff while the node does not respond.
func (p *http) call(ctx context.Context, method string, params url.Values, result interface{}) error {
	var lastErr error
	for attempt := uint16(1); attempt <= maxRetryAttempts; attempt++ {
		body, err := p.get(ctx, method, params)
		if err == nil {
			return decodeResponse(body, result)
		}
		if !errors.Is(err, provider.ErrNoResponse) {
			return err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffTimeout(attempt)):
		}
	}
	return lastErr
}

func (p *http) get(ctx context.Context, method string, params url.Values) ([]byte, error) {
	u := p.remote + "/" + method
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := gohttp.NewRequestWithContext(ctx, gohttp.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", provider.ErrNoResponse, err)
	}
	defer resp.Body.Close() // nolint: errcheck

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", provider.ErrNoResponse, err)
	}
	if resp.StatusCode >= 500 && len(body) == 0 {
		return nil, fmt.Errorf("%w: status %s", provider.ErrNoResponse, resp.Status)
	}
	return body, nil
}

func decodeResponse(body []byte, result interface{}) error {
	var res rpcResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return fmt.Errorf("error unmarshaling: %w", err)
	}
	if res.Error != nil {
		msg := res.Error.Error()
		switch {
		case regexpTooHigh.MatchString(msg):
			return provider.ErrHeightTooHigh
		case regexpNotFound.MatchString(msg):
			return provider.ErrLightBlockNotFound
		}
		return res.Error
	}
	if err := json.Unmarshal(res.Result, result); err != nil {
		return fmt.Errorf("error unmarshaling result: %w", err)
	}
	return nil
}

// exponential backoff (with jitter)
// 0.5s -> 2s -> 4.5s -> 8s -> 12.5 with 1s variation
func backoffTimeout(attempt uint16) time.Duration {
	// nolint:gosec // G404: Use of weak random number generator
	return time.Duration(500*attempt*attempt)*time.Millisecond + time.Duration(rand.Intn(1000))*time.Millisecond
}
