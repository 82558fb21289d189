package prover

import (
	"context"
	"fmt"

	"github.com/creachadair/taskgroup"

	"github.com/tendermint/lightivc/light/provider"
	"github.com/tendermint/lightivc/types"
)

// FetchRange fetches the light blocks from height from to height to,
// inclusive, with at most concurrency requests in flight. The blocks are
// returned in height order. The first failure cancels the other requests.
func FetchRange(
	ctx context.Context,
	p provider.Provider,
	from, to int64,
	concurrency int,
) ([]*types.LightBlock, error) {
	if from <= 0 || to < from {
		return nil, fmt.Errorf("invalid height range [%d, %d]", from, to)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		blocks = make([]*types.LightBlock, to-from+1)
		sem    = make(chan struct{}, concurrency)
		g      = taskgroup.New(taskgroup.Trigger(cancel))
	)

loop:
	for height := from; height <= to; height++ {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break loop
		}

		height := height
		g.Go(func() error {
			defer func() { <-sem }()
			lb, err := p.LightBlock(ctx, height)
			if err != nil {
				return fmt.Errorf("fetching height %d from %v: %w", height, p, err)
			}
			if lb == nil || lb.SignedHeader == nil || lb.Header == nil {
				return provider.ErrBadLightBlock{Reason: fmt.Errorf("empty light block at height %d", height)}
			}
			if lb.Height != height {
				return provider.ErrBadLightBlock{
					Reason: fmt.Errorf("asked for height %d, got %d", height, lb.Height),
				}
			}
			blocks[height-from] = lb
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}
