package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tendermint/lightivc/light/provider"
	"github.com/tendermint/lightivc/types"
)

// Mock is an in-memory provider. It is safe for concurrent use.
type Mock struct {
	id string

	mtx    sync.Mutex
	blocks map[int64]*types.LightBlock
	calls  map[int64]int
	errs   map[int64]error
}

var _ provider.Provider = (*Mock)(nil)

// New creates a mock provider serving the given light blocks.
func New(id string, blocks ...*types.LightBlock) *Mock {
	m := &Mock{
		id:     id,
		blocks: make(map[int64]*types.LightBlock, len(blocks)),
		calls:  make(map[int64]int),
		errs:   make(map[int64]error),
	}
	for _, lb := range blocks {
		m.blocks[lb.Height] = lb
	}
	return m
}

func (p *Mock) String() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	heights := make([]int64, 0, len(p.blocks))
	for h := range p.blocks {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })

	var headers strings.Builder
	for _, h := range heights {
		fmt.Fprintf(&headers, " %d:%X", h, p.blocks[h].Hash())
	}
	return fmt.Sprintf("Mock{%s headers:%s}", p.id, headers.String())
}

// LightBlock returns the block at height, or the highest block if height
// is 0.
func (p *Mock) LightBlock(ctx context.Context, height int64) (*types.LightBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	p.calls[height]++
	if err, ok := p.errs[height]; ok {
		return nil, err
	}

	if height == 0 {
		var latest *types.LightBlock
		for _, lb := range p.blocks {
			if latest == nil || lb.Height > latest.Height {
				latest = lb
			}
		}
		if latest == nil {
			return nil, provider.ErrLightBlockNotFound
		}
		return latest, nil
	}
	if lb, ok := p.blocks[height]; ok {
		return lb, nil
	}
	return nil, provider.ErrLightBlockNotFound
}

// FailAt makes every request for height return err.
func (p *Mock) FailAt(height int64, err error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.errs[height] = err
}

// Calls returns how often height was requested.
func (p *Mock) Calls(height int64) int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.calls[height]
}
