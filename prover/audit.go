package prover

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tendermint/lightivc/store"
	"github.com/tendermint/lightivc/types"
)

// ErrAudit is wrapped by every audit finding.
var ErrAudit = errors.New("audit failed")

// AuditResult is the audit of one stored chain. Err is nil when the records
// form a sound chain of proofs; Valid is the ok value its last step
// committed.
type AuditResult struct {
	Chain string
	Steps int
	Head  types.Digest
	Valid bool
	Err   error
}

func auditf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrAudit, fmt.Sprintf(format, args...))
}

// AuditChain checks that records, in index order, are proofs made under
// cp's verifying key that link into one chain from a single genesis.
func (cp *ChainProver) AuditChain(chain string, records []store.Record) AuditResult {
	res := AuditResult{Chain: chain, Steps: len(records)}
	if len(records) == 0 {
		res.Err = auditf("%s has no proofs", chain)
		return res
	}

	var first, prev types.PublicValues
	for i, r := range records {
		if r.Index != int64(i) {
			res.Err = auditf("step %d stored at index %d", i, r.Index)
			return res
		}
		if err := r.ValidateBasic(); err != nil {
			res.Err = fmt.Errorf("%w: step %d: %v", ErrAudit, i, err)
			return res
		}
		if err := r.Proof.Verify(cp.vkey); err != nil {
			res.Err = fmt.Errorf("%w: step %d: %v", ErrAudit, i, err)
			return res
		}
		values, err := r.Values()
		if err != nil {
			res.Err = fmt.Errorf("%w: step %d: %v", ErrAudit, i, err)
			return res
		}
		if values.VKeyHash != cp.vkey.Hash() {
			res.Err = auditf("step %d committed vkey hash %v", i, values.VKeyHash)
			return res
		}

		if i == 0 {
			if r.Transition != transitionGenesis {
				res.Err = auditf("first step is a %s", r.Transition)
				return res
			}
			if values.OK && values.HeadHash != values.GenesisHash {
				res.Err = auditf("genesis step ends at %v, not genesis %v", values.HeadHash, values.GenesisHash)
				return res
			}
			first = values
		} else {
			if r.Transition != transitionContinuation {
				res.Err = auditf("step %d is a %s", i, r.Transition)
				return res
			}
			if values.GenesisHash != first.GenesisHash {
				res.Err = auditf("step %d rooted at %v, chain at %v", i, values.GenesisHash, first.GenesisHash)
				return res
			}
			if r.Prior != prev.HeadHash {
				res.Err = auditf("step %d extends %v, previous step ended at %v", i, r.Prior, prev.HeadHash)
				return res
			}
			if values.OK && !prev.OK {
				res.Err = auditf("step %d recovered from a broken chain", i)
				return res
			}
		}
		prev = values
	}

	res.Head = prev.HeadHash
	res.Valid = prev.OK
	return res
}

// AuditChains audits every chain in stores concurrently. Audit findings are
// reported in the results; the error is only set when a store could not be
// read or ctx is done.
func (cp *ChainProver) AuditChains(ctx context.Context, stores ...*store.ProofStore) ([]AuditResult, error) {
	results := make([]AuditResult, len(stores))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range stores {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := s.Proofs()
			if err != nil {
				return fmt.Errorf("loading %s: %w", s.Chain(), err)
			}
			results[i] = cp.AuditChain(s.Chain(), records)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Err != nil {
			cp.metrics.AuditFailures.Add(1)
			cp.logger.Error("audit failed", "chain", res.Chain, "err", res.Err)
			continue
		}
		cp.logger.Info("audited chain", "chain", res.Chain, "steps", res.Steps, "head", res.Head, "valid", res.Valid)
	}
	return results, nil
}
