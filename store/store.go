package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/orderedcode"
	dbm "github.com/tendermint/tm-db"
)

// ErrProofNotFound is returned when no proof is stored at an index.
var ErrProofNotFound = errors.New("proof not found")

const (
	prefixProof = int64(0)
	prefixSize  = int64(1)
)

// ProofStore keeps the proofs of one chain, indexed by step. Many chains may
// share one DB.
//
// All methods are safe for concurrent use by multiple goroutines.
type ProofStore struct {
	db    dbm.DB
	chain string

	mtx  sync.RWMutex
	size int64
}

// New returns a store for chain backed by db.
func New(db dbm.DB, chain string) (*ProofStore, error) {
	s := &ProofStore{db: db, chain: chain}
	bz, err := db.Get(s.sizeKey())
	if err != nil {
		return nil, err
	}
	if len(bz) > 0 {
		if _, err := orderedcode.Parse(string(bz), &s.size); err != nil {
			return nil, fmt.Errorf("decoding size of %q: %w", chain, err)
		}
	}
	return s, nil
}

// Chain returns the chain name.
func (s *ProofStore) Chain() string { return s.chain }

// SaveProof persists r at r.Index, replacing any proof already there.
func (s *ProofStore) SaveProof(r Record) error {
	if r.Chain != s.chain {
		return fmt.Errorf("record of chain %q saved to store of %q", r.Chain, s.chain)
	}
	if err := r.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	bz, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := s.proofKey(r.Index)
	existing, err := s.db.Has(key)
	if err != nil {
		return err
	}
	size := s.size
	if !existing {
		size++
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(key, bz); err != nil {
		return err
	}
	if err := b.Set(s.sizeKey(), encodeSize(size)); err != nil {
		return err
	}
	if err := b.WriteSync(); err != nil {
		return err
	}
	s.size = size
	return nil
}

// Proof loads the proof at index.
func (s *ProofStore) Proof(index int64) (Record, error) {
	var r Record
	bz, err := s.db.Get(s.proofKey(index))
	if err != nil {
		return r, err
	}
	if len(bz) == 0 {
		return r, fmt.Errorf("%w: %s/%d", ErrProofNotFound, s.chain, index)
	}
	err = json.Unmarshal(bz, &r)
	return r, err
}

// Latest returns the proof with the highest index.
func (s *ProofStore) Latest() (Record, error) {
	itr, err := s.db.ReverseIterator(s.proofKey(0), s.proofKey(1<<63-1))
	if err != nil {
		return Record{}, err
	}
	defer itr.Close()

	if !itr.Valid() {
		if err := itr.Error(); err != nil {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %s is empty", ErrProofNotFound, s.chain)
	}
	var r Record
	err = json.Unmarshal(itr.Value(), &r)
	return r, err
}

// Proofs returns every stored proof in index order.
func (s *ProofStore) Proofs() ([]Record, error) {
	itr, err := s.db.Iterator(s.proofKey(0), s.proofKey(1<<63-1))
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	var records []Record
	for ; itr.Valid(); itr.Next() {
		var r Record
		if err := json.Unmarshal(itr.Value(), &r); err != nil {
			return nil, fmt.Errorf("decoding proof %X: %w", itr.Key(), err)
		}
		records = append(records, r)
	}
	return records, itr.Error()
}

// Prune deletes the proofs with an index below retain.
func (s *ProofStore) Prune(retain int64) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	itr, err := s.db.Iterator(s.proofKey(0), s.proofKey(retain))
	if err != nil {
		return 0, err
	}
	var keys [][]byte
	for ; itr.Valid(); itr.Next() {
		keys = append(keys, append([]byte(nil), itr.Key()...))
	}
	if err := itr.Error(); err != nil {
		itr.Close()
		return 0, err
	}
	if err := itr.Close(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	b := s.db.NewBatch()
	defer b.Close()
	for _, key := range keys {
		if err := b.Delete(key); err != nil {
			return 0, err
		}
	}
	pruned := int64(len(keys))
	if err := b.Set(s.sizeKey(), encodeSize(s.size-pruned)); err != nil {
		return 0, err
	}
	if err := b.WriteSync(); err != nil {
		return 0, err
	}
	s.size -= pruned
	return pruned, nil
}

// Size returns the number of stored proofs.
func (s *ProofStore) Size() int64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.size
}

// Chains lists the names of the chains with proofs in db.
func Chains(db dbm.DB) ([]string, error) {
	start, err := orderedcode.Append(nil, prefixProof)
	if err != nil {
		return nil, err
	}
	end, err := orderedcode.Append(nil, prefixSize)
	if err != nil {
		return nil, err
	}
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	var chains []string
	for ; itr.Valid(); itr.Next() {
		var (
			prefix int64
			chain  string
			index  int64
		)
		if _, err := orderedcode.Parse(string(itr.Key()), &prefix, &chain, &index); err != nil {
			return nil, fmt.Errorf("unexpected key %X: %w", itr.Key(), err)
		}
		if len(chains) == 0 || chains[len(chains)-1] != chain {
			chains = append(chains, chain)
		}
	}
	return chains, itr.Error()
}

func (s *ProofStore) proofKey(index int64) []byte {
	key, err := orderedcode.Append(nil, prefixProof, s.chain, index)
	if err != nil {
		panic(err)
	}
	return key
}

func (s *ProofStore) sizeKey() []byte {
	key, err := orderedcode.Append(nil, prefixSize, s.chain)
	if err != nil {
		panic(err)
	}
	return key
}

func encodeSize(size int64) []byte {
	bz, err := orderedcode.Append(nil, size)
	if err != nil {
		panic(err)
	}
	return bz
}
