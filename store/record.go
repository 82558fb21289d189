package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creachadair/atomicfile"

	"github.com/tendermint/lightivc/types"
	"github.com/tendermint/lightivc/version"
	"github.com/tendermint/lightivc/zkvm"
)

// ProofFileSuffix is appended to a header name to get its proof file name.
const ProofFileSuffix = "_proof.json"

// Record is a proof of one step of a chain, with where it came from.
type Record struct {
	Chain string `json:"chain"`
	Index int64  `json:"index,string"`
	// Name of the header source the step proved, e.g. a file stem.
	Name        string       `json:"name"`
	TapeVersion uint64       `json:"tape_version,string"`
	RunID       string       `json:"run_id"`
	Transition  string       `json:"transition"`
	Prior       types.Digest `json:"prior"`
	Created     time.Time    `json:"created"`
	Proof       zkvm.Proof   `json:"proof"`
}

// ValidateBasic checks the record can be audited.
func (r Record) ValidateBasic() error {
	if r.Chain == "" {
		return errors.New("empty chain name")
	}
	if r.Index < 0 {
		return fmt.Errorf("negative index %d", r.Index)
	}
	if r.TapeVersion != version.TapeVersion {
		return fmt.Errorf("tape version %d, want %d", r.TapeVersion, version.TapeVersion)
	}
	if r.Index == 0 && !r.Prior.IsZero() {
		return errors.New("first step of a chain has a prior header")
	}
	return r.Proof.ValidateBasic()
}

// Values decodes the public values of the proof.
func (r Record) Values() (types.PublicValues, error) {
	return r.Proof.Values()
}

// ProofFileName returns the proof file name of a header name.
func ProofFileName(name string) string {
	return name + ProofFileSuffix
}

// WriteProofFile atomically writes r as indented JSON to dir and returns the
// file path.
func WriteProofFile(dir string, r Record) (string, error) {
	bz, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling proof record: %w", err)
	}
	path := filepath.Join(dir, ProofFileName(r.Name))
	if _, err := atomicfile.WriteAll(path, bytes.NewReader(bz), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// ReadProofFile reads a record written by WriteProofFile.
func ReadProofFile(path string) (Record, error) {
	var r Record
	bz, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(bz, &r); err != nil {
		return r, fmt.Errorf("decoding %s: %w", path, err)
	}
	return r, nil
}
