package zkvm

import (
	"errors"
	"fmt"

	"github.com/tendermint/lightivc/libs/bincode"
)

// ErrTapeExhausted is returned when a step reads past the last input item.
var ErrTapeExhausted = errors.New("input tape exhausted")

// Stdin is the host side of a step's input tape.
type Stdin struct {
	items  [][]byte
	proofs []Proof
}

// NewStdin returns an empty tape.
func NewStdin() *Stdin {
	return &Stdin{}
}

// Write appends the bincode encoding of v as one item.
func (s *Stdin) Write(v bincode.Encoder) {
	s.items = append(s.items, bincode.Marshal(v))
}

// WriteVec appends bz as one item, without a length prefix.
func (s *Stdin) WriteVec(bz []byte) {
	item := make([]byte, len(bz))
	copy(item, bz)
	s.items = append(s.items, item)
}

// WriteProof attaches a proof the step may verify through the precompile.
// Proofs are not part of the ordered items.
func (s *Stdin) WriteProof(p Proof) {
	s.proofs = append(s.proofs, p)
}

// Len returns the number of items written.
func (s *Stdin) Len() int { return len(s.items) }

// Proofs returns the attached proofs.
func (s *Stdin) Proofs() []Proof {
	out := make([]Proof, len(s.proofs))
	copy(out, s.proofs)
	return out
}

// Env is the step side of the tape. It is used by exactly one step and is
// not safe for concurrent use.
type Env struct {
	items [][]byte
	next  int
	out   *bincode.Writer
}

// NewEnv returns an environment reading the items of stdin. Later writes
// to stdin are not visible to the environment.
func NewEnv(stdin *Stdin) *Env {
	items := make([][]byte, len(stdin.items))
	copy(items, stdin.items)
	return &Env{
		items: items,
		out:   bincode.NewWriter(),
	}
}

// Read decodes the next item into d. The item must hold exactly one
// encoded value.
func (e *Env) Read(d bincode.Decoder) error {
	item, err := e.nextItem()
	if err != nil {
		return err
	}
	if err := bincode.Unmarshal(item, d); err != nil {
		return fmt.Errorf("input item %d: %w", e.next-1, err)
	}
	return nil
}

// ReadVec returns the next item as raw bytes.
func (e *Env) ReadVec() ([]byte, error) {
	return e.nextItem()
}

func (e *Env) nextItem() ([]byte, error) {
	if e.next >= len(e.items) {
		return nil, fmt.Errorf("%w: read %d of %d items", ErrTapeExhausted, e.next+1, len(e.items))
	}
	item := e.items[e.next]
	e.next++
	return item, nil
}

// Consumed returns how many items have been read.
func (e *Env) Consumed() int { return e.next }

// Commit appends the encoding of v to the public values.
func (e *Env) Commit(v bincode.Encoder) {
	e.out.Write(v)
}

// CommitBool appends a single byte boolean to the public values.
func (e *Env) CommitBool(v bool) {
	e.out.WriteBool(v)
}

// PublicValues returns a copy of everything committed so far.
func (e *Env) PublicValues() []byte {
	return e.out.Bytes()
}
