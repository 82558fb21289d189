package types

import (
	"fmt"
	"time"
)

// ChainHeader is a header that can become the head of a proof chain.
type ChainHeader interface {
	// Digest returns the header hash committed as the head hash.
	Digest() Digest
	Timestamp() time.Time
}

// Transition selects the kind of step being proved: the first step of a
// chain, or a step that extends a previously proved head.
type Transition interface {
	isTransition()
	String() string
}

// Genesis is the transition of the first step of a chain. There is no prior
// header and no prior proof.
type Genesis struct{}

// Continuation extends a chain whose head is Prior.
type Continuation struct {
	Prior ChainHeader
}

func (Genesis) isTransition()      {}
func (Continuation) isTransition() {}

func (Genesis) String() string { return "Genesis" }

func (c Continuation) String() string {
	if c.Prior == nil {
		return "Continuation{<nil>}"
	}
	return fmt.Sprintf("Continuation{%v}", c.Prior.Digest())
}

// NewTransition returns Genesis when prior is nil and a Continuation
// otherwise.
func NewTransition(prior ChainHeader) Transition {
	if prior == nil {
		return Genesis{}
	}
	return Continuation{Prior: prior}
}
