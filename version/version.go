package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = LightIVCSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// LightIVCSemVer is the current version of lightivc.
	// It's the Semantic Version of the software.
	LightIVCSemVer = "0.1.0"

	// TapeVersion versions the step input and output layout. Proofs made
	// with different tape versions cannot be folded into one chain.
	TapeVersion = 1
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

var (
	// BlockProtocol versions all block data structures and processing.
	// Headers with any other block protocol fail basic validation.
	BlockProtocol Protocol = 11
)

// Consensus captures the consensus rules for processing a block in the blockchain,
// including all blockchain data structures and the rules of the application's
// state transition machine.
type Consensus struct {
	Block Protocol `json:"block,string"`
	App   Protocol `json:"app,string"`
}
