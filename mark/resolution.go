// Package mark implements the provenance-mark encoding and hashing
// primitive. It is an opaque collaborator for the packages above it: the
// coupling layer in pmchain and link treats it as a black box with stated
// contracts (Mark.Hash, Mark.IsGenesis, Mark.Precedes, IsSequenceValid), and
// any reimplementation must mirror this hashing scheme exactly, since
// pmchain's chain-integrity gate rebuilds a mark with a substituted NextKey
// and compares hashes.
package mark

import "fmt"

// Resolution selects the byte length of a chain's link keys. It is chosen at
// genesis and is immutable for the lifetime of the chain.
type Resolution int

const (
	Low Resolution = iota
	Medium
	Quartile
	High
)

// LinkLength returns the fixed key length in bytes for the resolution.
func (r Resolution) LinkLength() int {
	switch r {
	case Low:
		return 4
	case Medium:
		return 8
	case Quartile:
		return 16
	case High:
		return 32
	default:
		panic(fmt.Sprintf("mark: unknown resolution %d", r))
	}
}

// code is the single-byte tag used to bind the resolution into a mark's hash
// input. It is stable across versions. (The genesis message binds the
// resolution through String instead.)
func (r Resolution) code() byte {
	switch r {
	case Low:
		return 0
	case Medium:
		return 1
	case Quartile:
		return 2
	case High:
		return 3
	default:
		panic(fmt.Sprintf("mark: unknown resolution %d", r))
	}
}

func (r Resolution) String() string {
	switch r {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case Quartile:
		return "quartile"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}
