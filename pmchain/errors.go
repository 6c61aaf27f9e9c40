package pmchain

import "errors"

// Errors surfaced by Chain construction and append. Every failure is
// terminal for the attempted operation: Chain state is mutated only on the
// commit step of a successful AppendMark, so a failed call is an observable
// no-op and the caller must regenerate any commitments or nonces it
// supplied (they must never be reused across a failed and a retried call).
var (
	// ErrBadGenesisSignature is returned by NewChain when the supplied
	// threshold signature does not verify over the genesis message M0.
	ErrBadGenesisSignature = errors.New("pmchain: bad genesis signature")

	// ErrBadSignature is returned by AppendMark when the supplied
	// threshold signature does not verify over the per-mark message Mn.
	ErrBadSignature = errors.New("pmchain: bad signature")

	// ErrDateMonotonicity is returned when an append's date precedes the
	// previous mark's date.
	ErrDateMonotonicity = errors.New("pmchain: date precedes previous mark")

	// ErrSequenceMismatch is returned when the supplied precommit
	// receipt's sequence number does not match the chain's next
	// sequence.
	ErrSequenceMismatch = errors.New("pmchain: receipt sequence mismatch")

	// ErrLinkageBroken is returned when the derived key does not match
	// what the previous mark committed to as its next key: the
	// chain-integrity gate recomputes the previous mark's hash with the
	// derived key substituted and requires it to equal the stored hash.
	ErrLinkageBroken = errors.New("pmchain: linkage broken")
)
