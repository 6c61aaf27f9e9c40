package mark

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ErrKeyLength is returned by New when key, next_key, or chain_id does not
// match the resolution's fixed link length.
var ErrKeyLength = errors.New("mark: key does not match resolution link length")

// encMode is the single canonical CBOR encoder used everywhere a mark's hash
// input is serialized. Using one shared, deterministic encoding mode is what
// lets the chain-integrity gate rebuild a mark and compare hashes byte for
// byte.
var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeUnix
	opts.TimeTag = cbor.EncTagRequired
	m, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return m
}()

// Mark is a single link in a provenance-mark chain. Construction and hashing
// are treated elsewhere in this module as an opaque contract: Hash is
// deterministic over all fields (including NextKey and Info), IsGenesis
// holds iff Seq == 0 and Key == ChainID, and Precedes checks that a mark's
// NextKey is exactly the following mark's Key.
type Mark struct {
	res     Resolution
	key     []byte
	nextKey []byte
	chainID []byte
	seq     uint32
	date    time.Time
	info    cbor.RawMessage // nil when no info was supplied
}

// EncodeInfo applies the package's single canonical CBOR encoding to info.
// Callers that need to bind info into a signed message before a Mark
// exists (the per-mark message Mn) must use this, so that Mn and the
// eventual Mark.Hash commit to the same encoding of info, never two
// different ones.
func EncodeInfo(info any) ([]byte, error) {
	if info == nil {
		return nil, nil
	}
	encoded, err := encMode.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("mark: encoding info: %w", err)
	}
	return encoded, nil
}

// New constructs a Mark, validating that key, nextKey, and chainID all match
// the resolution's link length. info may be nil; if non-nil it is
// CBOR-marshaled exactly once and that single encoding is what participates
// in Hash; it never appears under two different encodings.
func New(
	res Resolution,
	key, nextKey, chainID []byte,
	seq uint32,
	date time.Time,
	info any,
) (Mark, error) {
	l := res.LinkLength()
	if len(key) != l || len(nextKey) != l || len(chainID) != l {
		return Mark{}, fmt.Errorf(
			"%w: want %d bytes, got key=%d next_key=%d chain_id=%d",
			ErrKeyLength, l, len(key), len(nextKey), len(chainID),
		)
	}

	var infoCBOR cbor.RawMessage
	if info != nil {
		encoded, err := encMode.Marshal(info)
		if err != nil {
			return Mark{}, fmt.Errorf("mark: encoding info: %w", err)
		}
		infoCBOR = encoded
	}

	return Mark{
		res:     res,
		key:     append([]byte(nil), key...),
		nextKey: append([]byte(nil), nextKey...),
		chainID: append([]byte(nil), chainID...),
		seq:     seq,
		date:    date.UTC(),
		info:    infoCBOR,
	}, nil
}

// hashPayload is the canonical, fixed-order encoding of everything a mark
// commits to. The toarray tag fixes field order and avoids map-key
// ordering ambiguity entirely.
type hashPayload struct {
	_       struct{} `cbor:",toarray"`
	Res     byte
	Key     []byte
	NextKey []byte
	ChainID []byte
	Seq     uint32
	Date    time.Time
	Info    cbor.RawMessage
}

// Hash returns the deterministic digest binding every field of the mark,
// including NextKey and Info. Two marks built from identical arguments
// always produce identical hashes.
func (m Mark) Hash() []byte {
	payload := hashPayload{
		Res:     m.res.code(),
		Key:     m.key,
		NextKey: m.nextKey,
		ChainID: m.chainID,
		Seq:     m.seq,
		Date:    m.date,
		Info:    m.info,
	}
	encoded, err := encMode.Marshal(payload)
	if err != nil {
		// hashPayload's fields are all CBOR-safe by construction (New
		// validated info once already); a failure here means encMode
		// itself is broken, which is a programmer error.
		panic(fmt.Sprintf("mark: hashing payload: %v", err))
	}
	digest := sha256.Sum256(encoded)
	return digest[:]
}

// HashWithNextKey recomputes the mark's hash as if nextKey had been its
// NextKey field, leaving every other field untouched. This is the chain
// layer's chain-integrity gate: a candidate next-sequence key is proven
// correct by checking that substituting it here reproduces the mark's
// actual, already-stored hash.
func (m Mark) HashWithNextKey(nextKey []byte) []byte {
	substituted := m
	substituted.nextKey = nextKey
	return substituted.Hash()
}

func (m Mark) Res() Resolution  { return m.res }
func (m Mark) Key() []byte      { return append([]byte(nil), m.key...) }
func (m Mark) NextKey() []byte  { return append([]byte(nil), m.nextKey...) }
func (m Mark) ChainID() []byte  { return append([]byte(nil), m.chainID...) }
func (m Mark) Seq() uint32      { return m.seq }
func (m Mark) Date() time.Time  { return m.date }
func (m Mark) InfoCBOR() []byte { return append([]byte(nil), m.info...) }

// IsGenesis reports whether this is the chain's first mark: seq 0 and a key
// equal to the chain id.
func (m Mark) IsGenesis() bool {
	return m.seq == 0 && bytes.Equal(m.key, m.chainID)
}

// Precedes reports whether m is the immediate predecessor of other: same
// resolution and chain, consecutive sequence numbers, and m's NextKey equal
// to other's Key.
func (m Mark) Precedes(other Mark) bool {
	return m.res == other.res &&
		bytes.Equal(m.chainID, other.chainID) &&
		other.seq == m.seq+1 &&
		bytes.Equal(m.nextKey, other.key)
}

// IsSequenceValid checks every invariant of a well-formed chain prefix:
// genesis at the head, constant resolution and chain id, strictly
// incrementing sequence numbers, non-decreasing dates, and an unbroken
// Precedes chain.
func IsSequenceValid(marks []Mark) bool {
	if len(marks) == 0 {
		return false
	}
	if !marks[0].IsGenesis() {
		return false
	}
	for i := 0; i+1 < len(marks); i++ {
		cur, next := marks[i], marks[i+1]
		if !cur.Precedes(next) {
			return false
		}
		if next.date.Before(cur.date) {
			return false
		}
	}
	return true
}
