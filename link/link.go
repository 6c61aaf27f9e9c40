// Package link implements the pure, side-effect-free functions that bind a
// threshold group's Round-1 commitments and signatures to a provenance-mark
// chain's link keys: commitments_root, derive_link, and the canonical
// genesis/per-mark message builders that get signed under domain
// separation.
package link

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/exp/slices"

	"github.com/blockchaincommons/frost-pmchain/frost"
	"github.com/blockchaincommons/frost-pmchain/group"
	"github.com/blockchaincommons/frost-pmchain/mark"
)

// nextLinkTag is the domain-separation tag for derive_link.
const nextLinkTag = "PM:v1/next"

// hashMessageTag is the domain-separation prefix for a per-mark message Mn,
// n >= 1.
const hashMessageTag = "DS_HASH\x00"

// encMode is the canonical CBOR encoder used for the date field of a
// per-mark message. Its options are the same as the encoder mark.Mark uses
// internally, so a date is encoded here exactly as in a mark's hash. Info is
// not encoded here: PerMarkMessage receives it already encoded by
// mark.EncodeInfo.
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

// CommitmentsRoot computes the canonical, collision-resistant fingerprint of
// a Round-1 commitment bundle: iterate in ascending participant-id order,
// emit each commitment's length-prefixed identifier and encoded commitment
// bytes, and hash the concatenation with SHA-256. The root is invariant
// under how the bundle happens to be represented in memory, but changes if
// any participant or any commitment byte changes.
func CommitmentsRoot(bundle group.CommitmentBundle) [32]byte {
	sorted := append(group.CommitmentBundle(nil), bundle...)
	slices.SortFunc(sorted, func(a, b frost.NonceCommitment) int { return int(a.ID) - int(b.ID) })

	var buf bytes.Buffer
	for _, c := range sorted {
		idBytes := encodeParticipantID(c.ID)
		scBytes := encodeCommitment(c)

		writeU16BE(&buf, len(idBytes))
		buf.Write(idBytes)
		writeU16BE(&buf, len(scBytes))
		buf.Write(scBytes)
	}
	return sha256.Sum256(buf.Bytes())
}

func encodeParticipantID(id frost.ParticipantID) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(id))
	return b[:]
}

func encodeCommitment(c frost.NonceCommitment) []byte {
	out := make([]byte, 0, 64)
	out = append(out, c.Hiding.Bytes()...)
	out = append(out, c.Binding.Bytes()...)
	return out
}

func writeU16BE(buf *bytes.Buffer, n int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(n))
	buf.Write(b[:])
}

// DeriveLink computes SHA-256("PM:v1/next" || chainID || u32_be(seq) || root)
// truncated to linkLength bytes. This is the sole definition of how any
// non-genesis link key is determined; it is pure and deterministic in its
// arguments.
func DeriveLink(chainID []byte, seq uint32, root [32]byte, linkLength int) []byte {
	var seqBytes [4]byte
	binary.BigEndian.PutUint32(seqBytes[:], seq)

	h := sha256.New()
	h.Write([]byte(nextLinkTag))
	h.Write(chainID)
	h.Write(seqBytes[:])
	h.Write(root[:])
	digest := h.Sum(nil)
	return digest[:linkLength]
}

// GenesisMessage builds M0, the canonical message signed to produce a
// chain's genesis key. M0 is a pure function of public group and chain
// parameters alone: it contains neither dates nor artifact info, so that
// the genesis signature (and hence the chain id) depends only on who the
// group is and what it was convened to attest, not on any one artifact.
func GenesisMessage(res mark.Resolution, threshold int, names []string, charter string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "PM:v1/genesis\x00res=%s\x00threshold=%d\x00n=%d\x00charter=%s\x00roster=",
		res.String(), threshold, len(names), charter)
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(name)
	}
	return buf.Bytes()
}

// PerMarkMessage builds Mn, n >= 1: the message signed to authorize mark n,
// binding the chain it belongs to, its sequence number, its date, and its
// info payload, encoded exactly once via the same canonical CBOR mode
// mark.Mark uses for its own hash, so info never participates in two
// different encodings.
func PerMarkMessage(chainID []byte, seq uint32, date time.Time, infoCBOR []byte) ([]byte, error) {
	dateCBOR, err := encMode.Marshal(date.UTC())
	if err != nil {
		return nil, fmt.Errorf("link: encoding date: %w", err)
	}

	var seqBytes, infoLenBytes [4]byte
	binary.BigEndian.PutUint32(seqBytes[:], seq)
	binary.BigEndian.PutUint32(infoLenBytes[:], uint32(len(infoCBOR)))

	var buf bytes.Buffer
	buf.WriteString(hashMessageTag)
	buf.Write(chainID)
	buf.Write(seqBytes[:])
	buf.Write(dateCBOR)
	buf.Write(infoLenBytes[:])
	buf.Write(infoCBOR)
	return buf.Bytes(), nil
}

// DeriveGenesisKey derives a chain's genesis key (and chain id) from the
// threshold signature over M0 via HKDF-SHA256, salted with M0 itself and
// expanded to linkLength bytes.
func DeriveGenesisKey(sig frost.Signature, m0 []byte, linkLength int) ([]byte, error) {
	reader := hkdf.New(sha256.New, sig.Bytes(), m0, []byte("PM:v1/genesis-key"))
	key := make([]byte, linkLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("link: deriving genesis key: %w", err)
	}
	return key, nil
}
