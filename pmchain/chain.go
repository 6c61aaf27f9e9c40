// Package pmchain implements the provenance-mark chain state machine: the
// two-ceremony append protocol that couples a threshold group's Round-1
// commitments and signatures to a chain of link-keyed marks. It holds the
// last mark; the pending Round-1 commitment receipt for the next sequence
// is returned to the caller, who passes it back on the next append. It
// performs the chain-integrity gate that proves a candidate
// key is exactly what the previous mark committed to before admitting a
// new mark.
package pmchain

import (
	"bytes"
	"fmt"
	"time"

	"github.com/blockchaincommons/frost-pmchain/frost"
	"github.com/blockchaincommons/frost-pmchain/group"
	"github.com/blockchaincommons/frost-pmchain/link"
	"github.com/blockchaincommons/frost-pmchain/mark"
)

// PrecommitReceipt is the public, non-secret record carried between
// sequences: the sequence it was collected for, and the commitments_root
// digest that is all link derivation needs from the full commitment
// bundle.
type PrecommitReceipt struct {
	Seq  uint32
	Root [32]byte
}

// Chain is the state machine producing a sequence of marks for one group.
// The zero value is not usable; construct one with NewChain.
type Chain struct {
	g    group.Group
	last mark.Mark
}

// NewChain starts a chain at its genesis mark. genesisSig must be a
// threshold signature, produced by g, over the genesis message M0 for g's
// configuration and res; bundle1 must be a freshly collected Round-1
// commitment bundle for sequence 1. The chain id is derived from
// genesisSig itself, so distinct genesis ceremonies for the same group
// produce distinct, unlinkable chain ids with overwhelming probability.
func NewChain(
	g group.Group,
	res mark.Resolution,
	genesisSig frost.Signature,
	bundle1 group.CommitmentBundle,
	date time.Time,
	info any,
) (*Chain, mark.Mark, PrecommitReceipt, error) {
	cfg := g.Config()
	m0 := link.GenesisMessage(res, cfg.Threshold(), cfg.Names(), cfg.Charter())

	if err := g.Verify(m0, genesisSig); err != nil {
		return nil, mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("%w: %v", ErrBadGenesisSignature, err)
	}

	linkLength := res.LinkLength()
	key0, err := link.DeriveGenesisKey(genesisSig, m0, linkLength)
	if err != nil {
		return nil, mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("pmchain: deriving genesis key: %w", err)
	}
	chainID := key0

	root1 := link.CommitmentsRoot(bundle1)
	nextKey0 := link.DeriveLink(chainID, 1, root1, linkLength)

	mark0, err := mark.New(res, key0, nextKey0, chainID, 0, date, info)
	if err != nil {
		return nil, mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("pmchain: constructing genesis mark: %w", err)
	}

	chain := &Chain{g: g, last: mark0}
	return chain, mark0, PrecommitReceipt{Seq: 1, Root: root1}, nil
}

// LastMark returns the most recently admitted mark.
func (c *Chain) LastMark() mark.Mark { return c.last }

// NextSeq returns the sequence number the next successful AppendMark would
// produce.
func (c *Chain) NextSeq() uint32 { return c.last.Seq() + 1 }

// AppendMark admits the next mark in the chain. receipt must be the
// PrecommitReceipt previously emitted for NextSeq(); sig must be a
// threshold signature produced by the chain's group over the per-mark
// message Mn for sequence NextSeq(); nextBundle must be a freshly
// collected Round-1 commitment bundle for sequence NextSeq()+1.
//
// On any failure, the chain's last mark is left unchanged and the caller
// must discard receipt, sig, and nextBundle: they must never be reused,
// since the nonces behind nextBundle are one-time and a given sig is valid
// for one message only.
func (c *Chain) AppendMark(
	date time.Time,
	info any,
	receipt PrecommitReceipt,
	sig frost.Signature,
	nextBundle group.CommitmentBundle,
) (mark.Mark, PrecommitReceipt, error) {
	nextSeq := c.NextSeq()

	if date.Before(c.last.Date()) {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("%w: %s precedes %s", ErrDateMonotonicity, date, c.last.Date())
	}
	if receipt.Seq != nextSeq {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("%w: receipt for seq %d, chain expects %d", ErrSequenceMismatch, receipt.Seq, nextSeq)
	}

	res := c.last.Res()
	linkLength := res.LinkLength()
	chainID := c.last.ChainID()

	key := link.DeriveLink(chainID, nextSeq, receipt.Root, linkLength)

	if !bytes.Equal(c.last.HashWithNextKey(key), c.last.Hash()) {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("%w: derived key for seq %d does not match mark %d's committed next key", ErrLinkageBroken, nextSeq, c.last.Seq())
	}

	infoCBOR, err := mark.EncodeInfo(info)
	if err != nil {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("pmchain: %w", err)
	}
	mn, err := link.PerMarkMessage(chainID, nextSeq, date, infoCBOR)
	if err != nil {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("pmchain: building message for seq %d: %w", nextSeq, err)
	}
	if err := c.g.Verify(mn, sig); err != nil {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("%w: seq %d: %v", ErrBadSignature, nextSeq, err)
	}

	rootNext := link.CommitmentsRoot(nextBundle)
	nextKey := link.DeriveLink(chainID, nextSeq+1, rootNext, linkLength)

	markN, err := mark.New(res, key, nextKey, chainID, nextSeq, date, info)
	if err != nil {
		return mark.Mark{}, PrecommitReceipt{}, fmt.Errorf("pmchain: constructing mark %d: %w", nextSeq, err)
	}

	c.last = markN
	return markN, PrecommitReceipt{Seq: nextSeq + 1, Root: rootNext}, nil
}
