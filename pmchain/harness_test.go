package pmchain

import (
	"time"

	"github.com/blockchaincommons/frost-pmchain/frost"
	"github.com/blockchaincommons/frost-pmchain/group"
	"github.com/blockchaincommons/frost-pmchain/link"
	"github.com/blockchaincommons/frost-pmchain/mark"
)

// testGroup builds a Group from a trusted dealer for threshold-of-names.
func testGroup(threshold int, names []string, charter string) (group.Group, error) {
	cfg, err := group.NewConfig(threshold, names, charter)
	if err != nil {
		return group.Group{}, err
	}
	return group.NewWithTrustedDealer(cfg)
}

// genesisSignature produces a valid threshold signature over M0 for res.
func genesisSignature(g group.Group, signerNames []string, res mark.Resolution) (frost.Signature, error) {
	cfg := g.Config()
	m0 := link.GenesisMessage(res, cfg.Threshold(), cfg.Names(), cfg.Charter())
	return g.Sign(m0, signerNames)
}

// markSignature produces a valid threshold signature over Mn for the given
// chain state.
func markSignature(g group.Group, signerNames []string, chainID []byte, seq uint32, date time.Time, info any) (frost.Signature, error) {
	infoCBOR, err := mark.EncodeInfo(info)
	if err != nil {
		return frost.Signature{}, err
	}
	mn, err := link.PerMarkMessage(chainID, seq, date, infoCBOR)
	if err != nil {
		return frost.Signature{}, err
	}
	return g.Sign(mn, signerNames)
}

// genesisChain builds a chain through NewChain with a freshly committed
// bundle for sequence 1, returning the chain, its genesis mark, and the
// precommit receipt for sequence 1.
func genesisChain(g group.Group, signerNames []string, res mark.Resolution, date time.Time, info any) (*Chain, mark.Mark, PrecommitReceipt, error) {
	sig, err := genesisSignature(g, signerNames, res)
	if err != nil {
		return nil, mark.Mark{}, PrecommitReceipt{}, err
	}
	bundle1, _, err := g.Round1Commit(signerNames)
	if err != nil {
		return nil, mark.Mark{}, PrecommitReceipt{}, err
	}
	return NewChain(g, res, sig, bundle1, date, info)
}

// appendNext drives one full append: it commits Round-1 for the sequence
// after next, signs Mn for the current next sequence, and calls
// AppendMark.
func appendNext(c *Chain, g group.Group, signerNames []string, receipt PrecommitReceipt, date time.Time, info any) (mark.Mark, PrecommitReceipt, error) {
	sig, err := markSignature(g, signerNames, c.LastMark().ChainID(), c.NextSeq(), date, info)
	if err != nil {
		return mark.Mark{}, PrecommitReceipt{}, err
	}
	nextBundle, _, err := g.Round1Commit(signerNames)
	if err != nil {
		return mark.Mark{}, PrecommitReceipt{}, err
	}
	return c.AppendMark(date, info, receipt, sig, nextBundle)
}
