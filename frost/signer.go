package frost

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/exp/slices"
)

// NonceCommitment is the public Round-1 output a signer publishes: two
// commitment points, one for a hiding nonce and one for a binding nonce.
type NonceCommitment struct {
	ID      ParticipantID
	Hiding  *edwards25519.Point
	Binding *edwards25519.Point
}

// Nonce is the private Round-1 output a signer must retain until Round 2
// and then discard. A Nonce may be consumed by Round2 exactly once; reuse
// across two signing ceremonies breaks the scheme and is rejected.
type Nonce struct {
	id      ParticipantID
	hiding  *edwards25519.Scalar
	binding *edwards25519.Scalar
	used    bool
}

// Commitment returns the public commitment this nonce corresponds to.
func (n *Nonce) Commitment() NonceCommitment {
	return NonceCommitment{
		ID:      n.id,
		Hiding:  edwards25519.NewIdentityPoint().ScalarBaseMult(n.hiding),
		Binding: edwards25519.NewIdentityPoint().ScalarBaseMult(n.binding),
	}
}

// Signer runs the two signing rounds on behalf of one key share holder. A
// Signer is single-use per ceremony: call Round1 to obtain a Nonce and
// NonceCommitment, distribute the commitment, then call Round2 once the
// full commitment set for the ceremony is known.
type Signer struct {
	share KeyShare
	suite Ciphersuite
}

// NewSigner returns a Signer for the given key share, using suite for its
// domain-separated hashing.
func NewSigner(share KeyShare, suite Ciphersuite) *Signer {
	return &Signer{share: share, suite: suite}
}

// Round1 draws fresh hiding and binding nonces and returns them alongside
// the commitment to publish to the coordinator. The returned Nonce must be
// held privately and passed to Round2 for this same ceremony, never reused.
func (s *Signer) Round1() (*Nonce, NonceCommitment, error) {
	hiding, err := randomScalar()
	if err != nil {
		return nil, NonceCommitment{}, fmt.Errorf("frost: round1: %w", err)
	}
	binding, err := randomScalar()
	if err != nil {
		return nil, NonceCommitment{}, fmt.Errorf("frost: round1: %w", err)
	}
	n := &Nonce{id: s.share.ID, hiding: hiding, binding: binding}
	return n, n.Commitment(), nil
}

// Round2 produces this signer's signature share over message, given the
// full set of commitments gathered from every signer in the ceremony
// (including this signer's own, as returned by Round1), in any order. nonce must
// be the Nonce this same Signer produced in Round1 for this ceremony.
func (s *Signer) Round2(nonce *Nonce, message []byte, commitments []NonceCommitment) (*edwards25519.Scalar, error) {
	if nonce.used {
		return nil, ErrNonceAlreadyUsed
	}
	if nonce.id != s.share.ID {
		return nil, fmt.Errorf("%w: nonce belongs to participant %d, signer is %d", ErrMissingNonce, nonce.id, s.share.ID)
	}

	bundle, err := newCommitmentBundle(commitments)
	if err != nil {
		return nil, err
	}
	if !bundle.contains(s.share.ID) {
		return nil, fmt.Errorf("%w: signer %d has no commitment in the set", ErrInvalidCommitment, s.share.ID)
	}

	signers := bundle.ids()
	msgHash := s.suite.H4(message)
	listHash := s.suite.H5(bundle.encode())

	groupCommitment := bundle.groupCommitment(s.suite, msgHash, listHash)
	challenge := s.suite.H2(groupCommitment.Bytes(), s.share.GroupPublic.Bytes(), msgHash)

	myFactor := bindingFactor(s.suite, s.share.ID, msgHash, listHash)
	lambda := lagrangeCoefficient(s.share.ID, signers)

	// z_i = hiding_nonce + binding_factor*binding_nonce + lambda*secret*challenge
	share := edwards25519.NewScalar().Multiply(myFactor, nonce.binding)
	share.Add(share, nonce.hiding)

	term := edwards25519.NewScalar().Multiply(lambda, s.share.Secret)
	term.Multiply(term, challenge)
	share.Add(share, term)

	nonce.used = true
	return share, nil
}

// bindingFactor computes the per-participant binding factor that ties a
// signer's binding nonce to this specific message and commitment set, so
// that commitments cannot be replayed against a different message.
func bindingFactor(suite Ciphersuite, id ParticipantID, msgHash, listHash []byte) *edwards25519.Scalar {
	var idBytes [2]byte
	binary.LittleEndian.PutUint16(idBytes[:], uint16(id))
	return suite.H1(bytes.Join([][]byte{idBytes[:], msgHash, listHash}, nil))
}

// commitmentBundle is a validated, identifier-sorted view of a ceremony's
// Round-1 commitments.
type commitmentBundle struct {
	sorted []NonceCommitment
}

func newCommitmentBundle(commitments []NonceCommitment) (*commitmentBundle, error) {
	if len(commitments) == 0 {
		return nil, fmt.Errorf("%w: empty commitment list", ErrInvalidCommitment)
	}
	sorted := append([]NonceCommitment(nil), commitments...)
	slices.SortFunc(sorted, func(a, b NonceCommitment) int { return int(a.ID) - int(b.ID) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			return nil, fmt.Errorf("%w: duplicate commitment for participant %d", ErrInvalidCommitment, sorted[i].ID)
		}
	}
	return &commitmentBundle{sorted: sorted}, nil
}

func (b *commitmentBundle) contains(id ParticipantID) bool {
	for _, c := range b.sorted {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (b *commitmentBundle) ids() []ParticipantID {
	ids := make([]ParticipantID, len(b.sorted))
	for i, c := range b.sorted {
		ids[i] = c.ID
	}
	return ids
}

// encode serializes the commitment list in sorted order: this is the exact
// byte string H5 hashes, and its determinism is what lets every signer and
// the coordinator compute the same binding factors independently.
func (b *commitmentBundle) encode() []byte {
	var buf bytes.Buffer
	for _, c := range b.sorted {
		var idBytes [2]byte
		binary.LittleEndian.PutUint16(idBytes[:], uint16(c.ID))
		buf.Write(idBytes[:])
		buf.Write(c.Hiding.Bytes())
		buf.Write(c.Binding.Bytes())
	}
	return buf.Bytes()
}

// groupCommitment computes R = sum_i (Hiding_i + binding_factor_i * Binding_i)
// over every commitment in the bundle.
func (b *commitmentBundle) groupCommitment(suite Ciphersuite, msgHash, listHash []byte) *edwards25519.Point {
	result := edwards25519.NewIdentityPoint()
	for _, c := range b.sorted {
		factor := bindingFactor(suite, c.ID, msgHash, listHash)
		term := edwards25519.NewIdentityPoint().ScalarMult(factor, c.Binding)
		term.Add(term, c.Hiding)
		result.Add(result, term)
	}
	return result
}
