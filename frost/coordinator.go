package frost

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Signature is a completed FROST threshold Schnorr signature: a group
// commitment point and an aggregated response scalar.
type Signature struct {
	R *edwards25519.Point
	Z *edwards25519.Scalar
}

// Bytes encodes the signature in the conventional Ed25519 wire format: the
// 32-byte compressed R followed by the 32-byte canonical Z.
func (sig Signature) Bytes() []byte {
	out := make([]byte, 0, 64)
	out = append(out, sig.R.Bytes()...)
	out = append(out, sig.Z.Bytes()...)
	return out
}

// Coordinator aggregates per-signer Round-2 shares into a single group
// signature. It holds no secret material: aggregation and verification are
// both public operations over commitments, shares, and the group verifying
// key.
type Coordinator struct {
	suite     Ciphersuite
	threshold int
}

// NewCoordinator returns a Coordinator that rejects aggregation attempts
// with fewer than threshold shares.
func NewCoordinator(suite Ciphersuite, threshold int) *Coordinator {
	return &Coordinator{suite: suite, threshold: threshold}
}

// Aggregate combines signature shares from a ceremony's signers into a
// single Signature, verifying each share individually before summing so
// that one malformed share never silently corrupts the aggregate. publics
// maps each signer's identifier to its per-participant public key, as
// carried on every KeyShare produced by TrustedDealerKeygen.
func (c *Coordinator) Aggregate(
	message []byte,
	commitments []NonceCommitment,
	shares map[ParticipantID]*edwards25519.Scalar,
	publics map[ParticipantID]*edwards25519.Point,
	groupPublic *edwards25519.Point,
) (Signature, error) {
	if len(shares) < c.threshold {
		return Signature{}, fmt.Errorf("%w: got %d shares, need %d", ErrInsufficientSigners, len(shares), c.threshold)
	}

	bundle, err := newCommitmentBundle(commitments)
	if err != nil {
		return Signature{}, err
	}

	msgHash := c.suite.H4(message)
	listHash := c.suite.H5(bundle.encode())
	groupCommitment := bundle.groupCommitment(c.suite, msgHash, listHash)
	challenge := c.suite.H2(groupCommitment.Bytes(), groupPublic.Bytes(), msgHash)

	signers := bundle.ids()
	z := edwards25519.NewScalar()
	var validationErrors []error
	for _, c2 := range bundle.sorted {
		share, ok := shares[c2.ID]
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("%w: no share from participant %d", ErrAggregationFailed, c2.ID))
			continue
		}
		pub, ok := publics[c2.ID]
		if !ok {
			validationErrors = append(validationErrors, fmt.Errorf("%w: no public key for participant %d", ErrUnknownParticipant, c2.ID))
			continue
		}

		if !verifyShare(c.suite, share, c2, pub, lagrangeCoefficient(c2.ID, signers), challenge, msgHash, listHash) {
			validationErrors = append(validationErrors, fmt.Errorf("%w: participant %d", ErrInvalidShare, c2.ID))
			continue
		}

		z.Add(z, share)
	}
	if len(validationErrors) != 0 {
		return Signature{}, errors.Join(validationErrors...)
	}

	return Signature{R: groupCommitment, Z: z}, nil
}

// verifyShare checks share_i*G == Hiding_i + binding_factor_i*Binding_i +
// lambda_i*challenge*Public_i, the per-participant identity that lets
// aggregation catch a bad share before it silently corrupts the sum.
func verifyShare(
	suite Ciphersuite,
	share *edwards25519.Scalar,
	commitment NonceCommitment,
	public *edwards25519.Point,
	lambda, challenge *edwards25519.Scalar,
	msgHash, listHash []byte,
) bool {
	lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(share)

	factor := bindingFactor(suite, commitment.ID, msgHash, listHash)
	rhs := edwards25519.NewIdentityPoint().ScalarMult(factor, commitment.Binding)
	rhs.Add(rhs, commitment.Hiding)

	weighted := edwards25519.NewScalar().Multiply(lambda, challenge)
	term := edwards25519.NewIdentityPoint().ScalarMult(weighted, public)
	rhs.Add(rhs, term)

	return lhs.Equal(rhs) == 1
}

// Verify checks sig against message under groupPublic.
func Verify(suite Ciphersuite, groupPublic *edwards25519.Point, message []byte, sig Signature) error {
	msgHash := suite.H4(message)
	challenge := suite.H2(sig.R.Bytes(), groupPublic.Bytes(), msgHash)

	lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(sig.Z)
	rhs := edwards25519.NewIdentityPoint().ScalarMult(challenge, groupPublic)
	rhs.Add(rhs, sig.R)

	if lhs.Equal(rhs) != 1 {
		return ErrInvalidSignature
	}
	return nil
}
