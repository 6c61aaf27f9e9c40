package frost

import (
	"crypto/rand"
	"fmt"

	"filippo.io/edwards25519"
)

// KeyShare is one participant's share of a group's signing key: a scalar on
// the dealer's secret-sharing polynomial, together with the public material
// needed to verify signature shares without reconstructing the group
// secret.
type KeyShare struct {
	ID ParticipantID

	// Secret is this participant's point on the dealer's polynomial,
	// f(id). It must never leave the holding participant.
	Secret *edwards25519.Scalar

	// Public is Secret's corresponding public key, f(id)*G.
	Public *edwards25519.Point

	// GroupPublic is the group's verifying key, f(0)*G. It is identical
	// across every participant's KeyShare.
	GroupPublic *edwards25519.Point
}

// TrustedDealerKeygen generates a threshold-of-len(ids) key share for each
// identifier in ids, using a dealer who knows (and discards after this call)
// the group secret. This is the only key generation mode implemented: no
// distributed key generation ceremony is provided.
//
// threshold must be at least 1 and at most len(ids); ids must be non-empty
// and free of duplicates.
func TrustedDealerKeygen(threshold int, ids []ParticipantID) (map[ParticipantID]KeyShare, error) {
	if threshold < 1 || threshold > len(ids) {
		return nil, fmt.Errorf("%w: threshold %d, %d participants", ErrInvalidThreshold, threshold, len(ids))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidThreshold)
	}
	seen := make(map[ParticipantID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("frost: duplicate participant id %d", id)
		}
		seen[id] = true
	}

	coeffs := make([]*edwards25519.Scalar, threshold)
	for i := range coeffs {
		s, err := randomScalar()
		if err != nil {
			return nil, fmt.Errorf("frost: generating polynomial coefficient: %w", err)
		}
		coeffs[i] = s
	}

	groupSecret := coeffs[0]
	groupPublic := edwards25519.NewIdentityPoint().ScalarBaseMult(groupSecret)

	shares := make(map[ParticipantID]KeyShare, len(ids))
	for _, id := range ids {
		secretShare := evaluatePolynomial(coeffs, id.scalar())
		publicShare := edwards25519.NewIdentityPoint().ScalarBaseMult(secretShare)
		shares[id] = KeyShare{
			ID:          id,
			Secret:      secretShare,
			Public:      publicShare,
			GroupPublic: groupPublic,
		}
	}
	return shares, nil
}

// evaluatePolynomial evaluates the polynomial with the given coefficients
// (lowest degree first) at x, using Horner's method.
func evaluatePolynomial(coeffs []*edwards25519.Scalar, x *edwards25519.Scalar) *edwards25519.Scalar {
	result := edwards25519.NewScalar()
	for i := len(coeffs) - 1; i >= 0; i-- {
		result.Multiply(result, x)
		result.Add(result, coeffs[i])
	}
	return result
}

// randomScalar draws a uniformly random scalar using rejection-free wide
// reduction, the same technique SetUniformBytes is built for.
func randomScalar() (*edwards25519.Scalar, error) {
	var buf [64]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	return edwards25519.NewScalar().SetUniformBytes(buf[:])
}
