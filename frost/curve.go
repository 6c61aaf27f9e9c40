package frost

import (
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
)

// ParticipantID identifies a signer within a group. Identifiers are chosen
// by the caller of TrustedDealerKeygen (group.Config numbers its roster from
// 1) and are stable for the life of the group. Zero is not a valid
// identifier, since FROST reserves it for the group secret's constant term;
// TrustedDealerKeygen does not check for it.
type ParticipantID uint16

// scalarFromUint64 encodes v as a canonical Edwards-25519 scalar: a
// little-endian, zero-padded 32-byte string. Every value used by this
// package (participant identifiers) fits well within the scalar field, so
// the encoding is always already reduced.
func scalarFromUint64(v uint64) *edwards25519.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:8], v)
	s, err := edwards25519.NewScalar().SetCanonicalBytes(buf[:])
	if err != nil {
		panic(fmt.Sprintf("frost: %d is not a canonical scalar: %v", v, err))
	}
	return s
}

// scalar returns id as a field element, used both as the x-coordinate of
// this participant's share on the dealer's polynomial and as an input to
// Lagrange interpolation during signing.
func (id ParticipantID) scalar() *edwards25519.Scalar {
	return scalarFromUint64(uint64(id))
}

// lagrangeCoefficient computes the Lagrange basis coefficient lambda_i(0)
// for participant id, interpolating over the x-coordinates in signers. This
// is the weight by which id's signing share is scaled so that summing every
// signer's weighted share recovers f(0), the group secret, without any
// participant ever reconstructing it.
func lagrangeCoefficient(id ParticipantID, signers []ParticipantID) *edwards25519.Scalar {
	xi := id.scalar()
	num := edwards25519.NewScalar().Set(edwards25519oneScalar())
	den := edwards25519.NewScalar().Set(edwards25519oneScalar())

	for _, j := range signers {
		if j == id {
			continue
		}
		xj := j.scalar()

		num.Multiply(num, xj)

		diff := edwards25519.NewScalar().Subtract(xj, xi)
		den.Multiply(den, diff)
	}

	denInv := edwards25519.NewScalar().Invert(den)
	return edwards25519.NewScalar().Multiply(num, denInv)
}

// edwards25519oneScalar returns the scalar 1. It is a function rather than a
// package-level var because *edwards25519.Scalar is mutated in place by its
// own methods, and a shared mutable package value would be a hazard for
// every caller that chains Set/Multiply on what it returns.
func edwards25519oneScalar() *edwards25519.Scalar {
	return scalarFromUint64(1)
}
