package frost

import (
	"testing"

	"filippo.io/edwards25519"
)

func runCeremony(t *testing.T, shares map[ParticipantID]KeyShare, signers []ParticipantID, message []byte) Signature {
	t.Helper()
	suite := Ed25519Ciphersuite{}

	signerObjs := make(map[ParticipantID]*Signer, len(signers))
	nonces := make(map[ParticipantID]*Nonce, len(signers))
	commitments := make([]NonceCommitment, 0, len(signers))

	for _, id := range signers {
		s := NewSigner(shares[id], suite)
		signerObjs[id] = s
		nonce, commitment, err := s.Round1()
		if err != nil {
			t.Fatalf("round1 for %d: %v", id, err)
		}
		nonces[id] = nonce
		commitments = append(commitments, commitment)
	}

	sigShares := make(map[ParticipantID]*edwards25519.Scalar, len(signers))
	publics := make(map[ParticipantID]*edwards25519.Point, len(signers))
	for _, id := range signers {
		share, err := signerObjs[id].Round2(nonces[id], message, commitments)
		if err != nil {
			t.Fatalf("round2 for %d: %v", id, err)
		}
		sigShares[id] = share
		publics[id] = shares[id].Public
	}

	coord := NewCoordinator(suite, len(signers))
	sig, err := coord.Aggregate(message, commitments, sigShares, publics, shares[signers[0]].GroupPublic)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return sig
}

func TestRoundTripSignAndVerify(t *testing.T) {
	ids := []ParticipantID{1, 2, 3}
	shares, err := TrustedDealerKeygen(2, ids)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	message := []byte("provenance mark chain test message")
	sig := runCeremony(t, shares, []ParticipantID{1, 3}, message)

	suite := Ed25519Ciphersuite{}
	if err := Verify(suite, shares[1].GroupPublic, message, sig); err != nil {
		t.Fatalf("expected signature to verify: %v", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	ids := []ParticipantID{1, 2, 3}
	shares, err := TrustedDealerKeygen(2, ids)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	message := []byte("original message")
	sig := runCeremony(t, shares, []ParticipantID{1, 2}, message)

	suite := Ed25519Ciphersuite{}
	if err := Verify(suite, shares[1].GroupPublic, []byte("tampered message"), sig); err == nil {
		t.Fatal("expected verification to fail on tampered message")
	}
}

func TestRound2RejectsReusedNonce(t *testing.T) {
	ids := []ParticipantID{1, 2, 3}
	shares, err := TrustedDealerKeygen(2, ids)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	suite := Ed25519Ciphersuite{}
	signer := NewSigner(shares[1], suite)
	nonce, commitment1, err := signer.Round1()
	if err != nil {
		t.Fatalf("round1: %v", err)
	}

	otherSigner := NewSigner(shares[2], suite)
	_, commitment2, err := otherSigner.Round1()
	if err != nil {
		t.Fatalf("round1: %v", err)
	}

	commitments := []NonceCommitment{commitment1, commitment2}
	if _, err := signer.Round2(nonce, []byte("msg"), commitments); err != nil {
		t.Fatalf("first round2 should succeed: %v", err)
	}
	if _, err := signer.Round2(nonce, []byte("msg"), commitments); err == nil {
		t.Fatal("expected reused nonce to be rejected")
	}
}

func TestAggregateRejectsInsufficientShares(t *testing.T) {
	ids := []ParticipantID{1, 2, 3}
	shares, err := TrustedDealerKeygen(3, ids)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}

	suite := Ed25519Ciphersuite{}
	signer := NewSigner(shares[1], suite)
	nonce, commitment, err := signer.Round1()
	if err != nil {
		t.Fatalf("round1: %v", err)
	}

	share, err := signer.Round2(nonce, []byte("msg"), []NonceCommitment{commitment})
	if err != nil {
		t.Fatalf("round2: %v", err)
	}

	coord := NewCoordinator(suite, 3)
	_, err = coord.Aggregate(
		[]byte("msg"),
		[]NonceCommitment{commitment},
		map[ParticipantID]*edwards25519.Scalar{1: share},
		map[ParticipantID]*edwards25519.Point{1: shares[1].Public},
		shares[1].GroupPublic,
	)
	if err == nil {
		t.Fatal("expected insufficient signers error")
	}
}

func TestTrustedDealerKeygenRejectsBadThreshold(t *testing.T) {
	if _, err := TrustedDealerKeygen(0, []ParticipantID{1, 2}); err == nil {
		t.Fatal("expected error for zero threshold")
	}
	if _, err := TrustedDealerKeygen(5, []ParticipantID{1, 2}); err == nil {
		t.Fatal("expected error for threshold exceeding participant count")
	}
}
