package group

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blockchaincommons/frost-pmchain/frost"
)

// CommitmentBundle is the Round-1 output for one signing sequence: every
// participating signer's public commitment, in the order the signer names
// were given. Consumers that need the canonical ascending-id order (the
// link package's commitments_root, frost's Round 2) sort it themselves.
type CommitmentBundle []frost.NonceCommitment

// Group holds a roster's distributed key material and exposes the
// two-round threshold signing protocol by participant name. It is created
// once per chain and is read-only thereafter; signing shares never leave
// the package.
type Group struct {
	config  Config
	shares  map[frost.ParticipantID]frost.KeyShare
	groupPK *edwards25519.Point
	suite   frost.Ciphersuite
}

// NewWithTrustedDealer runs trusted-dealer key generation for config's
// roster and returns a ready-to-use Group. No coordinator ever sees the
// per-participant signing shares; this function is the only place they are
// produced.
func NewWithTrustedDealer(config Config) (Group, error) {
	shares, err := frost.TrustedDealerKeygen(config.Threshold(), config.allIDs())
	if err != nil {
		return Group{}, fmt.Errorf("group: trusted dealer keygen: %w", err)
	}
	return newGroupFromShares(config, shares)
}

// NewFromKeyMaterial builds a Group from key shares produced out of band
// (e.g. by a dealer running in a separate process), validating that shares
// covers exactly the configured roster.
func NewFromKeyMaterial(config Config, shares map[frost.ParticipantID]frost.KeyShare) (Group, error) {
	for _, id := range config.allIDs() {
		if _, ok := shares[id]; !ok {
			return Group{}, fmt.Errorf("%w: no key share for participant id %d", ErrUnknownParticipant, id)
		}
	}
	if len(shares) != config.N() {
		return Group{}, fmt.Errorf("group: key material covers %d participants, roster has %d", len(shares), config.N())
	}
	return newGroupFromShares(config, shares)
}

func newGroupFromShares(config Config, shares map[frost.ParticipantID]frost.KeyShare) (Group, error) {
	var groupPK *edwards25519.Point
	for _, s := range shares {
		groupPK = s.GroupPublic
		break
	}
	return Group{
		config:  config,
		shares:  shares,
		groupPK: groupPK,
		suite:   frost.Ed25519Ciphersuite{},
	}, nil
}

// Config returns the group's roster configuration.
func (g Group) Config() Config { return g.config }

// GroupPublic returns the group's verifying key.
func (g Group) GroupPublic() *edwards25519.Point { return g.groupPK }

// Round1Commit runs Round 1 for every named signer, returning the public
// commitment bundle to publish and the private nonces the caller must hold
// until the matching Round2Sign call and then erase. Fails with
// ErrInsufficientSigners if fewer than the threshold names are given, or
// ErrUnknownParticipant if any name is not on the roster.
func (g Group) Round1Commit(signerNames []string) (CommitmentBundle, map[string]*frost.Nonce, error) {
	ids, err := g.config.resolveNames(signerNames)
	if err != nil {
		return nil, nil, err
	}

	bundle := make(CommitmentBundle, 0, len(ids))
	nonces := make(map[string]*frost.Nonce, len(ids))
	for i, id := range ids {
		share, ok := g.shares[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: participant id %d", ErrUnknownParticipant, id)
		}
		signer := frost.NewSigner(share, g.suite)
		nonce, commitment, err := signer.Round1()
		if err != nil {
			return nil, nil, fmt.Errorf("group: round1 for %q: %w", signerNames[i], err)
		}
		bundle = append(bundle, commitment)
		nonces[signerNames[i]] = nonce
	}
	return bundle, nonces, nil
}

// Round2Sign runs Round 2 for every named signer and aggregates the
// resulting shares into a single Signature. signerNames, commitments, and
// nonces must all agree on the participant set; nonces must be exactly
// those returned by the matching Round1Commit call and must not have been
// used in any other Round2Sign invocation.
func (g Group) Round2Sign(signerNames []string, commitments CommitmentBundle, nonces map[string]*frost.Nonce, message []byte) (frost.Signature, error) {
	ids, err := g.config.resolveNames(signerNames)
	if err != nil {
		return frost.Signature{}, err
	}

	sigShares := make(map[frost.ParticipantID]*edwards25519.Scalar, len(ids))
	publics := make(map[frost.ParticipantID]*edwards25519.Point, len(ids))

	for i, id := range ids {
		name := signerNames[i]
		keyShare, ok := g.shares[id]
		if !ok {
			return frost.Signature{}, fmt.Errorf("%w: participant id %d", ErrUnknownParticipant, id)
		}
		nonce, ok := nonces[name]
		if !ok {
			return frost.Signature{}, fmt.Errorf("%w: no nonce for %q", frost.ErrMissingNonce, name)
		}

		signer := frost.NewSigner(keyShare, g.suite)
		share, err := signer.Round2(nonce, message, commitments)
		if err != nil {
			return frost.Signature{}, fmt.Errorf("group: round2 for %q: %w", name, err)
		}
		sigShares[id] = share
		publics[id] = keyShare.Public
	}

	coord := frost.NewCoordinator(g.suite, g.config.Threshold())
	sig, err := coord.Aggregate(message, commitments, sigShares, publics, g.groupPK)
	if err != nil {
		return frost.Signature{}, fmt.Errorf("group: aggregate: %w", err)
	}
	return sig, nil
}

// Sign is the one-shot composition of Round1Commit and Round2Sign for
// callers that do not need the commitment bundle for anything else (the
// Chain does; most other callers don't).
func (g Group) Sign(message []byte, signerNames []string) (frost.Signature, error) {
	commitments, nonces, err := g.Round1Commit(signerNames)
	if err != nil {
		return frost.Signature{}, err
	}
	return g.Round2Sign(signerNames, commitments, nonces, message)
}

// Verify checks sig against message under the group's verifying key.
func (g Group) Verify(message []byte, sig frost.Signature) error {
	return frost.Verify(g.suite, g.groupPK, message, sig)
}
