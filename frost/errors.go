package frost

import "errors"

// Error kinds surfaced by the threshold signing primitive. Every failure is
// terminal for the ceremony in progress; there is no retry at this layer,
// and an upper layer must discard any commitments and nonces for the
// sequence rather than reuse them.
var (
	// ErrInvalidThreshold is returned by TrustedDealerKeygen when the
	// threshold is zero or exceeds the number of participants.
	ErrInvalidThreshold = errors.New("frost: invalid threshold")

	// ErrUnknownParticipant is returned when a signer set names an
	// identifier the group was not configured with.
	ErrUnknownParticipant = errors.New("frost: unknown participant")

	// ErrInsufficientSigners is returned when a signer set is smaller than
	// the group's threshold.
	ErrInsufficientSigners = errors.New("frost: insufficient signers")

	// ErrMissingNonce is returned by Round2 when a participant's matching
	// nonce is not available.
	ErrMissingNonce = errors.New("frost: missing nonce")

	// ErrNonceAlreadyUsed is returned when a nonce object is presented to
	// Round2 a second time. Nonces are one-time: reusing a nonce across two
	// Round-2 invocations on different messages breaks the scheme.
	ErrNonceAlreadyUsed = errors.New("frost: nonce already consumed")

	// ErrInvalidShare is returned when a signature share fails validation
	// during aggregation.
	ErrInvalidShare = errors.New("frost: invalid signature share")

	// ErrAggregationFailed is returned when share aggregation cannot
	// produce a signature (malformed or mismatched commitment/share sets).
	ErrAggregationFailed = errors.New("frost: aggregation failed")

	// ErrInvalidSignature is returned by Verify when a signature does not
	// verify against the group verifying key.
	ErrInvalidSignature = errors.New("frost: invalid signature")

	// ErrInvalidCommitment is returned when a commitment list is malformed:
	// empty, containing a duplicate identifier, or missing the calling
	// signer's own commitment. Lists in any order are accepted and sorted by
	// identifier.
	ErrInvalidCommitment = errors.New("frost: invalid commitment list")
)
