// Package group implements the declarative roster (Config) and the
// key-holding, two-round-signing Group that sits on top of the frost
// package: it is the name-facing API a coordinator drives, translating
// human-readable participant names to the frost package's small-integer
// ParticipantID and back.
package group

import (
	"errors"
	"fmt"

	"github.com/blockchaincommons/frost-pmchain/frost"
)

// Errors surfaced by Config and Group. Three of them parallel frost's
// sentinel errors of the same names, but are distinct values so that
// callers can match on this package's vocabulary (names) rather than the
// lower layer's (identifiers). Errors from Round 2 and aggregation are
// passed through as wrapped frost errors.
var (
	ErrInvalidThreshold    = errors.New("group: invalid threshold")
	ErrDuplicateName       = errors.New("group: duplicate participant name")
	ErrUnknownParticipant  = errors.New("group: unknown participant")
	ErrInsufficientSigners = errors.New("group: insufficient signers")
)

// Config is a declarative roster: a threshold, an ordered list of
// participant names with stable small-integer identifiers assigned in
// roster order starting at 1, and a charter string describing the group's
// purpose. Ids are 1..len(names), contiguous, with no gaps.
type Config struct {
	threshold int
	names     []string
	ids       map[string]frost.ParticipantID
	charter   string
}

// NewConfig validates and builds a Config. threshold must satisfy
// 1 <= threshold <= len(names); names must be unique.
func NewConfig(threshold int, names []string, charter string) (Config, error) {
	if threshold < 1 || threshold > len(names) {
		return Config{}, fmt.Errorf("%w: threshold %d with %d participants", ErrInvalidThreshold, threshold, len(names))
	}

	ids := make(map[string]frost.ParticipantID, len(names))
	for i, name := range names {
		if _, dup := ids[name]; dup {
			return Config{}, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		ids[name] = frost.ParticipantID(i + 1)
	}

	return Config{
		threshold: threshold,
		names:     append([]string(nil), names...),
		ids:       ids,
		charter:   charter,
	}, nil
}

// Threshold returns the minimum number of cooperating participants required
// to produce a signature.
func (c Config) Threshold() int { return c.threshold }

// Charter returns the group's charter string.
func (c Config) Charter() string { return c.charter }

// Names returns the roster in canonical (ascending id) order.
func (c Config) Names() []string { return append([]string(nil), c.names...) }

// N returns the roster size.
func (c Config) N() int { return len(c.names) }

// IDFor returns the participant identifier assigned to name.
func (c Config) IDFor(name string) (frost.ParticipantID, error) {
	id, ok := c.ids[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParticipant, name)
	}
	return id, nil
}

// ids for every configured participant, in roster order.
func (c Config) allIDs() []frost.ParticipantID {
	out := make([]frost.ParticipantID, len(c.names))
	for i, name := range c.names {
		out[i] = c.ids[name]
	}
	return out
}

// resolveNames maps a set of participant names to frost identifiers,
// rejecting unknown names and sets smaller than the configured threshold.
func (c Config) resolveNames(names []string) ([]frost.ParticipantID, error) {
	if len(names) < c.threshold {
		return nil, fmt.Errorf("%w: got %d signers, need %d", ErrInsufficientSigners, len(names), c.threshold)
	}
	ids := make([]frost.ParticipantID, 0, len(names))
	for _, name := range names {
		id, err := c.IDFor(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
