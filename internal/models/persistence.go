package models

import json "github.com/goccy/go-json"

// SnapshotVersion is the current on-disk envelope version.
const SnapshotVersion = 1

// Snapshot is the persistence envelope for the profile store. Profile
// records stay as raw JSON documents so a single corrupt record can be
// skipped on load without poisoning the rest of the file. Keeping the
// index inside the same envelope makes the profile write and the index
// update one atomic file rename.
type Snapshot struct {
	Version  int                        `json:"version"`
	Profiles map[string]json.RawMessage `json:"profiles"`
	Index    []string                   `json:"index"`
}

// UpdateOutcome distinguishes an applied mutation from a mutation that
// found nothing to mutate. Callers must be able to tell the two apart
// instead of getting a silent no-op.
type UpdateOutcome int

const (
	OutcomeUpdated UpdateOutcome = iota
	OutcomeNotFound
)

func (o UpdateOutcome) String() string {
	if o == OutcomeUpdated {
		return "updated"
	}
	return "not-found"
}
