package models

import (
	"strings"
	"time"
)

// UsageKeyPrefix is the key pattern prefix for usage events:
// emergency-usage-{childId}-{contactId}.
const UsageKeyPrefix = "emergency-usage-"

// UsageKey builds the storage key for one (child, contact) pair.
func UsageKey(childID, contactID string) string {
	return UsageKeyPrefix + childID + "-" + contactID
}

// ContactIDFromUsageKey extracts the contactId from a usage-event key.
// The contact id is the last dash-separated segment; contact ids are
// UUIDs or client-chosen tokens without meaning to us, so the split only
// has to undo what UsageKey did for ids that contain no dash. For
// dashed ids (UUIDs) every segment boundary is ambiguous, which is why
// callers that need exact attribution should carry the id separately.
func ContactIDFromUsageKey(key string) string {
	rest := strings.TrimPrefix(key, UsageKeyPrefix)
	if idx := strings.LastIndex(rest, "-"); idx >= 0 {
		return rest[idx+1:]
	}
	return rest
}

// UsageStats is the aggregate over all recorded usage events.
// MostUsedContact is the contactId with the most usage-event keys,
// ties broken by most recent use; empty when no events exist.
type UsageStats struct {
	TotalEmergencyCalls int        `json:"totalEmergencyCalls"`
	LastEmergencyCall   *time.Time `json:"lastEmergencyCall"`
	MostUsedContact     string     `json:"mostUsedContact,omitempty"`
}

// StorageHealth is the result of a self-diagnostic probe: a real full
// profile scan with its wall-clock latency compared against the
// configured budget.
type StorageHealth struct {
	IsHealthy    bool          `json:"isHealthy"`
	Latency      time.Duration `json:"-"`
	LatencyMs    float64       `json:"latencyMs"`
	ProfileCount int           `json:"profileCount"`
	KeyCount     int           `json:"keyCount"`
}
