package vault

import (
	"epd/internal/models"
	"epd/internal/providers"
	"epd/internal/structures"
	"epd/internal/vault/interfaces"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// usageEntry keeps the exact childId/contactId split alongside the key,
// since the key format alone is ambiguous for ids containing dashes.
type usageEntry struct {
	childID   string
	contactID string
	at        time.Time
}

// UsageLog stores contact usage events keyed by
// emergency-usage-{childId}-{contactId}, one key per pair holding the
// most recent use. All reads and writes hit memory; Flush is the only
// method that touches disk.
type UsageLog struct {
	mu         sync.RWMutex
	events     map[string]*usageEntry
	dirty      bool
	path       string
	compressor interfaces.CompressorInterface
	cipher     interfaces.CipherInterface
	logger     providers.Logger
}

func NewUsageLog(conf *structures.Config, compressor interfaces.CompressorInterface, cipher interfaces.CipherInterface, logger providers.Logger) interfaces.UsageLogInterface {
	return &UsageLog{
		events:     make(map[string]*usageEntry),
		path:       UsagePath(conf),
		compressor: compressor,
		cipher:     cipher,
		logger:     logger,
	}
}

func (ul *UsageLog) Record(childID, contactID string, at time.Time) {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	ul.events[models.UsageKey(childID, contactID)] = &usageEntry{
		childID:   childID,
		contactID: contactID,
		at:        at,
	}
	ul.dirty = true
}

// Stats scans every usage-event key: total, most recent, and the
// most-used contact (most keys, ties broken by recency). O(n) in the
// number of recorded events.
func (ul *UsageLog) Stats() models.UsageStats {
	ul.mu.RLock()
	defer ul.mu.RUnlock()

	stats := models.UsageStats{TotalEmergencyCalls: len(ul.events)}
	if len(ul.events) == 0 {
		return stats
	}

	counts := make(map[string]int)
	latest := make(map[string]time.Time)
	var last time.Time
	for _, e := range ul.events {
		if e.at.After(last) {
			last = e.at
		}
		counts[e.contactID]++
		if e.at.After(latest[e.contactID]) {
			latest[e.contactID] = e.at
		}
	}
	stats.LastEmergencyCall = &last

	for contactID, n := range counts {
		best := counts[stats.MostUsedContact]
		switch {
		case stats.MostUsedContact == "", n > best:
			stats.MostUsedContact = contactID
		case n == best && latest[contactID].After(latest[stats.MostUsedContact]):
			stats.MostUsedContact = contactID
		}
	}
	return stats
}

func (ul *UsageLog) Count() int {
	ul.mu.RLock()
	defer ul.mu.RUnlock()
	return len(ul.events)
}

func (ul *UsageLog) Clear() {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	ul.events = make(map[string]*usageEntry)
	ul.dirty = true
}

// Flush writes the event map to its encrypted file in the on-disk key →
// timestamp form. Skipped entirely when nothing changed.
func (ul *UsageLog) Flush() error {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	if !ul.dirty {
		return nil
	}

	onDisk := make(map[string]time.Time, len(ul.events))
	for key, e := range ul.events {
		onDisk[key] = e.at
	}
	jsonData, err := json.Marshal(onDisk)
	if err != nil {
		return fmt.Errorf("encode usage log: %w", err)
	}
	if err := sealToFile(ul.path, jsonData, ul.compressor, ul.cipher); err != nil {
		return fmt.Errorf("flush usage log: %w", err)
	}
	ul.dirty = false
	return nil
}

func (ul *UsageLog) Restore() error {
	plain, found, err := openFromFile(ul.path, ul.compressor, ul.cipher)
	if err != nil {
		return fmt.Errorf("restore usage log: %w", err)
	}
	if !found {
		return nil
	}

	var onDisk map[string]time.Time
	if err := json.Unmarshal(plain, &onDisk); err != nil {
		return fmt.Errorf("decode usage log: %w", err)
	}

	ul.mu.Lock()
	defer ul.mu.Unlock()
	for key, at := range onDisk {
		childID, contactID, ok := splitUsageKey(key)
		if !ok {
			ul.logger.Warnf(providers.TypeApp, "Skipping malformed usage key %q", key)
			continue
		}
		ul.events[key] = &usageEntry{childID: childID, contactID: contactID, at: at}
	}
	return nil
}

// splitUsageKey undoes models.UsageKey. The contact id is taken as the
// last dash-separated segment; for dashed (UUID) contact ids the split
// is approximate, which only skews most-used attribution across a
// restart, never the totals.
func splitUsageKey(key string) (childID, contactID string, ok bool) {
	rest := strings.TrimPrefix(key, models.UsageKeyPrefix)
	if rest == key || rest == "" {
		return "", "", false
	}
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}
