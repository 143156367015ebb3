package services

import (
	"epd/internal/models"
	"epd/internal/providers"
	"epd/internal/structures"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// DefaultHealthLatencyBudget is the probe budget used when the config
// leaves it unset.
const DefaultHealthLatencyBudget = 100 * time.Millisecond

var ErrTooManyContacts = errors.New("contact list exceeds configured maximum")

// UsageRecorderInterface is the slice of the usage log the store needs.
// The concrete implementation lives in the vault package.
type UsageRecorderInterface interface {
	Record(childID, contactID string, at time.Time)
	Stats() models.UsageStats
	Count() int
	Clear()
}

type ProfileServiceInterface interface {
	StoreProfile(p *models.EmergencyProfile) error
	GetProfile(childID string) (*models.EmergencyProfile, bool)
	GetAllProfiles() []*models.EmergencyProfile
	UpdateContacts(childID string, contacts []models.EmergencyContact) (models.UpdateOutcome, error)
	UpdateMedicalInfo(childID string, info models.MedicalInfo) models.UpdateOutcome
	RecordContactUsage(childID, contactID string) (models.UpdateOutcome, time.Time)
	QRPayload(childID string) (*models.QRPayload, bool)
	ClearAll()
	StorageHealth() models.StorageHealth
	ProfileCount() int
	KeyCount() int
	Dirty() bool
	MarkClean()
	GetSnapshot() *models.Snapshot
	PutRecord(childID string, raw []byte)
}

// ProfileService keeps profiles as the JSON documents they are persisted
// as: a record is encoded once on write and decoded defensively on read,
// so a corrupt record degrades to not-found instead of taking the whole
// store down.
type ProfileService struct {
	conf   *structures.Config
	logger providers.Logger

	mu       sync.RWMutex
	records  map[string][]byte
	index    []string
	indexSet map[string]struct{}

	dirty atomic.Bool
}

func NewProfileService(conf *structures.Config, logger providers.Logger) ProfileServiceInterface {
	return &ProfileService{
		conf:     conf,
		logger:   logger,
		records:  make(map[string][]byte),
		indexSet: make(map[string]struct{}),
	}
}

func (ps *ProfileService) StoreProfile(p *models.EmergencyProfile) error {
	if p == nil || p.ChildID == "" {
		return errors.New("profile requires a childId")
	}
	if maxC := ps.conf.Emergency.MaxContacts; maxC > 0 && len(p.EmergencyContacts) > maxC {
		return fmt.Errorf("%w: %d > %d", ErrTooManyContacts, len(p.EmergencyContacts), maxC)
	}

	p.NormalizeIDs()
	p.Touch(time.Now())

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.ChildID, err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.records[p.ChildID] = raw
	ps.indexAdd(p.ChildID)
	ps.dirty.Store(true)
	return nil
}

// indexAdd appends a childId to the index if absent. Caller holds ps.mu.
func (ps *ProfileService) indexAdd(childID string) {
	if _, ok := ps.indexSet[childID]; ok {
		return
	}
	ps.indexSet[childID] = struct{}{}
	ps.index = append(ps.index, childID)
}

func (ps *ProfileService) GetProfile(childID string) (*models.EmergencyProfile, bool) {
	ps.mu.RLock()
	raw, ok := ps.records[childID]
	ps.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ps.decode(childID, raw)
}

func (ps *ProfileService) GetAllProfiles() []*models.EmergencyProfile {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profiles := make([]*models.EmergencyProfile, 0, len(ps.index))
	for _, childID := range ps.index {
		raw, ok := ps.records[childID]
		if !ok {
			continue
		}
		if p, ok := ps.decode(childID, raw); ok {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// decode unmarshals a stored record. A record that no longer parses is
// reported as missing, never as an error.
func (ps *ProfileService) decode(childID string, raw []byte) (*models.EmergencyProfile, bool) {
	var p models.EmergencyProfile
	if err := json.Unmarshal(raw, &p); err != nil || p.ChildID == "" {
		ps.logger.Warnf(providers.TypeApp, "Corrupt profile record for %s, treating as missing: %v", childID, err)
		return nil, false
	}
	return &p, true
}

func (ps *ProfileService) UpdateContacts(childID string, contacts []models.EmergencyContact) (models.UpdateOutcome, error) {
	if maxC := ps.conf.Emergency.MaxContacts; maxC > 0 && len(contacts) > maxC {
		return models.OutcomeNotFound, fmt.Errorf("%w: %d > %d", ErrTooManyContacts, len(contacts), maxC)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.load(childID)
	if !ok {
		return models.OutcomeNotFound, nil
	}

	// lastContacted is owned by the usage-recording path; carry existing
	// values over and ignore whatever the client sent.
	previous := make(map[string]*time.Time, len(p.EmergencyContacts))
	for i := range p.EmergencyContacts {
		previous[p.EmergencyContacts[i].ID] = p.EmergencyContacts[i].LastContacted
	}
	for i := range contacts {
		contacts[i].LastContacted = previous[contacts[i].ID]
	}

	p.EmergencyContacts = contacts
	p.NormalizeIDs()
	return ps.save(p), nil
}

func (ps *ProfileService) UpdateMedicalInfo(childID string, info models.MedicalInfo) models.UpdateOutcome {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.load(childID)
	if !ok {
		return models.OutcomeNotFound
	}

	if info.ID == "" {
		info.ID = p.MedicalInfo.ID
	}
	info.LastUpdated = time.Now()
	p.MedicalInfo = info
	p.NormalizeIDs()
	return ps.save(p)
}

func (ps *ProfileService) RecordContactUsage(childID, contactID string) (models.UpdateOutcome, time.Time) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.load(childID)
	if !ok {
		return models.OutcomeNotFound, time.Time{}
	}

	contact := p.FindContact(contactID)
	if contact == nil {
		return models.OutcomeNotFound, time.Time{}
	}

	now := time.Now()
	contact.LastContacted = &now
	if ps.save(p) != models.OutcomeUpdated {
		return models.OutcomeNotFound, time.Time{}
	}
	return models.OutcomeUpdated, now
}

// load is the read half of a read-modify-write. Caller holds ps.mu.
func (ps *ProfileService) load(childID string) (*models.EmergencyProfile, bool) {
	raw, ok := ps.records[childID]
	if !ok {
		return nil, false
	}
	return ps.decode(childID, raw)
}

// save is the write half of a read-modify-write. Caller holds ps.mu.
func (ps *ProfileService) save(p *models.EmergencyProfile) models.UpdateOutcome {
	p.Touch(time.Now())
	raw, err := json.Marshal(p)
	if err != nil {
		ps.logger.Errorf(providers.TypeApp, "Encode profile %s failed: %v", p.ChildID, err)
		return models.OutcomeNotFound
	}
	ps.records[p.ChildID] = raw
	ps.indexAdd(p.ChildID)
	ps.dirty.Store(true)
	return models.OutcomeUpdated
}

func (ps *ProfileService) QRPayload(childID string) (*models.QRPayload, bool) {
	p, ok := ps.GetProfile(childID)
	if !ok {
		return nil, false
	}
	return models.BuildQRPayload(p), true
}

func (ps *ProfileService) ClearAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.records = make(map[string][]byte)
	ps.index = nil
	ps.indexSet = make(map[string]struct{})
	ps.dirty.Store(true)
}

func (ps *ProfileService) StorageHealth() models.StorageHealth {
	budget := ps.conf.Emergency.HealthLatencyBudget
	if budget <= 0 {
		budget = DefaultHealthLatencyBudget
	}

	start := time.Now()
	profiles := ps.GetAllProfiles()
	latency := time.Since(start)

	return models.StorageHealth{
		IsHealthy:    latency < budget,
		Latency:      latency,
		LatencyMs:    float64(latency.Microseconds()) / 1000,
		ProfileCount: len(profiles),
		KeyCount:     ps.KeyCount(),
	}
}

func (ps *ProfileService) ProfileCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.records)
}

// KeyCount is the number of storage keys the profile store owns:
// one per record plus the index key.
func (ps *ProfileService) KeyCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.records) + 1
}

func (ps *ProfileService) Dirty() bool {
	return ps.dirty.Load()
}

func (ps *ProfileService) MarkClean() {
	ps.dirty.Store(false)
}

// GetSnapshot deep-copies the store for persistence. A record that is
// not valid JSON would poison the whole snapshot marshal, so it is
// skipped with a warning, same as the read path treats it as missing.
func (ps *ProfileService) GetSnapshot() *models.Snapshot {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	snap := &models.Snapshot{
		Version:  models.SnapshotVersion,
		Profiles: make(map[string]json.RawMessage, len(ps.records)),
		Index:    make([]string, 0, len(ps.index)),
	}
	for childID, raw := range ps.records {
		if !json.Valid(raw) {
			ps.logger.Warnf(providers.TypeApp, "Skipping corrupt record %s in snapshot", childID)
			continue
		}
		cp := make([]byte, len(raw))
		copy(cp, raw)
		snap.Profiles[childID] = cp
	}
	for _, childID := range ps.index {
		if _, ok := snap.Profiles[childID]; ok {
			snap.Index = append(snap.Index, childID)
		}
	}
	return snap
}

// PutRecord stores a raw record as-is, maintaining the index. Used by
// the restore path; does not mark the store dirty.
func (ps *ProfileService) PutRecord(childID string, raw []byte) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.records[childID] = raw
	ps.indexAdd(childID)
}
