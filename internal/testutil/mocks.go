package testutil

import (
	"epd/internal/models"
	"epd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// HasLevel reports whether any recorded entry has the given level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// MockCipher implements interfaces.CipherInterface as identity, with
// injectable behavior for failure cases.
type MockCipher struct {
	SealFn func([]byte) ([]byte, error)
	OpenFn func([]byte) ([]byte, error)
}

func (m *MockCipher) Seal(plain []byte) ([]byte, error) {
	if m.SealFn != nil {
		return m.SealFn(plain)
	}
	out := make([]byte, len(plain))
	copy(out, plain)
	return out, nil
}

func (m *MockCipher) Open(sealed []byte) ([]byte, error) {
	if m.OpenFn != nil {
		return m.OpenFn(sealed)
	}
	out := make([]byte, len(sealed))
	copy(out, sealed)
	return out, nil
}

// MockMetrics implements providers.MetricsProviderInterface and records
// the values it was handed.
type MockMetrics struct {
	mu               sync.Mutex
	Requests         int
	CacheHits        int
	CacheMisses      int
	PersistDurations []time.Duration
	ProfilesTotal    int
	UsageEventsTotal int
	StorageProbes    []time.Duration
	RequestDurations int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestDurations++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistDurations = append(m.PersistDurations, d)
}

func (m *MockMetrics) SetProfilesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfilesTotal = count
}

func (m *MockMetrics) SetUsageEventsTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UsageEventsTotal = count
}

func (m *MockMetrics) SetStorageProbeDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageProbes = append(m.StorageProbes, d)
}

// MockUsageLog implements interfaces.UsageLogInterface in memory.
type MockUsageLog struct {
	mu       sync.Mutex
	Events   map[string]time.Time
	FlushErr error
	Flushes  int
	Restores int
	ClearCnt int
}

func NewMockUsageLog() *MockUsageLog {
	return &MockUsageLog{Events: make(map[string]time.Time)}
}

func (m *MockUsageLog) Record(childID, contactID string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[models.UsageKey(childID, contactID)] = at
}

func (m *MockUsageLog) Stats() models.UsageStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := models.UsageStats{TotalEmergencyCalls: len(m.Events)}
	for _, at := range m.Events {
		if stats.LastEmergencyCall == nil || at.After(*stats.LastEmergencyCall) {
			t := at
			stats.LastEmergencyCall = &t
		}
	}
	return stats
}

func (m *MockUsageLog) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

func (m *MockUsageLog) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = make(map[string]time.Time)
	m.ClearCnt++
}

func (m *MockUsageLog) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushes++
	return m.FlushErr
}

func (m *MockUsageLog) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restores++
	return nil
}

// MockScheduler implements interfaces.SchedulerInterface with injectable
// persist behavior.
type MockScheduler struct {
	mu         sync.Mutex
	PersistErr error
	Persists   int
	Inits      int
	Stops      int
	RestoreErr error
}

func (m *MockScheduler) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inits++
}

func (m *MockScheduler) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stops++
}

func (m *MockScheduler) Restore() error {
	return m.RestoreErr
}

func (m *MockScheduler) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
	return m.PersistErr
}
