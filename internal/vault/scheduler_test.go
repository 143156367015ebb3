package vault

import (
	"epd/internal/testutil"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*Scheduler, *testutil.MockUsageLog, *testutil.MockMetrics) {
	t.Helper()
	conf := vaultConfig(t.TempDir())
	svc := newService()
	fm := NewFileManager(&testutil.MockCompressor{}, &testutil.MockCipher{}, svc, &testutil.MockLogger{})
	usage := testutil.NewMockUsageLog()
	metrics := &testutil.MockMetrics{}
	s := NewScheduler(conf, &testutil.MockLogger{}, svc, fm, usage, metrics).(*Scheduler)
	return s, usage, metrics
}

func TestScheduler_PersistWritesFileAndMarksClean(t *testing.T) {
	s, usage, metrics := newTestScheduler(t)
	storedProfile(t, s.service, "c1")
	require.True(t, s.service.Dirty())

	require.NoError(t, s.Persist())

	_, err := os.Stat(ProfilesPath(s.config))
	assert.NoError(t, err)
	assert.False(t, s.service.Dirty())
	assert.Equal(t, 1, usage.Flushes)
	assert.Len(t, metrics.PersistDurations, 1)
}

func TestScheduler_PersistSurfacesFlushError(t *testing.T) {
	s, usage, _ := newTestScheduler(t)
	usage.FlushErr = errors.New("disk full")

	err := s.Persist()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestScheduler_RestoreRoundTrip(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	storedProfile(t, s.service, "c1")
	require.NoError(t, s.Persist())

	conf := s.config
	svc2 := newService()
	fm2 := NewFileManager(&testutil.MockCompressor{}, &testutil.MockCipher{}, svc2, &testutil.MockLogger{})
	usage2 := testutil.NewMockUsageLog()
	s2 := NewScheduler(conf, &testutil.MockLogger{}, svc2, fm2, usage2, &testutil.MockMetrics{}).(*Scheduler)

	require.NoError(t, s2.Restore())
	got, ok := svc2.GetProfile("c1")
	require.True(t, ok)
	assert.Equal(t, "Avery", got.ChildName)
	assert.Equal(t, 1, usage2.Restores)
}

func TestScheduler_RestoreMissingFiles(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	assert.NoError(t, s.Restore())
}

func TestScheduler_ProbeFeedsMetrics(t *testing.T) {
	s, usage, metrics := newTestScheduler(t)
	storedProfile(t, s.service, "c1")
	usage.Record("c1", "ct1", s.service.GetAllProfiles()[0].LastSyncedAt.UTC())

	s.probe()

	assert.Len(t, metrics.StorageProbes, 1)
	assert.Equal(t, 1, metrics.ProfilesTotal)
	assert.Equal(t, 1, metrics.UsageEventsTotal)
}

func TestScheduler_InitStop(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Init()
	s.Stop()
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Stop()
}
