package services

import (
	"epd/internal/models"
	"epd/internal/structures"
	"epd/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *structures.Config {
	return &structures.Config{
		Emergency: structures.EmergencyConfig{
			HealthLatencyBudget: 100 * time.Millisecond,
			MaxContacts:         5,
		},
	}
}

func newTestService() (ProfileServiceInterface, *testutil.MockLogger) {
	logger := &testutil.MockLogger{}
	return NewProfileService(testConfig(), logger), logger
}

func testProfile(childID string) *models.EmergencyProfile {
	return &models.EmergencyProfile{
		ChildID:     childID,
		ChildName:   "Avery",
		DateOfBirth: "2023-04-12",
		EmergencyContacts: []models.EmergencyContact{
			{ID: "ct1", Name: "Sam", PhoneNumber: "+15551230001", IsPrimary: true},
			{ID: "ct2", Name: "Jo", PhoneNumber: "+15551230002"},
		},
		MedicalInfo: models.MedicalInfo{
			ID:        "mi1",
			Allergies: []string{"peanuts"},
		},
	}
}

func TestStoreProfile_RoundTrip(t *testing.T) {
	svc, _ := newTestService()
	before := time.Now()

	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ChildID)
	assert.Equal(t, "Avery", got.ChildName)
	assert.Equal(t, "2023-04-12", got.DateOfBirth)
	require.Len(t, got.EmergencyContacts, 2)
	assert.Equal(t, []string{"peanuts"}, got.MedicalInfo.Allergies)
	require.NotNil(t, got.LastSyncedAt)
	assert.False(t, got.LastSyncedAt.Before(before))
}

func TestStoreProfile_RequiresChildID(t *testing.T) {
	svc, _ := newTestService()
	assert.Error(t, svc.StoreProfile(&models.EmergencyProfile{ChildName: "x"}))
	assert.Error(t, svc.StoreProfile(nil))
}

func TestStoreProfile_MaxContacts(t *testing.T) {
	svc, _ := newTestService()
	p := testProfile("c1")
	for i := 0; i < 6; i++ {
		p.EmergencyContacts = append(p.EmergencyContacts, models.EmergencyContact{ID: "x", Name: "n", PhoneNumber: "p"})
	}
	assert.ErrorIs(t, svc.StoreProfile(p), ErrTooManyContacts)
}

func TestStoreProfile_IndexIdempotent(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	assert.Equal(t, 1, svc.ProfileCount())
	assert.Len(t, svc.GetAllProfiles(), 1)

	snap := svc.GetSnapshot()
	assert.Equal(t, []string{"c1"}, snap.Index)
}

func TestGetProfile_Missing(t *testing.T) {
	svc, _ := newTestService()
	_, ok := svc.GetProfile("nope")
	assert.False(t, ok)
}

func TestGetAllProfiles_PreservesWriteOrder(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	require.NoError(t, svc.StoreProfile(testProfile("c2")))
	require.NoError(t, svc.StoreProfile(testProfile("c3")))

	all := svc.GetAllProfiles()
	require.Len(t, all, 3)
	assert.Equal(t, "c1", all[0].ChildID)
	assert.Equal(t, "c3", all[2].ChildID)
}

func TestGetAllProfiles_SkipsCorruptRecord(t *testing.T) {
	svc, logger := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	require.NoError(t, svc.StoreProfile(testProfile("c2")))
	svc.PutRecord("broken", []byte("{not json"))

	all := svc.GetAllProfiles()
	require.Len(t, all, 2)
	assert.Equal(t, "c1", all[0].ChildID)
	assert.Equal(t, "c2", all[1].ChildID)
	assert.True(t, logger.HasLevel("warn"))

	_, ok := svc.GetProfile("broken")
	assert.False(t, ok)
}

func TestUpdateContacts_MissingProfileIsNoOp(t *testing.T) {
	svc, _ := newTestService()
	outcome, err := svc.UpdateContacts("ghost", []models.EmergencyContact{{ID: "ct1", Name: "Sam", PhoneNumber: "p"}})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNotFound, outcome)
	assert.Equal(t, 0, svc.ProfileCount())
}

func TestUpdateContacts_ReplacesList(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	outcome, err := svc.UpdateContacts("c1", []models.EmergencyContact{
		{ID: "ct9", Name: "Rae", PhoneNumber: "+15551239999", IsPrimary: true},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUpdated, outcome)

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	require.Len(t, got.EmergencyContacts, 1)
	assert.Equal(t, "Rae", got.EmergencyContacts[0].Name)
}

func TestUpdateContacts_PreservesLastContacted(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	outcome, _ := svc.RecordContactUsage("c1", "ct1")
	require.Equal(t, models.OutcomeUpdated, outcome)

	fake := time.Now().Add(24 * time.Hour)
	_, err := svc.UpdateContacts("c1", []models.EmergencyContact{
		{ID: "ct1", Name: "Sam", PhoneNumber: "+15551230001", LastContacted: &fake},
	})
	require.NoError(t, err)

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	require.NotNil(t, got.EmergencyContacts[0].LastContacted)
	// the client-sent future timestamp must be ignored in favor of the
	// recorded one
	assert.True(t, got.EmergencyContacts[0].LastContacted.Before(fake))
}

func TestUpdateMedicalInfo_MissingProfileIsNoOp(t *testing.T) {
	svc, _ := newTestService()
	outcome := svc.UpdateMedicalInfo("ghost", models.MedicalInfo{Allergies: []string{"dust"}})
	assert.Equal(t, models.OutcomeNotFound, outcome)
	assert.Equal(t, 0, svc.ProfileCount())
}

func TestUpdateMedicalInfo_SetsLastUpdated(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	before := time.Now()

	outcome := svc.UpdateMedicalInfo("c1", models.MedicalInfo{Allergies: []string{"dust"}})
	assert.Equal(t, models.OutcomeUpdated, outcome)

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	assert.Equal(t, []string{"dust"}, got.MedicalInfo.Allergies)
	assert.False(t, got.MedicalInfo.LastUpdated.Before(before))
	// medical id carries over when the client omits it
	assert.Equal(t, "mi1", got.MedicalInfo.ID)
}

func TestRecordContactUsage_SetsLastContacted(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	before := time.Now()

	outcome, at := svc.RecordContactUsage("c1", "ct1")
	require.Equal(t, models.OutcomeUpdated, outcome)
	assert.False(t, at.Before(before))

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	require.NotNil(t, got.EmergencyContacts[0].LastContacted)
	assert.True(t, got.EmergencyContacts[0].LastContacted.Equal(at))
	assert.Nil(t, got.EmergencyContacts[1].LastContacted)
}

func TestRecordContactUsage_UnknownContact(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	outcome, _ := svc.RecordContactUsage("c1", "ghost")
	assert.Equal(t, models.OutcomeNotFound, outcome)

	outcome, _ = svc.RecordContactUsage("ghost", "ct1")
	assert.Equal(t, models.OutcomeNotFound, outcome)
}

func TestQRPayload(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	payload, ok := svc.QRPayload("c1")
	require.True(t, ok)
	assert.Equal(t, "Avery", payload.ChildName)
	require.NotNil(t, payload.PrimaryContact)
	assert.Equal(t, "Sam", payload.PrimaryContact.Name)

	_, ok = svc.QRPayload("ghost")
	assert.False(t, ok)
}

func TestClearAll_Idempotent(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	require.NoError(t, svc.StoreProfile(testProfile("c2")))

	svc.ClearAll()
	assert.Empty(t, svc.GetAllProfiles())

	svc.ClearAll()
	assert.Empty(t, svc.GetAllProfiles())
	assert.Equal(t, 0, svc.ProfileCount())
}

func TestClearAll_ThenStoreReindexes(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	svc.ClearAll()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	snap := svc.GetSnapshot()
	assert.Equal(t, []string{"c1"}, snap.Index)
}

func TestDirtyFlag(t *testing.T) {
	svc, _ := newTestService()
	assert.False(t, svc.Dirty())

	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	assert.True(t, svc.Dirty())

	svc.MarkClean()
	assert.False(t, svc.Dirty())

	svc.ClearAll()
	assert.True(t, svc.Dirty())
}

func TestStorageHealth(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	health := svc.StorageHealth()
	assert.True(t, health.IsHealthy)
	assert.Equal(t, 1, health.ProfileCount)
	// one record plus the index key
	assert.Equal(t, 2, health.KeyCount)
	assert.GreaterOrEqual(t, health.LatencyMs, 0.0)
}

func TestGetSnapshot_IsACopy(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))

	snap := svc.GetSnapshot()
	require.Len(t, snap.Profiles, 1)
	snap.Profiles["c1"] = json.RawMessage("{}")
	snap.Index[0] = "mutated"

	got, ok := svc.GetProfile("c1")
	require.True(t, ok)
	assert.Equal(t, "Avery", got.ChildName)
	assert.Equal(t, []string{"c1"}, svc.GetSnapshot().Index)
}

func TestGetSnapshot_SkipsCorruptRecord(t *testing.T) {
	svc, logger := newTestService()
	require.NoError(t, svc.StoreProfile(testProfile("c1")))
	svc.PutRecord("broken", []byte("{not json"))
	require.NoError(t, svc.StoreProfile(testProfile("c2")))

	snap := svc.GetSnapshot()
	assert.Equal(t, []string{"c1", "c2"}, snap.Index)
	assert.NotContains(t, snap.Profiles, "broken")
	assert.True(t, logger.HasLevel("warn"))

	// the snapshot must stay marshalable despite the corrupt record
	_, err := json.Marshal(snap)
	assert.NoError(t, err)
}

func TestPutRecord_Reindexes(t *testing.T) {
	svc, _ := newTestService()
	raw, err := json.Marshal(testProfile("c7"))
	require.NoError(t, err)

	svc.PutRecord("c7", raw)
	svc.PutRecord("c7", raw)

	assert.Equal(t, []string{"c7"}, svc.GetSnapshot().Index)
	got, ok := svc.GetProfile("c7")
	require.True(t, ok)
	assert.Equal(t, "c7", got.ChildID)
	// restore path must not mark the store dirty
	assert.False(t, svc.Dirty())
}
