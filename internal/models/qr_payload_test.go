package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQRPayload_Projection(t *testing.T) {
	p := sampleProfile()
	payload := BuildQRPayload(p)

	assert.Equal(t, "Avery", payload.ChildName)
	assert.Equal(t, "2023-04-12", payload.DateOfBirth)
	assert.Equal(t, []string{"peanuts"}, payload.Allergies)
	require.NotNil(t, payload.PrimaryContact)
	assert.Equal(t, "Sam", payload.PrimaryContact.Name)
	assert.Equal(t, "+15551230001", payload.PrimaryContact.PhoneNumber)
	assert.Equal(t, "inhaler in the side pocket", payload.Notes)
}

func TestBuildQRPayload_NoContacts(t *testing.T) {
	p := sampleProfile()
	p.EmergencyContacts = nil
	assert.Nil(t, BuildQRPayload(p).PrimaryContact)
}

// The payload must stay privacy-minimized: no childId, no contact ids,
// no sync metadata.
func TestBuildQRPayload_OmitsIdentifiers(t *testing.T) {
	raw, err := json.Marshal(BuildQRPayload(sampleProfile()))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "childId")
	assert.NotContains(t, doc, "lastSyncedAt")
	assert.NotContains(t, doc, "id")
}

func TestBuildQRPayload_OmitsEmptyOptionals(t *testing.T) {
	p := sampleProfile()
	p.MedicalInfo.BloodType = nil
	p.MedicalInfo.HealthCardNumber = nil
	p.MedicalInfo.Province = nil

	raw, err := json.Marshal(BuildQRPayload(p))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc, "bloodType")
	assert.NotContains(t, doc, "healthCardNumber")
	assert.NotContains(t, doc, "province")
}
