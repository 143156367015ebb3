package models

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is a single person reachable with one tap during an
// emergency. LastContacted is only ever written by the usage-recording
// path, never by profile or contact updates.
type EmergencyContact struct {
	ID            string     `json:"id"`
	Name          string     `json:"name" validate:"required"`
	PhoneNumber   string     `json:"phoneNumber" validate:"required"`
	Relationship  string     `json:"relationship"`
	IsPrimary     bool       `json:"isPrimary"`
	LastContacted *time.Time `json:"lastContacted"`
}

type MedicalInfo struct {
	ID                   string    `json:"id"`
	Allergies            []string  `json:"allergies"`
	Medications          []string  `json:"medications"`
	MedicalConditions    []string  `json:"medicalConditions"`
	BloodType            *string   `json:"bloodType"`
	EmergencyMedicalInfo string    `json:"emergencyMedicalInfo"`
	HealthCardNumber     *string   `json:"healthCardNumber"`
	Province             *string   `json:"province"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

// EmergencyProfile is the per-child bundle of contacts and medical data.
// The JSON shape of this struct is the on-disk record format, so field
// names are load-bearing.
type EmergencyProfile struct {
	ChildID           string             `json:"childId" validate:"required"`
	ChildName         string             `json:"childName" validate:"required"`
	DateOfBirth       string             `json:"dateOfBirth" validate:"required"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
	MedicalInfo       MedicalInfo        `json:"medicalInfo"`
	LastSyncedAt      *time.Time         `json:"lastSyncedAt"`
}

// FindContact returns a pointer into the profile's contact slice, so the
// caller can mutate the matched contact in place.
func (p *EmergencyProfile) FindContact(contactID string) *EmergencyContact {
	for i := range p.EmergencyContacts {
		if p.EmergencyContacts[i].ID == contactID {
			return &p.EmergencyContacts[i]
		}
	}
	return nil
}

// PrimaryContact returns the contact flagged as primary, falling back to
// the first contact when nobody is flagged.
func (p *EmergencyProfile) PrimaryContact() *EmergencyContact {
	for i := range p.EmergencyContacts {
		if p.EmergencyContacts[i].IsPrimary {
			return &p.EmergencyContacts[i]
		}
	}
	if len(p.EmergencyContacts) > 0 {
		return &p.EmergencyContacts[0]
	}
	return nil
}

// NormalizeIDs fills in missing contact and medical-info identifiers.
// Clients are allowed to submit contacts without ids on first write.
func (p *EmergencyProfile) NormalizeIDs() {
	for i := range p.EmergencyContacts {
		if p.EmergencyContacts[i].ID == "" {
			p.EmergencyContacts[i].ID = uuid.NewString()
		}
	}
	if p.MedicalInfo.ID == "" {
		p.MedicalInfo.ID = uuid.NewString()
	}
}

// Touch stamps the profile as synced now.
func (p *EmergencyProfile) Touch(now time.Time) {
	t := now
	p.LastSyncedAt = &t
}
