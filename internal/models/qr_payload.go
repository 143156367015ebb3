package models

// QRContact is the contact projection embedded in a QR payload.
type QRContact struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phoneNumber"`
	Relationship string `json:"relationship,omitempty"`
}

// QRPayload is the privacy-minimized projection of a profile meant for
// encoding into a QR code: only what a first responder needs, nothing
// that identifies the household beyond the child.
type QRPayload struct {
	ChildName         string     `json:"childName"`
	DateOfBirth       string     `json:"dateOfBirth"`
	BloodType         *string    `json:"bloodType,omitempty"`
	Allergies         []string   `json:"allergies,omitempty"`
	Medications       []string   `json:"medications,omitempty"`
	MedicalConditions []string   `json:"medicalConditions,omitempty"`
	PrimaryContact    *QRContact `json:"primaryContact,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	HealthCardNumber  *string    `json:"healthCardNumber,omitempty"`
	Province          *string    `json:"province,omitempty"`
}

// BuildQRPayload projects a profile into its QR form.
func BuildQRPayload(p *EmergencyProfile) *QRPayload {
	payload := &QRPayload{
		ChildName:         p.ChildName,
		DateOfBirth:       p.DateOfBirth,
		BloodType:         p.MedicalInfo.BloodType,
		Allergies:         p.MedicalInfo.Allergies,
		Medications:       p.MedicalInfo.Medications,
		MedicalConditions: p.MedicalInfo.MedicalConditions,
		Notes:             p.MedicalInfo.EmergencyMedicalInfo,
		HealthCardNumber:  p.MedicalInfo.HealthCardNumber,
		Province:          p.MedicalInfo.Province,
	}
	if c := p.PrimaryContact(); c != nil {
		payload.PrimaryContact = &QRContact{
			Name:         c.Name,
			PhoneNumber:  c.PhoneNumber,
			Relationship: c.Relationship,
		}
	}
	return payload
}
