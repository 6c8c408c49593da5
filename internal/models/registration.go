package models

import "time"

// RegistrationState names the steps of the registration flow.
type RegistrationState string

const (
	StateUpload     RegistrationState = "upload"
	StateScanning   RegistrationState = "scanning"
	StateReview     RegistrationState = "review"
	StateSubmitting RegistrationState = "submitting"
	StateDone       RegistrationState = "done"
)

// PersonalInfo holds the identity fields of the registration form.
type PersonalInfo struct {
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name"`
	LastName     string `json:"last_name"`
	Suffix       string `json:"suffix"`
	DateOfBirth  string `json:"date_of_birth"`
	Gender       string `json:"gender"`
	Contact      string `json:"contact_number"`
	Email        string `json:"email"`
	PhilHealthID string `json:"philhealth_id"`
}

// StreetAddress holds the detailed street-level address fields.
type StreetAddress struct {
	HouseNumber string `json:"house_number"`
	BlockNumber string `json:"block_number"`
	LotNumber   string `json:"lot_number"`
	StreetName  string `json:"street_name"`
	Subdivision string `json:"subdivision"`
	FullAddress string `json:"full_address"`
}

// Credentials holds the password pair. Never persisted.
type Credentials struct {
	Password        string `json:"-"`
	ConfirmPassword string `json:"-"`
}

// OCRMeta records what the last scan produced and which form fields were
// populated from it.
type OCRMeta struct {
	Fields       ExtractedFieldSet `json:"fields,omitempty"`
	Confidence   ConfidenceMap     `json:"confidence,omitempty"`
	RawFront     string            `json:"-"`
	DetectedType DocumentType      `json:"detected_type,omitempty"`
	AutoFilled   map[string]bool   `json:"auto_filled,omitempty"`
}

// RegistrationForm aggregates every editable cell of the registration flow
// in one place so cross-field invariants (clearing a region clears its
// province/city/barangay, error flags clear when the field is fixed) are
// enforced by single update functions instead of scattered callbacks.
type RegistrationForm struct {
	Personal PersonalInfo     `json:"personal"`
	Address  AddressSelection `json:"address"`
	Street   StreetAddress    `json:"street"`
	Creds    Credentials      `json:"-"`

	// Errors marks fields that failed validation. A flagged field is
	// re-validated on every subsequent change so the flag clears as soon
	// as the value is fixed.
	Errors map[string]bool `json:"errors"`
}

// NewRegistrationForm returns an empty form with an initialized error map.
func NewRegistrationForm() RegistrationForm {
	return RegistrationForm{Errors: make(map[string]bool)}
}

// RegistrationSession is one in-progress registration. Images survive a
// successful submission so "register another" does not force a re-upload;
// everything else resets.
type RegistrationSession struct {
	ID           string            `json:"id"`
	State        RegistrationState `json:"state"`
	DeclaredType DocumentType      `json:"declared_type,omitempty"`

	FrontImage []byte `json:"-"`
	BackImage  []byte `json:"-"`

	Form RegistrationForm `json:"form"`
	OCR  OCRMeta          `json:"ocr"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a copy safe to read outside the store lock. Maps that are
// mutated in place between scans (error flags, OCR bookkeeping) are
// duplicated; image bytes and option lists are only ever replaced wholesale,
// so sharing their backing storage is fine.
func (s *RegistrationSession) Clone() *RegistrationSession {
	c := *s
	c.Form.Errors = copyFlags(s.Form.Errors)
	c.OCR.AutoFilled = copyFlags(s.OCR.AutoFilled)
	if s.OCR.Fields != nil {
		fields := make(ExtractedFieldSet, len(s.OCR.Fields))
		for k, v := range s.OCR.Fields {
			fields[k] = v
		}
		c.OCR.Fields = fields
	}
	if s.OCR.Confidence != nil {
		conf := make(ConfidenceMap, len(s.OCR.Confidence))
		for k, v := range s.OCR.Confidence {
			conf[k] = v
		}
		c.OCR.Confidence = conf
	}
	return &c
}

func copyFlags(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	c := make(map[string]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
