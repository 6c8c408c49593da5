package models

// DocumentType is a declared identity document type accepted at registration.
type DocumentType string

const (
	DocTypeDriversLicense DocumentType = "Driver's License"
	DocTypePhilHealth     DocumentType = "PhilHealth ID"
	DocTypeNationalID     DocumentType = "National ID (PhilSys)"
	DocTypeUMID           DocumentType = "UMID/SSS/GSIS"
	DocTypePostalID       DocumentType = "Postal ID"
	DocTypeVotersID       DocumentType = "Voter's ID"
	DocTypePRCID          DocumentType = "PRC ID"
	DocTypeTINID          DocumentType = "TIN ID"
)

// DocumentTypes is the fixed set exposed to the document-type selector.
var DocumentTypes = []DocumentType{
	DocTypeDriversLicense,
	DocTypePhilHealth,
	DocTypeNationalID,
	DocTypeUMID,
	DocTypePostalID,
	DocTypeVotersID,
	DocTypePRCID,
	DocTypeTINID,
}

// Valid reports whether d is one of the recognized declared types.
func (d DocumentType) Valid() bool {
	for _, t := range DocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// Field names produced by the OCR service. The same names key both the
// extracted values and their confidence scores.
const (
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldMiddleName   = "middle_name"
	FieldSuffix       = "suffix"
	FieldDOB          = "dob"
	FieldGender       = "gender"
	FieldPhone        = "phone"
	FieldEmail        = "email"
	FieldPhilHealthID = "philhealth_id"
	FieldHouseNumber  = "house_number"
	FieldBlockNumber  = "block_number"
	FieldLotNumber    = "lot_number"
	FieldStreetName   = "street_name"
	FieldSubdivision  = "subdivision"
	FieldZipCode      = "zip_code"
	FieldFullAddress  = "full_address"
	FieldCity         = "city"
	FieldProvince     = "province"
	FieldBarangay     = "barangay"
	FieldRegionName   = "region_name"
)

// ExtractedFieldSet maps OCR field names to extracted string values.
// Produced once per successful scan and replaced wholesale by a rescan.
type ExtractedFieldSet map[string]string

// ConfidenceMap maps OCR field names to confidence scores. A zero or absent
// score means the field was not auto-filled; any positive score drives the
// "Auto" badge. Confidence never gates whether a value is accepted.
type ConfidenceMap map[string]float64

// ScanResult is the structured outcome of one OCR submission.
type ScanResult struct {
	Fields     ExtractedFieldSet `json:"fields"`
	Confidence ConfidenceMap     `json:"confidence"`
	RawFront   string            `json:"raw_front"`

	// DetectedType is the keyword-based guess derived from RawFront. It is
	// informational only and independent of the user-declared type.
	DetectedType DocumentType `json:"detected_type,omitempty"`
}
