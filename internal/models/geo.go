package models

// PSGC structural constants. Codes are ten digits: two region digits, three
// province digits, two municipal digits, three barangay digits.
const (
	// RegionCodeNCR is the National Capital Region. NCR has no province
	// level; cities hang directly off the region.
	RegionCodeNCR = "1300000000"
)

// GeoOption is a single node of the PSGC hierarchy as returned by the
// reference service: an opaque code plus a display name. ZipCode is present
// only at the city/municipality level.
type GeoOption struct {
	Code    string `json:"code" db:"code"`
	Name    string `json:"name" db:"name"`
	ZipCode string `json:"zip_code,omitempty" db:"zip_code"`
}

// AddressSelection is the live cascading address state of a registration
// session. The denormalized name fields always mirror the GeoOption.Name of
// the selected code at that level; clearing an upstream level clears
// everything downstream of it.
type AddressSelection struct {
	RegionCode   string `json:"region_code"`
	ProvinceCode string `json:"province_code"`
	CityCode     string `json:"city_code"`
	BarangayCode string `json:"barangay_code"`

	// Display values submitted with the registration payload. These may hold
	// a raw OCR string when no reference match was found.
	RegionName string `json:"region_name"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Barangay   string `json:"barangay"`
	ZipCode    string `json:"zip_code"`

	// Option lists for the currently selected path only.
	Provinces []GeoOption `json:"provinces"`
	Cities    []GeoOption `json:"cities"`
	Barangays []GeoOption `json:"barangays"`
}

// RegionCodeForProvince derives the parent region code from a province
// code's structural prefix.
func RegionCodeForProvince(provinceCode string) string {
	if len(provinceCode) < 2 {
		return ""
	}
	return provinceCode[:2] + "00000000"
}

// IsNCR reports whether the given region code is the National Capital Region.
func IsNCR(regionCode string) bool {
	return regionCode == RegionCodeNCR
}
