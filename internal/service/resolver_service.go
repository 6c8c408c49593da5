package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/models"
)

// zipOverrides maps a normalized city name to per-barangay postal-code
// overrides. A city's reference zip applies as a blanket value; a barangay
// listed here takes precedence. Caloocan's northern barangays carry their
// own postal codes distinct from the city's 1400.
var zipOverrides = map[string]map[string]string{
	"CALOOCAN": {
		"174":     "1421",
		"175":     "1422",
		"176":     "1425",
		"CAMARIN": "1422",
	},
}

// ResolverService maps place names onto canonical PSGC codes and mirrors
// user-driven dropdown selections through the hierarchy. All fetches are
// sequenced parent-before-child; a failed fetch logs and leaves the
// downstream level empty rather than surfacing an error.
type ResolverService struct {
	directory GeoDirectory
}

// NewResolverService creates a new ResolverService.
func NewResolverService(directory GeoDirectory) *ResolverService {
	return &ResolverService{directory: directory}
}

// Regions returns the top-level region options.
func (s *ResolverService) Regions(ctx context.Context) ([]models.GeoOption, error) {
	return s.directory.Regions(ctx)
}

// Provinces returns province options under a region.
func (s *ResolverService) Provinces(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return s.directory.Provinces(ctx, regionCode)
}

// CitiesByRegion returns city options directly under a region (NCR path).
func (s *ResolverService) CitiesByRegion(ctx context.Context, regionCode string) ([]models.GeoOption, error) {
	return s.directory.CitiesByRegion(ctx, regionCode)
}

// CitiesByProvince returns city options under a province.
func (s *ResolverService) CitiesByProvince(ctx context.Context, provinceCode string) ([]models.GeoOption, error) {
	return s.directory.CitiesByProvince(ctx, provinceCode)
}

// Barangays returns barangay options under a city.
func (s *ResolverService) Barangays(ctx context.Context, cityCode string) ([]models.GeoOption, error) {
	return s.directory.Barangays(ctx, cityCode)
}

// SelectRegion commits a region choice. Province, city, and barangay state
// is always cleared; NCR routes the next fetch to cities-by-region since it
// has no province level.
func (s *ResolverService) SelectRegion(ctx context.Context, addr *models.AddressSelection, code, name string) {
	addr.RegionCode = code
	addr.RegionName = name

	addr.ProvinceCode = ""
	addr.Province = ""
	addr.CityCode = ""
	addr.City = ""
	addr.BarangayCode = ""
	addr.Barangay = ""
	addr.ZipCode = ""
	addr.Provinces = nil
	addr.Cities = nil
	addr.Barangays = nil

	if code == "" {
		return
	}

	if models.IsNCR(code) {
		cities, err := s.directory.CitiesByRegion(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("region", code).Msg("city fetch failed")
			return
		}
		addr.Cities = cities
		return
	}

	provinces, err := s.directory.Provinces(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("region", code).Msg("province fetch failed")
		return
	}
	addr.Provinces = provinces
}

// SelectProvince commits a province choice and fetches its cities.
func (s *ResolverService) SelectProvince(ctx context.Context, addr *models.AddressSelection, code, name string) {
	addr.ProvinceCode = code
	addr.Province = name

	addr.CityCode = ""
	addr.City = ""
	addr.BarangayCode = ""
	addr.Barangay = ""
	addr.ZipCode = ""
	addr.Cities = nil
	addr.Barangays = nil

	if code == "" {
		return
	}

	cities, err := s.directory.CitiesByProvince(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("province", code).Msg("city fetch failed")
		return
	}
	addr.Cities = cities
}

// SelectCity commits a city choice, adopts the city's reference postal code
// when present, and fetches its barangays.
func (s *ResolverService) SelectCity(ctx context.Context, addr *models.AddressSelection, code, name string) {
	addr.CityCode = code
	addr.City = name

	addr.BarangayCode = ""
	addr.Barangay = ""
	addr.Barangays = nil

	if code == "" {
		return
	}

	for _, c := range addr.Cities {
		if c.Code == code && c.ZipCode != "" {
			addr.ZipCode = c.ZipCode
			break
		}
	}

	barangays, err := s.directory.Barangays(ctx, code)
	if err != nil {
		log.Warn().Err(err).Str("city", code).Msg("barangay fetch failed")
		return
	}
	addr.Barangays = barangays
}

// SelectBarangay commits a barangay choice, the terminal level. A known
// jurisdiction override replaces the city's blanket postal code.
func (s *ResolverService) SelectBarangay(addr *models.AddressSelection, code, name string) {
	addr.BarangayCode = code
	addr.Barangay = name

	if zip := overrideZip(addr.City, name); zip != "" {
		addr.ZipCode = zip
	}
}

// overrideZip returns a barangay-specific postal code, or "" when the city's
// blanket value stands.
func overrideZip(city, barangay string) string {
	byBarangay, ok := zipOverrides[NormalizeCityName(city)]
	if !ok {
		return ""
	}
	return byBarangay[NormalizeBarangayName(barangay)]
}

// ResolveFromScan maps the extracted region/province/city/barangay strings
// onto reference codes. Matching policy, in order: NCR marker check, province
// fuzzy match over the full list with the region derived from the province
// code prefix, then a bare-city probe against the NCR city list, then city
// and barangay matches down the hierarchy. Any level that fails to match
// keeps the raw extracted string as its display value with no resolved code.
func (s *ResolverService) ResolveFromScan(ctx context.Context, addr *models.AddressSelection, fields models.ExtractedFieldSet) {
	regionText := fields[models.FieldRegionName]
	provinceText := fields[models.FieldProvince]
	cityText := fields[models.FieldCity]
	barangayText := fields[models.FieldBarangay]

	// 1. Capital-region marker forces the NCR path.
	if IsNCRMarker(cityText) || IsNCRMarker(regionText) {
		s.resolveNCR(ctx, addr, cityText, barangayText)
		return
	}

	// 2. Search the full province list without knowing the region.
	if provinceText != "" {
		provinces, err := s.directory.AllProvinces(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("province list fetch failed")
			s.keepRawStrings(addr, regionText, provinceText, cityText, barangayText)
			return
		}
		if match := MatchProvince(provinces, provinceText); match != nil {
			// 3. Region comes from the province code's structural prefix.
			addr.RegionCode = models.RegionCodeForProvince(match.Code)
			addr.RegionName = s.regionName(ctx, addr.RegionCode, regionText)
			addr.ProvinceCode = match.Code
			addr.Province = match.Name

			cities, err := s.directory.CitiesByProvince(ctx, match.Code)
			if err != nil {
				log.Warn().Err(err).Str("province", match.Code).Msg("city fetch failed")
				addr.City = cityText
				addr.Barangay = barangayText
				return
			}
			addr.Cities = cities
			s.resolveCityAndBarangay(ctx, addr, cityText, barangayText)
			return
		}
	}

	// 4. No province match. A bare city name may still be a capital-region
	// city ("Caloocan" arrives without region or province text); try the
	// NCR city list before giving up.
	if cityText != "" {
		if cities, err := s.directory.CitiesByRegion(ctx, models.RegionCodeNCR); err == nil {
			if MatchCity(cities, cityText) != nil {
				addr.Cities = cities
				addr.RegionCode = models.RegionCodeNCR
				addr.RegionName = s.regionName(ctx, models.RegionCodeNCR, "National Capital Region")
				addr.ProvinceCode = ""
				addr.Province = ""
				s.resolveCityAndBarangay(ctx, addr, cityText, barangayText)
				return
			}
		} else {
			log.Warn().Err(err).Msg("ncr city fetch failed")
		}
	}

	// 5. Nothing matched; keep the raw strings as display values.
	s.keepRawStrings(addr, regionText, provinceText, cityText, barangayText)
}

// resolveNCR force-selects the capital region and matches the city directly
// under it.
func (s *ResolverService) resolveNCR(ctx context.Context, addr *models.AddressSelection, cityText, barangayText string) {
	addr.RegionCode = models.RegionCodeNCR
	addr.RegionName = s.regionName(ctx, models.RegionCodeNCR, "National Capital Region")
	addr.ProvinceCode = ""
	addr.Province = ""

	cities, err := s.directory.CitiesByRegion(ctx, models.RegionCodeNCR)
	if err != nil {
		log.Warn().Err(err).Msg("ncr city fetch failed")
		addr.City = cityText
		addr.Barangay = barangayText
		return
	}
	addr.Cities = cities
	s.resolveCityAndBarangay(ctx, addr, cityText, barangayText)
}

// resolveCityAndBarangay matches the extracted city against addr.Cities,
// then the barangay against the matched city's barangays.
func (s *ResolverService) resolveCityAndBarangay(ctx context.Context, addr *models.AddressSelection, cityText, barangayText string) {
	cityMatch := MatchCity(addr.Cities, cityText)
	if cityMatch == nil {
		addr.City = cityText
		addr.Barangay = barangayText
		return
	}
	s.SelectCity(ctx, addr, cityMatch.Code, cityMatch.Name)

	if barangayText == "" {
		return
	}
	if match := MatchBarangay(addr.Barangays, barangayText); match != nil {
		s.SelectBarangay(addr, match.Code, match.Name)
	} else {
		addr.Barangay = barangayText
	}
}

// regionName looks up the display name for a region code, falling back to
// the provided raw text when the lookup fails.
func (s *ResolverService) regionName(ctx context.Context, code, fallback string) string {
	regions, err := s.directory.Regions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("region list fetch failed")
		return fallback
	}
	for _, r := range regions {
		if r.Code == code {
			return r.Name
		}
	}
	return fallback
}

func (s *ResolverService) keepRawStrings(addr *models.AddressSelection, region, province, city, barangay string) {
	if addr.RegionName == "" {
		addr.RegionName = region
	}
	if addr.Province == "" {
		addr.Province = province
	}
	if addr.City == "" {
		addr.City = city
	}
	if addr.Barangay == "" {
		addr.Barangay = barangay
	}
}
