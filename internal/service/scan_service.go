package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

// docTypeKeywords maps raw-text keyword substrings to document types, in
// scan order. Independent of the user-declared type; informational only.
var docTypeKeywords = []struct {
	keyword string
	docType models.DocumentType
}{
	{"DRIVER", models.DocTypeDriversLicense},
	{"PHILHEALTH", models.DocTypePhilHealth},
	{"PHILSYS", models.DocTypeNationalID},
	{"PAMBANSANG PAGKAKAKILANLAN", models.DocTypeNationalID},
	{"UMID", models.DocTypeUMID},
	{"SOCIAL SECURITY", models.DocTypeUMID},
	{"GSIS", models.DocTypeUMID},
	{"POSTAL", models.DocTypePostalID},
	{"VOTER", models.DocTypeVotersID},
	{"COMMISSION ON ELECTIONS", models.DocTypeVotersID},
	{"PROFESSIONAL REGULATION", models.DocTypePRCID},
	{"TAXPAYER", models.DocTypeTINID},
	{"TIN", models.DocTypeTINID},
}

// ScanService submits document images to the OCR endpoint and shapes the
// response into a ScanResult.
type ScanService struct {
	portal *portal.Client
}

// NewScanService creates a new ScanService.
func NewScanService(portalClient *portal.Client) *ScanService {
	return &ScanService{portal: portalClient}
}

// Scan submits the front (and optional back) image with the declared type
// and returns the structured result. When the response carries raw text but
// no structured name fields, the heuristic raw-text parser fills them in.
func (s *ScanService) Scan(ctx context.Context, front, back []byte, declaredType models.DocumentType) (*models.ScanResult, error) {
	resp, err := s.portal.ScanDual(ctx, front, back, string(declaredType))
	if err != nil {
		return nil, err
	}

	result := &models.ScanResult{
		Fields:       models.ExtractedFieldSet(resp.Fields),
		Confidence:   models.ConfidenceMap(resp.Confidence),
		RawFront:     resp.RawFront,
		DetectedType: DetectDocumentType(resp.RawFront),
	}
	if result.Fields == nil {
		result.Fields = models.ExtractedFieldSet{}
	}
	if result.Confidence == nil {
		result.Confidence = models.ConfidenceMap{}
	}

	// Fall back to raw-text parsing when the service gave us text but no
	// structured names.
	if result.RawFront != "" && result.Fields[models.FieldFirstName] == "" && result.Fields[models.FieldLastName] == "" {
		ParseRawText(result.RawFront, result.Fields)
	}
	return result, nil
}

// DetectDocumentType guesses the document type from keyword substrings in
// the raw recognized front text. Returns "" when nothing matches.
func DetectDocumentType(rawText string) models.DocumentType {
	up := strings.ToUpper(rawText)
	for _, k := range docTypeKeywords {
		if strings.Contains(up, k.keyword) {
			return k.docType
		}
	}
	return ""
}

var (
	dlHeaderPattern = regexp.MustCompile(`(?i)Last Name[.,\s]+First Name[.,\s]+Middle Name`)
	surnameLabel    = regexp.MustCompile(`(?i)(?:Surname|Last Name)\s*[:\-]?\s*([A-Za-z\s]+)`)
	givenNameLabel  = regexp.MustCompile(`(?i)(?:Given Name|First Name)\s*[:\-]?\s*([A-Za-z\s]+)`)
	middleNameLabel = regexp.MustCompile(`(?i)(?:Middle Name)\s*[:\-]?\s*([A-Za-z\s]+)`)
	fullNameLabel   = regexp.MustCompile(`(?i)(?:Full Name|Name)\s*[:\-]?\s*([A-Za-z\s,.]+)`)
	datePattern     = regexp.MustCompile(`\b(\d{4})[/\-.](\d{2})[/\-.](\d{2})\b|\b(\d{2})[/\-.](\d{2})[/\-.](\d{4})\b`)
	sexLabel        = regexp.MustCompile(`(?i)Sex|Gender`)
	maleToken       = regexp.MustCompile(`\bM\b|\bMALE\b`)
	femaleToken     = regexp.MustCompile(`\bF\b|\bFEMALE\b`)
	nonNameChars    = regexp.MustCompile(`[^A-Za-z\s,.\-]`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

// ParseRawText extracts name, birth date, and gender from raw recognized ID
// text into fields. Handles the driver's-license "Last Name, First Name
// Middle Name" header layout first, then generic labeled lines. Only fills
// fields it finds; existing entries are not overwritten.
func ParseRawText(text string, fields models.ExtractedFieldSet) {
	if text == "" {
		return
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}

	if !parseDLHeader(lines, fields) {
		parseLabeledNames(lines, fields)
	}

	if fields[models.FieldDOB] == "" {
		if m := datePattern.FindStringSubmatch(text); m != nil {
			if m[1] != "" {
				fields[models.FieldDOB] = m[1] + "-" + m[2] + "-" + m[3]
			} else {
				fields[models.FieldDOB] = m[6] + "-" + m[4] + "-" + m[5]
			}
		}
	}

	if fields[models.FieldGender] == "" {
		parseSex(lines, fields)
	}
}

// parseDLHeader handles the driver's-license layout where a header line
// names the column order and the following line holds "LAST, FIRST MIDDLE".
func parseDLHeader(lines []string, fields models.ExtractedFieldSet) bool {
	for i, line := range lines {
		if !dlHeaderPattern.MatchString(line) || i+1 >= len(lines) {
			continue
		}
		parts := strings.SplitN(lines[i+1], ",", 2)
		if len(parts) < 2 {
			return false
		}
		last := strings.TrimSpace(parts[0])
		rest := strings.TrimSpace(parts[1])

		first, middle := rest, ""
		if tokens := strings.Fields(rest); len(tokens) > 1 {
			middle = tokens[len(tokens)-1]
			first = strings.Join(tokens[:len(tokens)-1], " ")
		}

		fields[models.FieldLastName] = last
		fields[models.FieldFirstName] = first
		fields[models.FieldMiddleName] = middle
		return true
	}
	return false
}

// parseLabeledNames handles generic "Surname: X" / "Given Name: Y" layouts,
// falling back to splitting a single full-name line.
func parseLabeledNames(lines []string, fields models.ExtractedFieldSet) {
	last := extractAfterLabel(lines, surnameLabel)
	first := extractAfterLabel(lines, givenNameLabel)
	middle := extractAfterLabel(lines, middleNameLabel)

	if first == "" || last == "" {
		if full := extractAfterLabel(lines, fullNameLabel); full != "" {
			f, m, l := splitFullName(full)
			if l != "" {
				fields[models.FieldLastName] = l
			}
			if f != "" {
				fields[models.FieldFirstName] = f
			}
			if m != "" {
				fields[models.FieldMiddleName] = m
			}
			return
		}
	}
	if last != "" {
		fields[models.FieldLastName] = last
	}
	if first != "" {
		fields[models.FieldFirstName] = first
	}
	if middle != "" {
		fields[models.FieldMiddleName] = middle
	}
}

func parseSex(lines []string, fields models.ExtractedFieldSet) {
	for i, line := range lines {
		if !sexLabel.MatchString(line) {
			continue
		}
		ctxLine := strings.ToUpper(line)
		if i+1 < len(lines) {
			ctxLine += " " + strings.ToUpper(lines[i+1])
		}
		if maleToken.MatchString(ctxLine) {
			fields[models.FieldGender] = "Male"
		} else if femaleToken.MatchString(ctxLine) {
			fields[models.FieldGender] = "Female"
		}
		return
	}
}

// extractAfterLabel returns the cleaned capture of the first line matching
// the pattern, or the cleaned next line when the capture is empty.
func extractAfterLabel(lines []string, pattern *regexp.Regexp) string {
	for i, line := range lines {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			if v := cleanName(m[1]); v != "" {
				return v
			}
		}
		if i+1 < len(lines) {
			if v := cleanName(lines[i+1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// cleanName strips non-name characters and collapses whitespace.
func cleanName(s string) string {
	s = nonNameChars.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// splitFullName splits a free-form name into first/middle/last. A comma
// means "LAST, FIRST MIDDLE"; otherwise the last token is the surname.
func splitFullName(full string) (first, middle, last string) {
	s := cleanName(full)
	if s == "" {
		return "", "", ""
	}
	if strings.Contains(s, ",") {
		parts := strings.SplitN(s, ",", 2)
		last = strings.TrimSpace(parts[0])
		rest := strings.Fields(strings.TrimSpace(parts[1]))
		if len(rest) > 1 {
			middle = rest[len(rest)-1]
			first = strings.Join(rest[:len(rest)-1], " ")
		} else if len(rest) == 1 {
			first = rest[0]
		}
		return first, middle, last
	}

	tokens := strings.Fields(s)
	switch {
	case len(tokens) >= 3:
		first = tokens[0]
		middle = strings.Join(tokens[1:len(tokens)-1], " ")
		last = tokens[len(tokens)-1]
	case len(tokens) == 2:
		first, last = tokens[0], tokens[1]
	default:
		first = s
	}
	return first, middle, last
}
