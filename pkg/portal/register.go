package portal

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// RegisterForm is the multipart payload of /api/register. All values are
// sent as form fields; empty optional values are included as empty strings,
// matching what the web client sends.
type RegisterForm struct {
	FirstName    string
	MiddleName   string
	LastName     string
	Suffix       string
	DateOfBirth  string
	Gender       string
	Contact      string
	Email        string
	PhilHealthID string

	Region   string
	Province string
	City     string
	Barangay string

	HouseNumber string
	BlockNumber string
	LotNumber   string
	StreetName  string
	Subdivision string
	ZipCode     string
	FullAddress string

	Password string
}

// Register submits a completed registration to the backend.
func (c *Client) Register(ctx context.Context, form RegisterForm) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"first_name":     form.FirstName,
		"middle_name":    form.MiddleName,
		"last_name":      form.LastName,
		"suffix":         form.Suffix,
		"date_of_birth":  form.DateOfBirth,
		"gender":         form.Gender,
		"contact_number": form.Contact,
		"email":          form.Email,
		"philhealth_id":  form.PhilHealthID,
		"region":         form.Region,
		"province":       form.Province,
		"city":           form.City,
		"barangay":       form.Barangay,
		"house_number":   form.HouseNumber,
		"block_number":   form.BlockNumber,
		"lot_number":     form.LotNumber,
		"street_name":    form.StreetName,
		"subdivision":    form.Subdivision,
		"zip_code":       form.ZipCode,
		"full_address":   form.FullAddress,
		"password":       form.Password,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/register", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return decodeResponse(resp, nil)
}
