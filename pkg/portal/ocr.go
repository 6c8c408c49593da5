package portal

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// ScanResponse is the structured result of a dual-side OCR submission.
type ScanResponse struct {
	Fields     map[string]string  `json:"fields"`
	Confidence map[string]float64 `json:"confidence"`
	RawFront   string             `json:"raw_front"`
}

// ScanDual submits front (required) and back (optional) document images plus
// the declared document type to the OCR endpoint.
func (c *Client) ScanDual(ctx context.Context, front, back []byte, idType string) (*ScanResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("front", "front.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(front); err != nil {
		return nil, err
	}

	if len(back) > 0 {
		part, err := writer.CreateFormFile("back", "back.jpg")
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(back); err != nil {
			return nil, err
		}
	}

	if idType != "" {
		if err := writer.WriteField("id_type", idType); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ocr-dual", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var result ScanResponse
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
