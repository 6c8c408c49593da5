package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brgyhealth/bhc_api/internal/models"
	"github.com/brgyhealth/bhc_api/internal/service"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/pkg/portal"
)

const maxUploadBytes = 10 << 20 // 10MB

// RegistrationHandler drives registration sessions over HTTP.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// CreateSession starts a new registration session.
// POST /v1/registrations
func (h *RegistrationHandler) CreateSession(c *gin.Context) {
	sess, err := h.svc.CreateSession()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "SESSION_CREATE_FAILED", "Could not create a registration session")
		return
	}
	utils.Success(c, http.StatusCreated, "Registration session created", sess)
}

// GetSession returns the current session state.
// GET /v1/registrations/:id
func (h *RegistrationHandler) GetSession(c *gin.Context) {
	sess, err := h.svc.GetSession(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Session retrieved", sess)
}

// GetDocumentTypes lists the recognized declared ID types.
// GET /v1/document-types
func (h *RegistrationHandler) GetDocumentTypes(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Document types retrieved", models.DocumentTypes)
}

type documentTypeRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
}

// SetDocumentType declares the ID type to be scanned.
// PUT /v1/registrations/:id/document-type
func (h *RegistrationHandler) SetDocumentType(c *gin.Context) {
	var req documentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "document_type is required")
		return
	}

	sess, err := h.svc.SetDocumentType(c.Param("id"), models.DocumentType(req.DocumentType))
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Document type set", sess)
}

// AttachImage uploads and compresses one side of the document.
// POST /v1/registrations/:id/images/:side
func (h *RegistrationHandler) AttachImage(c *gin.Context) {
	side := service.ImageSide(c.Param("side"))
	if side != service.SideFront && side != service.SideBack {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "side must be front or back")
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxUploadBytes {
		utils.Error(c, http.StatusBadRequest, "INVALID_IMAGE", "image is empty or exceeds the 10MB limit")
		return
	}

	sess, err := h.svc.AttachImage(c.Param("id"), side, data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Image attached", sess)
}

// Scan submits the stored images to the OCR service.
// POST /v1/registrations/:id/scan
func (h *RegistrationHandler) Scan(c *gin.Context) {
	sess, err := h.svc.Scan(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Scan completed", sess)
}

// SkipScan moves to review with blank fields.
// POST /v1/registrations/:id/skip-scan
func (h *RegistrationHandler) SkipScan(c *gin.Context) {
	sess, err := h.svc.SkipScan(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Scanning skipped", sess)
}

type updateFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// UpdateFields applies manual edits to the form.
// PATCH /v1/registrations/:id/fields
func (h *RegistrationHandler) UpdateFields(c *gin.Context) {
	var req updateFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "fields object is required")
		return
	}

	sess, err := h.svc.UpdateFields(c.Param("id"), req.Fields)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Fields updated", sess)
}

type selectionRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SelectLevel commits a cascading address choice at one level.
// PUT /v1/registrations/:id/address/:level
func (h *RegistrationHandler) SelectLevel(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "code and name are expected")
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	var sess *models.RegistrationSession
	var err error
	switch c.Param("level") {
	case "region":
		sess, err = h.svc.SelectRegion(ctx, id, req.Code, req.Name)
	case "province":
		sess, err = h.svc.SelectProvince(ctx, id, req.Code, req.Name)
	case "city":
		sess, err = h.svc.SelectCity(ctx, id, req.Code, req.Name)
	case "barangay":
		sess, err = h.svc.SelectBarangay(id, req.Code, req.Name)
	default:
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "level must be region, province, city, or barangay")
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Selection applied", sess)
}

// Submit validates and posts the registration to the core backend.
// POST /v1/registrations/:id/submit
func (h *RegistrationHandler) Submit(c *gin.Context) {
	sess, err := h.svc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, utils.ErrValidation) {
			// Return the per-field flags so the client can mark inputs.
			if cur, gerr := h.svc.GetSession(c.Param("id")); gerr == nil {
				utils.ValidationError(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED",
					"Please complete the required fields", cur.Form.Errors)
				return
			}
		}
		h.writeError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Registration submitted", sess)
}

// writeError maps service errors onto the response envelope.
func (h *RegistrationHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrSessionNotFound):
		utils.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Registration session not found or expired")
	case errors.Is(err, utils.ErrNoDocumentType):
		utils.Error(c, http.StatusUnprocessableEntity, "NO_DOCUMENT_TYPE", "Select a document type before attaching an image")
	case errors.Is(err, utils.ErrInvalidDocumentType):
		utils.Error(c, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "Unknown document type")
	case errors.Is(err, utils.ErrNoFrontImage):
		utils.Error(c, http.StatusUnprocessableEntity, "NO_FRONT_IMAGE", "A front image is required before scanning")
	case errors.Is(err, utils.ErrInvalidState):
		utils.Error(c, http.StatusConflict, "INVALID_STATE", "The session is not in the right step for this action")
	case errors.Is(err, utils.ErrCompressionFailed):
		utils.Error(c, http.StatusBadRequest, "COMPRESSION_FAILED", "The image could not be processed")
	default:
		var apiErr *portal.APIError
		if errors.As(err, &apiErr) {
			utils.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", apiErr.Message)
			return
		}
		utils.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	}
}
