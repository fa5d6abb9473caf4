package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/application"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/pkg/response"
	"github.com/mentorcircle/mentorcircle-api/pkg/validation"
)

type IntakeHandler struct {
	Svc    *application.IntakeService
	Logger *logrus.Logger
}

func NewIntakeHandler(svc *application.IntakeService, logger *logrus.Logger) *IntakeHandler {
	return &IntakeHandler{Svc: svc, Logger: logger}
}

// submitApplicationRequest accepts either the form shape (answers) or the
// structured API shape; answers win when both are present.
type submitApplicationRequest struct {
	Answers []application.FormAnswer `json:"answers"`

	Email             string   `json:"email"`
	FullName          string   `json:"full_name"`
	Institution       string   `json:"institution"`
	GraduationYear    int      `json:"graduation_year"`
	Expertise         []string `json:"expertise"`
	Motivation        string   `json:"motivation"`
	AgeConfirmed      bool     `json:"age_confirmed"`
	AgreementAccepted bool     `json:"agreement_accepted"`
}

type importRequest struct {
	Rows [][]application.FormAnswer `json:"rows" binding:"required"`
}

func (h *IntakeHandler) Submit(c *gin.Context) {
	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	var draft *entity.Application
	if len(req.Answers) > 0 {
		draft = application.Normalize(req.Answers)
	} else {
		draft = &entity.Application{
			Email:             req.Email,
			FullName:          strings.TrimSpace(req.FullName),
			Institution:       strings.TrimSpace(req.Institution),
			GraduationYear:    req.GraduationYear,
			Expertise:         application.NormalizeList(strings.Join(req.Expertise, ";")),
			Motivation:        strings.TrimSpace(req.Motivation),
			AgeConfirmed:      req.AgeConfirmed,
			AgreementAccepted: req.AgreementAccepted,
		}
	}

	rec, err := h.Svc.Submit(c.Request.Context(), draft)
	if err != nil {
		h.writeSubmitError(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, gin.H{
		"id":           rec.ID,
		"email":        rec.Email,
		"status":       rec.Status,
		"submitted_at": rec.SubmittedAt,
	}, "application submitted", nil)
	c.JSON(resp.Status, resp)
}

func (h *IntakeHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	results := h.Svc.ImportRows(c.Request.Context(), req.Rows)
	resp := response.Success(c, http.StatusOK, gin.H{"results": results}, "import processed", gin.H{"rows": len(results)})
	c.JSON(resp.Status, resp)
}

// Status exposes only the coarse status; internal error kinds and review
// details are reviewer-facing, never applicant-facing.
func (h *IntakeHandler) Status(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		resp := response.Error[any](c, http.StatusBadRequest, "email is required", nil)
		c.JSON(resp.Status, resp)
		return
	}
	status, err := h.Svc.Status(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "no application found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to load status", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"status": status}, "application status", nil)
	c.JSON(resp.Status, resp)
}

func (h *IntakeHandler) UploadDocument(c *gin.Context) {
	id := c.Param("id")
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		c.JSON(resp.Status, resp)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Svc.AttachDocument(c.Request.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "application not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("application_id", id).Error("document upload failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "document upload failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"document_url": url}, "document uploaded", nil)
	c.JSON(resp.Status, resp)
}

func (h *IntakeHandler) writeSubmitError(c *gin.Context, err error) {
	var verr *application.ValidationError
	var derr *application.DuplicateApplicationError
	switch {
	case errors.As(err, &verr):
		resp := response.Error[any](c, http.StatusUnprocessableEntity, "validation failed", verr.Errors)
		c.JSON(resp.Status, resp)
	case errors.As(err, &derr):
		resp := response.Error[any](c, http.StatusConflict, "application already exists", gin.H{
			"existing_id": derr.ExistingID,
			"status":      derr.Status,
		})
		c.JSON(resp.Status, resp)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("application submit failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to submit application", nil)
		c.JSON(resp.Status, resp)
	}
}
