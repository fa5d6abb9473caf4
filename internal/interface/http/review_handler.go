package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/application"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/pkg/response"
	"github.com/mentorcircle/mentorcircle-api/pkg/validation"
)

type ReviewHandler struct {
	Svc    *application.ReviewService
	Logger *logrus.Logger
}

func NewReviewHandler(svc *application.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Logger: logger}
}

type transitionRequest struct {
	TargetStatus string `json:"target_status" binding:"required,oneof=approved rejected"`
}

// sheetEditRequest mirrors one edited row of the spreadsheet-style review
// surface: the row is keyed by email and the reviewer flips a boolean-like
// cell. Truthy cell values approve; everything else rejects.
type sheetEditRequest struct {
	Email string `json:"email" binding:"required,email"`
	Cell  any    `json:"cell" binding:"required"`
}

type noteRequest struct {
	Text string `json:"text" binding:"required"`
}

// Transition is the programmatic trigger (admin tooling, batch
// re-processing) of the approval state machine.
func (h *ReviewHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	res, err := h.Svc.Transition(c.Request.Context(), c.Param("id"), entity.ApplicationStatus(req.TargetStatus), c.GetString("userID"))
	h.writeTransition(c, res, err)
}

// SheetEdit is the manual-review trigger. The same logical edit often fires
// the handler more than once; the state machine folds repeats into no-ops.
func (h *ReviewHandler) SheetEdit(c *gin.Context) {
	var req sheetEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	target := entity.StatusRejected
	if cellTruthy(req.Cell) {
		target = entity.StatusApproved
	}
	res, err := h.Svc.TransitionByEmail(c.Request.Context(), req.Email, target, c.GetString("userID"))
	h.writeTransition(c, res, err)
}

func (h *ReviewHandler) AddNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	if err := h.Svc.AddNote(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Text); err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "application not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "failed to add note", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"added": true}, "note added", nil)
	c.JSON(resp.Status, resp)
}

func (h *ReviewHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("application search failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
	c.JSON(resp.Status, resp)
}

func (h *ReviewHandler) writeTransition(c *gin.Context, res application.TransitionResult, err error) {
	if err != nil {
		switch {
		case errors.Is(err, application.ErrApplicationNotFound):
			resp := response.Error[any](c, http.StatusNotFound, "application not found", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrAlreadyMentor):
			resp := response.Error[any](c, http.StatusConflict, "applicant is already a mentor", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrInvalidTargetStatus):
			resp := response.Error[any](c, http.StatusBadRequest, "invalid target status", nil)
			c.JSON(resp.Status, resp)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).Error("transition failed")
			}
			resp := response.Error[any](c, http.StatusInternalServerError, "transition failed", nil)
			c.JSON(resp.Status, resp)
		}
		return
	}
	data := gin.H{
		"noop":   res.Noop,
		"status": res.Record.Status,
	}
	if res.Record.ReviewedBy != nil {
		data["reviewed_by"] = *res.Record.ReviewedBy
	}
	resp := response.Success(c, http.StatusOK, data, "transition processed", nil)
	c.JSON(resp.Status, resp)
}

func cellTruthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if s, ok := v.(string); ok {
		return application.Truthy(s)
	}
	return false
}
