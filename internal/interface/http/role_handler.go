package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/application"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	"github.com/mentorcircle/mentorcircle-api/pkg/response"
	"github.com/mentorcircle/mentorcircle-api/pkg/validation"
)

type RoleHandler struct {
	Svc    *application.RoleService
	Logger *logrus.Logger
}

func NewRoleHandler(svc *application.RoleService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{Svc: svc, Logger: logger}
}

type selectRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student mentor both"`
}

// SelectRole commits the authenticated account to its role. One-way door:
// there is no endpoint that changes a locked role.
func (h *RoleHandler) SelectRole(c *gin.Context) {
	var req selectRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	uid := c.GetString("userID")
	err := h.Svc.SelectRole(c.Request.Context(), uid, entity.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrRoleAlreadyLocked):
			resp := response.Error[any](c, http.StatusConflict, "cannot change role", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrRoleVerificationFailed):
			if h.Logger != nil {
				h.Logger.WithField("user_id", uid).Error("role verification failed")
			}
			resp := response.Error[any](c, http.StatusInternalServerError, "role selection could not be verified, please retry", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrUserNotFound):
			resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrInvalidRole):
			resp := response.Error[any](c, http.StatusBadRequest, "invalid role", nil)
			c.JSON(resp.Status, resp)
		default:
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("user_id", uid).Error("role selection failed")
			}
			resp := response.Error[any](c, http.StatusInternalServerError, "role selection failed", nil)
			c.JSON(resp.Status, resp)
		}
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"role": req.Role, "locked": true}, "role selected", nil)
	c.JSON(resp.Status, resp)
}
