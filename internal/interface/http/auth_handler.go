package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentorcircle/mentorcircle-api/internal/application"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
	"github.com/mentorcircle/mentorcircle-api/pkg/response"
	"github.com/mentorcircle/mentorcircle-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			resp := response.Error[any](c, http.StatusConflict, "account already exists", nil)
			c.JSON(resp.Status, resp)
			return
		}
		if h.Logger != nil {
			h.Logger.WithError(err).Error("register failed")
		}
		resp := response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusCreated, gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}, "account created", nil)
	c.JSON(resp.Status, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		c.JSON(resp.Status, resp)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	resp := response.Success(c, http.StatusOK, gin.H{
		"user_id":     u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"is_reviewer": u.IsReviewer,
	}, "login successful", gin.H{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry})
	c.JSON(resp.Status, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		resp := response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		c.JSON(resp.Status, resp)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		c.JSON(resp.Status, resp)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	resp := response.Success[any](c, http.StatusOK, gin.H{"refreshed": true}, "token refreshed", nil)
	c.JSON(resp.Status, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	resp := response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
	c.JSON(resp.Status, resp)
}
