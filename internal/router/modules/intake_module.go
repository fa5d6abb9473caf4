package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorcircle/mentorcircle-api/internal/container"
	handlers "github.com/mentorcircle/mentorcircle-api/internal/interface/http"
	"github.com/mentorcircle/mentorcircle-api/internal/interface/middleware"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

// IntakeModule wires the applicant-facing intake endpoints.
// Public: POST /api/applications, GET /api/applications/status
// Reviewer-only: POST /api/applications/import
// Authenticated: POST /api/applications/:id/document

type IntakeModule struct {
	Handler *handlers.IntakeHandler
	JWT     *helpers.JWTManager
}

func NewIntakeModule(h *handlers.IntakeHandler, jwt *helpers.JWTManager) *IntakeModule {
	return &IntakeModule{Handler: h, JWT: jwt}
}

func (m *IntakeModule) Register(rg *gin.RouterGroup) {
	submitLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	statusLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/applications", submitLimiter, m.Handler.Submit)
	rg.GET("/applications/status", statusLimiter, m.Handler.Status)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/applications/:id/document", m.Handler.UploadDocument)
		auth.POST("/applications/import", middleware.RequireReviewer(), m.Handler.Import)
	}
}
