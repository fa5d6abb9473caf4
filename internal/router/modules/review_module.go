package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorcircle/mentorcircle-api/internal/container"
	handlers "github.com/mentorcircle/mentorcircle-api/internal/interface/http"
	"github.com/mentorcircle/mentorcircle-api/internal/interface/middleware"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

// ReviewModule wires the reviewer surface. Every route requires an
// authenticated reviewer account.

type ReviewModule struct {
	Handler *handlers.ReviewHandler
	JWT     *helpers.JWTManager
}

func NewReviewModule(h *handlers.ReviewHandler, jwt *helpers.JWTManager) *ReviewModule {
	return &ReviewModule{Handler: h, JWT: jwt}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	review := rg.Group("/review")
	review.Use(middleware.Auth(container.GetRedis(), m.JWT))
	review.Use(middleware.RequireReviewer())
	review.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		review.POST("/applications/:id/transition", m.Handler.Transition)
		review.POST("/applications/:id/notes", m.Handler.AddNote)
		review.POST("/sheet/edit", m.Handler.SheetEdit)
		review.GET("/applications/search", m.Handler.Search)
	}
}
