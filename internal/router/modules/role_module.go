package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorcircle/mentorcircle-api/internal/container"
	handlers "github.com/mentorcircle/mentorcircle-api/internal/interface/http"
	"github.com/mentorcircle/mentorcircle-api/internal/interface/middleware"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

// RoleModule wires the one-time role selection endpoint.

type RoleModule struct {
	Handler *handlers.RoleHandler
	JWT     *helpers.JWTManager
}

func NewRoleModule(h *handlers.RoleHandler, jwt *helpers.JWTManager) *RoleModule {
	return &RoleModule{Handler: h, JWT: jwt}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/roles/select", m.Handler.SelectRole)
	}
}
