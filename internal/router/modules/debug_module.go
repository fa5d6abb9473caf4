package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorcircle/mentorcircle-api/internal/container"
	"github.com/mentorcircle/mentorcircle-api/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public metrics endpoint (expvar), rate-limited per IP with a bypass for
	// internal-network scrapers
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
