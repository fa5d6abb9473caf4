package router

import "github.com/gin-gonic/gin"

// Module is one feature surface (intake, review, roles, auth, debug) that
// registers its own routes and route-level middleware on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
