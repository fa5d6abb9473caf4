package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP is a rate-limit bypass for callers on private or loopback
// addresses, used on the debug metrics endpoint so internal scrapers are never
// throttled.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := ipFromCtx(c)
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return false
		}
		// 10.0.0.0/8, 172.16/12, 192.168/16, loopback
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
