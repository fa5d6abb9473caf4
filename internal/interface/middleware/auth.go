package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
	"github.com/mentorcircle/mentorcircle-api/pkg/response"
)

// Auth validates the access token and ensures an active session exists in
// Redis. It sets userID, userName, and userEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 {
			resp := response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set("userID", data["user_id"])
		c.Set("userName", data["name"])
		c.Set("userEmail", data["email"])
		c.Set("isReviewer", data["is_reviewer"] == "1" || data["is_reviewer"] == "true")
		c.Next()
	}
}

// RequireReviewer gates review endpoints to reviewer accounts. Must run after
// Auth.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isReviewer") {
			resp := response.Error[any](c, http.StatusForbidden, "reviewer access required", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Next()
	}
}
