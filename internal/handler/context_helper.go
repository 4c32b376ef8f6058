package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-routine-api/internal/middleware"
)

// actorID returns the authenticated user's id, or "" for anonymous calls.
func actorID(c *gin.Context) string {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return ""
	}
	return claims.UserID
}
