package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/consulting-sessions-api/internal/middleware"
	"github.com/noah-isme/consulting-sessions-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// callerID is the IdentityProvider.CurrentUser of the booking engine.
func callerID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
