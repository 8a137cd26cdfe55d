package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adm-api/internal/middleware"
	"github.com/noah-isme/uni-adm-api/internal/models"
)

// claimsFromContext returns the authenticated caller's claims, or nil on
// unauthenticated routes. Services treat nil claims as unauthorized.
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
