package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolcore/timetable-api/internal/middleware"
	"github.com/schoolcore/timetable-api/internal/models"
	appErrors "github.com/schoolcore/timetable-api/pkg/errors"
	"github.com/schoolcore/timetable-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.TokenClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireRole aborts with 403 unless the caller holds one of the roles.
func requireRole(c *gin.Context, roles ...string) bool {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return false
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient role"))
	return false
}
