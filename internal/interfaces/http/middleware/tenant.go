// Package middleware provides the Gin middleware chain of the API server.
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aegisai/aegis/internal/application/dto"
	"github.com/aegisai/aegis/pkg/constants"
	"github.com/aegisai/aegis/pkg/logger"
)

// TenantAuth resolves the tenant identity from the request header set by the
// upstream gateway. Requests without it never reach a handler.
func TenantAuth(log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("tenant_auth")
	return func(c *gin.Context) {
		tenantID := c.GetHeader(constants.HeaderTenantID)
		if tenantID == "" {
			log.Warn(c.Request.Context(), "request without tenant header rejected", logger.Fields{
				"path": c.FullPath(),
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    string(constants.ErrCodeUnauthorized),
				Message: "missing " + constants.HeaderTenantID + " header",
			})
			return
		}

		c.Set(string(constants.ContextKeyTenantID), tenantID)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyTenantID, tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// TenantID returns the tenant resolved by TenantAuth, or "" when the request
// bypassed it.
func TenantID(c *gin.Context) string {
	return c.GetString(string(constants.ContextKeyTenantID))
}
