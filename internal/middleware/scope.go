package middleware

import (
	"net/http"

	"github.com/Aidanden/SIMS-sub007/internal/apierror"
	"github.com/Aidanden/SIMS-sub007/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ScopeKey = "acting_scope"

// ActingScope resolves the capability scope of the request from headers set
// by the authenticating edge:
//
//	X-Acting-Company: uuid of the company the caller acts for
//	X-System-Scope:   "true" for cross-company system operations
//	X-Actor:          free-form actor identifier for audit rows
//
// Requests carrying neither a company nor system scope are rejected before
// they reach a handler.
func ActingScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := service.Scope{Actor: c.GetHeader("X-Actor")}

		if c.GetHeader("X-System-Scope") == "true" {
			scope.SystemScope = true
		}
		if raw := c.GetHeader("X-Acting-Company"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("invalid X-Acting-Company header"))
				return
			}
			scope.ActingCompanyID = id
		}
		if !scope.SystemScope && scope.ActingCompanyID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("missing acting scope"))
			return
		}

		c.Set(ScopeKey, scope)
		c.Next()
	}
}

// GetScope retrieves the typed scope from the Gin context.
func GetScope(c *gin.Context) service.Scope {
	scope, _ := c.MustGet(ScopeKey).(service.Scope)
	return scope
}
