package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/pkg/errors"
	"github.com/silverlynx18/sock/pkg/response"
)

// RequireGroupCapability checks that the authenticated user holds the given
// capability inside the group named by the :groupID path parameter.
func RequireGroupCapability(checker *permissions.Checker, capabilityID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		groupID := c.Param("groupID")
		if groupID == "" {
			response.Error(c, errors.NewBadRequest("group id is required"))
			c.Abort()
			return
		}

		allowed, err := checker.Check(c.Request.Context(), userID, groupID, capabilityID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
