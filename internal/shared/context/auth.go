package context

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	sharedError "github.com/memberhub/registry-api/internal/shared/error"
	"github.com/memberhub/registry-api/internal/shared/logger"
)

// Context keys for storing moderator authentication information
const (
	ModeratorIDKey    = "moderator_id"
	ModeratorEmailKey = "moderator_email"
)

func GetModeratorID(c *gin.Context) (uint32, bool) {
	moderatorID, exists := c.Get(ModeratorIDKey)
	if !exists {
		return 0, false
	}

	idStr, ok := moderatorID.(string)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(id), true
}

// RequireModeratorID retrieves the authenticated moderator's ID from the Gin context.
// If the ID is not found, automatically sends an authentication error response.
// Returns the ID and true if found, 0 and false if not found (error already sent).
func RequireModeratorID(c *gin.Context) (uint32, bool) {
	moderatorID, ok := GetModeratorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, sharedError.ErrorResponse{
			Status:  http.StatusUnauthorized,
			Code:    "AUTH-000",
			Message: "Please log in.",
		})
		c.Abort()
		logger.FromContext(c.Request.Context()).Error("[API] moderator ID missing from context")
		return 0, false
	}
	return moderatorID, true
}
