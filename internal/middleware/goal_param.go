package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
)

const contextKeyGoalID = "goal_id"

// RequireGoalID parses the :goalId path parameter and stores it in the context
func RequireGoalID() gin.HandlerFunc {
	return func(c *gin.Context) {
		goalID, err := strconv.ParseUint(c.Param("goalId"), 10, 64)
		if err != nil || goalID == 0 {
			apierrors.BadRequest(c, "Invalid goal ID")
			c.Abort()
			return
		}

		c.Set(contextKeyGoalID, goalID)
		c.Next()
	}
}

// GetGoalID retrieves the goal ID set by RequireGoalID
func GetGoalID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(contextKeyGoalID)
	if !exists {
		return 0, false
	}
	goalID, ok := v.(uint64)
	return goalID, ok
}
