package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/goal-community-api/internal/constants"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/services"
)

// respondServiceError maps service errors to API errors. Anything unexpected
// is logged and reported with the generic fallback message.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrGoalNotFound),
		errors.Is(err, services.ErrMembershipNotFound),
		errors.Is(err, services.ErrNoVoteToRemove),
		errors.Is(err, services.ErrTipNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrUserExists):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotGoalOwner),
		errors.Is(err, services.ErrNotGroupMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidVoteAction),
		errors.Is(err, services.ErrInvalidTipVote),
		errors.Is(err, services.ErrInvalidGoalName),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrContentRequired),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrUsernameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrAIServiceDisabled),
		errors.Is(err, services.ErrAINoTipsGenerated):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		apierrors.InternalError(c, fallback)
	}
}
