package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/goal-community-api/internal/dto"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
	"github.com/yukikurage/goal-community-api/internal/middleware"
	"github.com/yukikurage/goal-community-api/internal/services"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// GoalHandler serves goal lifecycle endpoints
type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// requireIDs reads the authenticated user and the :goalId parameter
func requireIDs(c *gin.Context) (userID, goalID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}
	goalID, exists = middleware.GetGoalID(c)
	if !exists {
		apierrors.BadRequest(c, "Invalid goal ID")
		return 0, 0, false
	}
	return userID, goalID, true
}

// ListGoals searches goals by name
func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	rows, total, err := h.goalService.ListGoals(c.Request.Context(), userID, c.Query("query"), params)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch goals")
		return
	}

	c.JSON(http.StatusOK, dto.ToGoalListResponse(rows, total, params.Page, params.Limit))
}

// ListJoinedGoals lists goals the user belongs to
func (h *GoalHandler) ListJoinedGoals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	goals, err := h.goalService.ListJoinedGoals(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch joined goals")
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": dto.ToGoalDTOs(goals)})
}

// ListOwnedGoals lists goals the user created
func (h *GoalHandler) ListOwnedGoals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	goals, err := h.goalService.ListOwnedGoals(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch owned goals")
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": dto.ToGoalDTOs(goals)})
}

// GetGoal returns the goal detail
func (h *GoalHandler) GetGoal(c *gin.Context) {
	goalID, _ := middleware.GetGoalID(c)

	detail, err := h.goalService.GetGoalDetail(c.Request.Context(), goalID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch goal")
		return
	}

	c.JSON(http.StatusOK, dto.GoalDetailDTO{
		ID:                detail.Goal.ID,
		Name:              detail.Goal.Name,
		Description:       detail.Goal.Description,
		Status:            detail.Goal.Status,
		UserName:          detail.Goal.OwnerName,
		MemberCount:       detail.MemberCount,
		AccomplishedCount: detail.AccomplishedCount,
		VoteCount:         detail.VoteCount,
		Tips:              dto.ToTipSummaryDTOs(detail.Tips),
		SuccessStories:    dto.ToStorySummaryDTOs(detail.SuccessStories),
	})
}

// CreateGoal creates a goal owned by the current user
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Goal name is required")
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), services.CreateGoalInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create goal")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Goal created successfully",
		"goal":    dto.ToGoalDTO(*goal),
	})
}

// DeleteGoal deletes a goal created by the current user
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), goalID, userID); err != nil {
		respondServiceError(c, err, "Failed to delete goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// Vote upvotes a goal or removes the user's vote
func (h *GoalHandler) Vote(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.goalService.CastVote(c.Request.Context(), goalID, userID, req.Action)
	if err != nil {
		respondServiceError(c, err, "Failed to process vote")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  result.Message,
		"promoted": result.Promoted,
	})
}

// Join enrolls the current user in the goal
func (h *GoalHandler) Join(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	member, err := h.goalService.JoinGoal(c.Request.Context(), goalID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to join goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Joined goal successfully",
		"membership": dto.ToMembershipDTO(*member),
	})
}

// Leave removes the current user from the goal
func (h *GoalHandler) Leave(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	if err := h.goalService.LeaveGoal(c.Request.Context(), goalID, userID); err != nil {
		respondServiceError(c, err, "Failed to leave goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left goal successfully"})
}

// Complete marks the current user's membership completed
func (h *GoalHandler) Complete(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	member, err := h.goalService.CompleteGoal(c.Request.Context(), goalID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to complete goal")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Goal marked as completed",
		"membership": dto.ToMembershipDTO(*member),
	})
}
