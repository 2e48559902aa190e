package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/goal-community-api/internal/dto"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
	"github.com/yukikurage/goal-community-api/internal/middleware"
	"github.com/yukikurage/goal-community-api/internal/services"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

// ContributionHandler serves tips and success stories
type ContributionHandler struct {
	tipService   *services.TipService
	storyService *services.StoryService
}

func NewContributionHandler(tipService *services.TipService, storyService *services.StoryService) *ContributionHandler {
	return &ContributionHandler{
		tipService:   tipService,
		storyService: storyService,
	}
}

type contentBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AddTip posts a tip on a goal
func (h *ContributionHandler) AddTip(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	var req struct {
		Tip *contentBody `json:"tip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Tip == nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tip, err := h.tipService.AddTip(c.Request.Context(), services.AddTipInput{
		GoalID:  goalID,
		UserID:  userID,
		Title:   req.Tip.Title,
		Content: req.Tip.Content,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to add tip")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tip added successfully",
		"tip":     dto.ToTipDTO(*tip, 0),
	})
}

// ListTips lists a goal's tips
func (h *ContributionHandler) ListTips(c *gin.Context) {
	goalID, _ := middleware.GetGoalID(c)
	params := utils.GetPaginationParams(c)

	rows, total, err := h.tipService.ListTips(c.Request.Context(), goalID, c.Query("searchTerm"), params)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch tips")
		return
	}

	c.JSON(http.StatusOK, dto.ToTipListResponse(rows, total, params.Page, params.Limit))
}

// VoteTip records an up or down vote on a tip
func (h *ContributionHandler) VoteTip(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	tipID, err := strconv.ParseUint(c.Param("tipId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid tip ID")
		return
	}

	var req struct {
		VoteValue int `json:"voteValue"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.tipService.VoteTip(c.Request.Context(), goalID, tipID, userID, req.VoteValue); err != nil {
		respondServiceError(c, err, "Failed to vote on tip")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded successfully"})
}

// SuggestTips drafts tips for a goal without saving them
func (h *ContributionHandler) SuggestTips(c *gin.Context) {
	goalID, _ := middleware.GetGoalID(c)

	tips, err := h.tipService.SuggestTips(c.Request.Context(), goalID)
	if err != nil {
		respondServiceError(c, err, "Failed to suggest tips")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tips": tips})
}

// AddSuccessStory posts a success story on a goal
func (h *ContributionHandler) AddSuccessStory(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	var req struct {
		SuccessStory *contentBody `json:"successStory"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SuccessStory == nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	story, err := h.storyService.AddSuccessStory(c.Request.Context(), services.AddStoryInput{
		GoalID:  goalID,
		UserID:  userID,
		Title:   req.SuccessStory.Title,
		Content: req.SuccessStory.Content,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to add success story")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Success story added successfully",
		"successStory": dto.ToSuccessStoryDTO(*story),
	})
}

// ListSuccessStories lists a goal's success stories
func (h *ContributionHandler) ListSuccessStories(c *gin.Context) {
	goalID, _ := middleware.GetGoalID(c)
	params := utils.GetPaginationParams(c)

	stories, total, err := h.storyService.ListSuccessStories(c.Request.Context(), goalID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch success stories")
		return
	}

	c.JSON(http.StatusOK, dto.ToSuccessStoryListResponse(stories, total, params.Page, params.Limit))
}
