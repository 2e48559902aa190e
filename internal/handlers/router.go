package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-community-api/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth         *AuthHandler
	Goal         *GoalHandler
	Contribution *ContributionHandler
	Chat         *ChatHandler
}

// RegisterRoutes mounts the public and authenticated routes on r
func RegisterRoutes(r *gin.Engine, db *gorm.DB, h Handlers) {
	r.GET("/health", Health(db))

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
	}

	// Goal routes (protected)
	goals := r.Group("/goal")
	goals.Use(middleware.RequireAuth())
	{
		goals.GET("", h.Goal.ListGoals)
		goals.POST("", h.Goal.CreateGoal)
		goals.GET("/joined", h.Goal.ListJoinedGoals)
		goals.GET("/owned", h.Goal.ListOwnedGoals)

		goal := goals.Group("/:goalId")
		goal.Use(middleware.RequireGoalID())
		{
			goal.GET("", h.Goal.GetGoal)
			goal.DELETE("", h.Goal.DeleteGoal)
			goal.POST("/vote", h.Goal.Vote)
			goal.POST("/join", h.Goal.Join)
			goal.DELETE("/leave", h.Goal.Leave)
			goal.PUT("/complete", h.Goal.Complete)

			goal.POST("/tips", h.Contribution.AddTip)
			goal.GET("/tips", h.Contribution.ListTips)
			goal.POST("/tips/suggest", h.Contribution.SuggestTips)
			goal.POST("/tips/:tipId/vote", h.Contribution.VoteTip)

			goal.POST("/successStories", h.Contribution.AddSuccessStory)
			goal.GET("/successStories", h.Contribution.ListSuccessStories)

			goal.GET("/chatMessages", h.Chat.ListMessages)
		}
	}

	r.GET("/ws", middleware.RequireAuth(), h.Chat.ServeWS)
}
