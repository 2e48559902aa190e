package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/utils"
	"gorm.io/gorm"
)

type tipFixture struct {
	ctx      context.Context
	db       *gorm.DB
	goalRepo repository.GoalRepository
	tipRepo  repository.TipRepository
	owner    *models.User
	goal     *models.Goal
}

func newTipFixture(t *testing.T) *tipFixture {
	db := newTestDB(t)
	f := &tipFixture{
		ctx:      context.Background(),
		db:       db,
		goalRepo: repository.NewGoalRepository(db),
		tipRepo:  repository.NewTipRepository(db),
		owner:    createUser(t, db, "owner"),
	}
	f.goal = &models.Goal{Name: "Learn Go", CreatedBy: f.owner.ID, Status: models.GoalStatusPending}
	require.NoError(t, db.Create(f.goal).Error)
	return f
}

func TestTipService_AddAndList(t *testing.T) {
	f := newTipFixture(t)
	service := NewTipService(f.tipRepo, f.goalRepo, nil)

	_, err := service.AddTip(f.ctx, AddTipInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: " ", Content: "x"})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = service.AddTip(f.ctx, AddTipInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: "x", Content: ""})
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = service.AddTip(f.ctx, AddTipInput{GoalID: 999, UserID: f.owner.ID, Title: "x", Content: "y"})
	assert.ErrorIs(t, err, ErrGoalNotFound)

	first, err := service.AddTip(f.ctx, AddTipInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: "Daily", Content: "Code every DAY"})
	require.NoError(t, err)
	_, err = service.AddTip(f.ctx, AddTipInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: "Read", Content: "Read the tour"})
	require.NoError(t, err)

	rows, total, err := service.ListTips(f.ctx, f.goal.ID, "day", utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)

	_, _, err = service.ListTips(f.ctx, 999, "", utils.NewPaginationParams(1, 10))
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestTipService_VoteTip(t *testing.T) {
	f := newTipFixture(t)
	service := NewTipService(f.tipRepo, f.goalRepo, nil)
	voter := createUser(t, f.db, "voter")

	tip, err := service.AddTip(f.ctx, AddTipInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: "Daily", Content: "Code every day"})
	require.NoError(t, err)

	err = service.VoteTip(f.ctx, f.goal.ID, tip.ID, voter.ID, 2)
	assert.ErrorIs(t, err, ErrInvalidTipVote)
	assert.Equal(t, "voteValue must be +1 or -1.", err.Error())

	assert.ErrorIs(t, service.VoteTip(f.ctx, f.goal.ID, 999, voter.ID, 1), ErrTipNotFound)
	assert.ErrorIs(t, service.VoteTip(f.ctx, f.goal.ID+1, tip.ID, voter.ID, 1), ErrTipNotFound)

	require.NoError(t, service.VoteTip(f.ctx, f.goal.ID, tip.ID, voter.ID, 1))
	require.NoError(t, service.VoteTip(f.ctx, f.goal.ID, tip.ID, voter.ID, 1))
	require.NoError(t, service.VoteTip(f.ctx, f.goal.ID, tip.ID, f.owner.ID, -1))

	summaries, err := f.tipRepo.ListSummaries(f.ctx, f.goal.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 1, summaries[0].UpVotes)
	assert.EqualValues(t, 1, summaries[0].DownVotes)
	assert.Equal(t, "owner", summaries[0].Owner)

	// Switching a vote replaces it.
	require.NoError(t, service.VoteTip(f.ctx, f.goal.ID, tip.ID, voter.ID, -1))
	rows, _, err := f.tipRepo.List(f.ctx, f.goal.ID, "", utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, -2, rows[0].VoteCount)
}

func TestTipService_SuggestTipsWithoutAI(t *testing.T) {
	f := newTipFixture(t)
	service := NewTipService(f.tipRepo, f.goalRepo, nil)

	_, err := service.SuggestTips(f.ctx, f.goal.ID)

	assert.ErrorIs(t, err, ErrAIServiceDisabled)
}

func newFakeOpenAI(t *testing.T, content string) *AIService {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  openai.GPT4o,
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]string{
						"role":    openai.ChatMessageRoleAssistant,
						"content": content,
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestTipService_SuggestTips(t *testing.T) {
	f := newTipFixture(t)
	ai := newFakeOpenAI(t, "```json\n[{\"title\":\"Tour\",\"content\":\"Finish the Go tour\"},{\"title\":\"\",\"content\":\"dropped\"}]\n```")
	service := NewTipService(f.tipRepo, f.goalRepo, ai)

	tips, err := service.SuggestTips(f.ctx, f.goal.ID)
	require.NoError(t, err)
	require.Len(t, tips, 1)
	assert.Equal(t, "Tour", tips[0].Title)

	// Suggestions are never stored.
	var count int64
	require.NoError(t, f.db.Model(&models.Tip{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = service.SuggestTips(f.ctx, 999)
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestTipService_SuggestTipsEmpty(t *testing.T) {
	f := newTipFixture(t)
	service := NewTipService(f.tipRepo, f.goalRepo, newFakeOpenAI(t, "[]"))

	_, err := service.SuggestTips(f.ctx, f.goal.ID)

	assert.ErrorIs(t, err, ErrAINoTipsGenerated)
}

func TestStoryService(t *testing.T) {
	f := newTipFixture(t)
	service := NewStoryService(repository.NewStoryRepository(f.db), f.goalRepo)

	_, err := service.AddSuccessStory(f.ctx, AddStoryInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: "", Content: "c"})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = service.AddSuccessStory(f.ctx, AddStoryInput{GoalID: 999, UserID: f.owner.ID, Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrGoalNotFound)

	for _, title := range []string{"first", "second", "third"} {
		_, err := service.AddSuccessStory(f.ctx, AddStoryInput{GoalID: f.goal.ID, UserID: f.owner.ID, Title: title, Content: "made it"})
		require.NoError(t, err)
	}

	stories, total, err := service.ListSuccessStories(f.ctx, f.goal.ID, utils.NewPaginationParams(1, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, stories, 2)
	assert.Equal(t, "third", stories[0].Title)
	assert.Equal(t, "second", stories[1].Title)
}
