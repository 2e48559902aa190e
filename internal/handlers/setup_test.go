package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/goal-community-api/internal/constants"
	"github.com/yukikurage/goal-community-api/internal/database"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/realtime"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/services"
	"github.com/yukikurage/goal-community-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testAllowedOrigin = "http://app.example"

type testEnv struct {
	db     *gorm.DB
	hub    *realtime.Hub
	router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handler-test-secret")
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, database.AddIndexes(db))

	goalRepo := repository.NewGoalRepository(db)
	userRepo := repository.NewUserRepository(db)
	tipRepo := repository.NewTipRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	hub := realtime.NewHub()

	h := Handlers{
		Auth: NewAuthHandler(services.NewAuthService(userRepo), 1),
		Goal: NewGoalHandler(services.NewGoalService(goalRepo, tipRepo, storyRepo, constants.DefaultVoteThreshold)),
		Contribution: NewContributionHandler(
			services.NewTipService(tipRepo, goalRepo, nil),
			services.NewStoryService(storyRepo, goalRepo),
		),
		Chat: NewChatHandler(
			services.NewChatService(goalRepo, repository.NewChatRepository(db), userRepo, hub, realtime.NewLocalBroker(hub)),
			[]string{testAllowedOrigin},
		),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, db, h)

	return &testEnv{db: db, hub: hub, router: r}
}

// createUser inserts a user and returns it with a bearer token
func (env *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, env.db.Create(user).Error)

	token, err := utils.GenerateToken(user.ID, user.Username, 1)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
