package handlers

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/goal-community-api/internal/dto"
	"github.com/yukikurage/goal-community-api/internal/models"
)

func dialChat(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) dto.ChatEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event dto.ChatEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func requireSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame: %s", data)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}

func TestChat_MemberAndNonMember(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	goal := &models.Goal{Name: "Chatty", CreatedBy: alice.ID, Status: models.GoalStatusPending}
	require.NoError(t, env.db.Create(goal).Error)
	require.NoError(t, env.db.Create(&models.GoalMember{
		GoalID: goal.ID, UserID: alice.ID, Role: models.RoleOwner, Status: models.MembershipJoined, JoinedAt: time.Now(),
	}).Error)

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	aliceConn := dialChat(t, server, aliceToken)
	require.NoError(t, aliceConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventJoinGroup, GroupID: goal.ID}))

	initial := readEvent(t, aliceConn)
	assert.Equal(t, dto.ChatEventInitialMessages, initial.Type)
	assert.Empty(t, initial.Messages)

	require.NoError(t, aliceConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventSendMessage, GroupID: goal.ID, Text: "hello"}))
	event := readEvent(t, aliceConn)
	require.Equal(t, dto.ChatEventNewMessage, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hello", event.Message.MessageText)
	assert.Equal(t, "alice", event.Message.UserName)

	bobConn := dialChat(t, server, bobToken)
	require.NoError(t, bobConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventJoinGroup, GroupID: goal.ID}))

	rejected := readEvent(t, bobConn)
	assert.Equal(t, dto.ChatEventError, rejected.Type)
	assert.Equal(t, "User is not a member of this group", rejected.Error)
	assert.Empty(t, rejected.Messages)

	require.NoError(t, bobConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventSendMessage, GroupID: goal.ID, Text: "sneaky"}))
	rejected = readEvent(t, bobConn)
	assert.Equal(t, dto.ChatEventError, rejected.Type)

	// Neither the backlog nor alice's traffic reaches bob, and bob's attempt reaches nobody.
	requireSilence(t, bobConn)
	requireSilence(t, aliceConn)

	w := env.request(t, http.MethodGet, fmt.Sprintf("/goal/%d/chatMessages", goal.ID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/goal/%d/chatMessages", goal.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Messages []dto.ChatMessageDTO `json:"messages"`
	}
	decode(t, w, &history)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "hello", history.Messages[0].MessageText)
}

func TestChat_BroadcastReachesOtherMembers(t *testing.T) {
	env := setupTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	carol, carolToken := env.createUser(t, "carol")

	goal := &models.Goal{Name: "Chatty", CreatedBy: alice.ID, Status: models.GoalStatusPending}
	require.NoError(t, env.db.Create(goal).Error)
	for _, u := range []*models.User{alice, carol} {
		require.NoError(t, env.db.Create(&models.GoalMember{
			GoalID: goal.ID, UserID: u.ID, Role: models.RoleMember, Status: models.MembershipJoined, JoinedAt: time.Now(),
		}).Error)
	}

	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	aliceConn := dialChat(t, server, aliceToken)
	carolConn := dialChat(t, server, carolToken)
	for _, conn := range []*websocket.Conn{aliceConn, carolConn} {
		require.NoError(t, conn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventJoinGroup, GroupID: goal.ID}))
		require.Equal(t, dto.ChatEventInitialMessages, readEvent(t, conn).Type)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, aliceConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventSendMessage, GroupID: goal.ID, Text: fmt.Sprintf("m%d", i)}))
	}

	for i := 0; i < 3; i++ {
		event := readEvent(t, carolConn)
		require.NotNil(t, event.Message)
		assert.Equal(t, fmt.Sprintf("m%d", i), event.Message.MessageText)
	}

	require.NoError(t, carolConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventLeaveGroup, GroupID: goal.ID}))
	require.NoError(t, carolConn.WriteJSON(dto.ChatCommand{Type: "bogus"}))
	assert.Equal(t, dto.ChatEventError, readEvent(t, carolConn).Type)

	require.NoError(t, aliceConn.WriteJSON(dto.ChatCommand{Type: dto.ChatEventSendMessage, GroupID: goal.ID, Text: "after leave"}))
	requireSilence(t, carolConn)
}

func TestChat_RejectsMissingToken(t *testing.T) {
	env := setupTestEnv(t)
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChat_OriginCheck(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUser(t, "alice")
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {testAllowedOrigin}})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
