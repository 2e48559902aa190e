package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yukikurage/goal-community-api/internal/dto"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/middleware"
	"github.com/yukikurage/goal-community-api/internal/realtime"
	"github.com/yukikurage/goal-community-api/internal/services"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = 25 * time.Second
	maxMessageSize  = 4096
	clientQueueSize = 64
)

// ChatHandler serves chat history and the realtime socket
type ChatHandler struct {
	chatService *services.ChatService
	upgrader    websocket.Upgrader
}

// NewChatHandler creates a ChatHandler whose upgrades are limited to the
// allowed browser origins ("*" allows any).
func NewChatHandler(chatService *services.ChatService, allowedOrigins []string) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// ListMessages returns the recent chat history of a goal to its members
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, goalID, ok := requireIDs(c)
	if !ok {
		return
	}

	rows, err := h.chatService.History(c.Request.Context(), userID, goalID)
	if err != nil {
		respondServiceError(c, err, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.ToChatMessageDTOs(rows)})
}

// ServeWS upgrades the request and runs the chat session until the peer leaves
func (h *ChatHandler) ServeWS(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(userID, clientQueueSize)
	logger.Debug().Str("client_id", client.ID).Uint64("user_id", userID).Msg("chat connected")

	go writePump(conn, client)
	h.readPump(conn, client)
}

// readPump handles inbound frames one at a time, so a sender's messages are
// persisted and published in the order they arrived.
func (h *ChatHandler) readPump(conn *websocket.Conn, client *realtime.Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.chatService.Disconnect(client)
		client.Close()
		conn.Close()
		logger.Debug().Str("client_id", client.ID).Msg("chat disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Str("client_id", client.ID).Msg("chat read failed")
			}
			return
		}

		var cmd dto.ChatCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			client.Enqueue(dto.NewChatErrorEvent("Invalid message format").Encode())
			continue
		}
		h.handleCommand(ctx, client, cmd)
	}
}

func (h *ChatHandler) handleCommand(ctx context.Context, client *realtime.Client, cmd dto.ChatCommand) {
	switch cmd.Type {
	case dto.ChatEventJoinGroup:
		if err := h.chatService.JoinRoom(ctx, client, cmd.GroupID); err != nil {
			h.sendError(client, err, "Error joining group")
		}
	case dto.ChatEventSendMessage:
		if _, err := h.chatService.SendMessage(ctx, client.UserID, cmd.GroupID, cmd.Text); err != nil {
			h.sendError(client, err, "Failed to send message")
		}
	case dto.ChatEventLeaveGroup:
		h.chatService.LeaveRoom(client, cmd.GroupID)
	default:
		client.Enqueue(dto.NewChatErrorEvent("Unknown message type").Encode())
	}
}

func (h *ChatHandler) sendError(client *realtime.Client, err error, fallback string) {
	message := fallback
	switch {
	case errors.Is(err, services.ErrNotGroupMember), errors.Is(err, services.ErrEmptyMessage):
		message = err.Error()
	default:
		logger.Error().Err(err).Str("client_id", client.ID).Msg(fallback)
	}
	client.Enqueue(dto.NewChatErrorEvent(message).Encode())
}

// writePump is the only writer on conn. It drains the client's queue and
// keeps the connection alive with pings.
func writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-client.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-client.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
