package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/goal-community-api/internal/repository"
)

// Chat event types exchanged over the WebSocket
const (
	ChatEventJoinGroup       = "joinGroup"
	ChatEventLeaveGroup      = "leaveGroup"
	ChatEventSendMessage     = "sendMessage"
	ChatEventInitialMessages = "initialMessages"
	ChatEventNewMessage      = "newMessage"
	ChatEventError           = "errorMessage"
)

// ChatMessageDTO is a chat message as delivered to clients
type ChatMessageDTO struct {
	ID          uint64    `json:"id"`
	GroupID     uint64    `json:"group_id"`
	UserID      uint64    `json:"user_id"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
	UserName    string    `json:"user_name"`
}

// ChatCommand is an inbound client frame
type ChatCommand struct {
	Type    string `json:"type"`
	GroupID uint64 `json:"groupId"`
	Text    string `json:"text,omitempty"`
}

// ChatEvent is an outbound server frame
type ChatEvent struct {
	Type     string           `json:"type"`
	GroupID  uint64           `json:"groupId,omitempty"`
	Messages []ChatMessageDTO `json:"messages,omitempty"`
	Message  *ChatMessageDTO  `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// MarshalJSON always emits the messages array on initialMessages, even when
// the backlog is empty.
func (e ChatEvent) MarshalJSON() ([]byte, error) {
	type event ChatEvent
	if e.Type != ChatEventInitialMessages {
		return json.Marshal(event(e))
	}

	messages := e.Messages
	if messages == nil {
		messages = []ChatMessageDTO{}
	}
	return json.Marshal(struct {
		event
		Messages []ChatMessageDTO `json:"messages"`
	}{event(e), messages})
}

// Encode marshals the event for the wire
func (e ChatEvent) Encode() []byte {
	data, _ := json.Marshal(e)
	return data
}

// NewChatErrorEvent builds an errorMessage frame
func NewChatErrorEvent(message string) ChatEvent {
	return ChatEvent{Type: ChatEventError, Error: message}
}

// ToChatMessageDTO converts a stored row
func ToChatMessageDTO(row repository.ChatMessageRow) ChatMessageDTO {
	return ChatMessageDTO{
		ID:          row.ID,
		GroupID:     row.GoalID,
		UserID:      row.UserID,
		MessageText: row.Text,
		CreatedAt:   row.CreatedAt,
		UserName:    row.UserName,
	}
}

// ToChatMessageDTOs converts stored rows
func ToChatMessageDTOs(rows []repository.ChatMessageRow) []ChatMessageDTO {
	out := make([]ChatMessageDTO, len(rows))
	for i, row := range rows {
		out[i] = ToChatMessageDTO(row)
	}
	return out
}
