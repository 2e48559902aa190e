package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/goal-community-api/internal/constants"
	"github.com/yukikurage/goal-community-api/internal/dto"
	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/models"
	"github.com/yukikurage/goal-community-api/internal/realtime"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotGroupMember = errors.New("User is not a member of this group")
	ErrEmptyMessage   = errors.New("message text is required")
	ErrBacklogDropped = errors.New("chat backlog could not be queued")
)

// ChatService gates chat rooms on goal membership and fans messages out
type ChatService struct {
	goalRepo repository.GoalRepository
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	hub      *realtime.Hub
	broker   realtime.Broker
}

// NewChatService creates a new ChatService
func NewChatService(goalRepo repository.GoalRepository, chatRepo repository.ChatRepository, userRepo repository.UserRepository, hub *realtime.Hub, broker realtime.Broker) *ChatService {
	return &ChatService{
		goalRepo: goalRepo,
		chatRepo: chatRepo,
		userRepo: userRepo,
		hub:      hub,
		broker:   broker,
	}
}

// JoinRoom admits a member's connection to the goal's room and queues the
// recent backlog on it. Non-members get ErrNotGroupMember and no backlog.
func (s *ChatService) JoinRoom(ctx context.Context, client *realtime.Client, goalID uint64) error {
	if err := s.ensureMember(ctx, goalID, client.UserID); err != nil {
		return err
	}

	rows, err := s.chatRepo.Recent(ctx, goalID, constants.ChatBacklogSize)
	if err != nil {
		return fmt.Errorf("failed to load chat backlog: %w", err)
	}

	initial := dto.ChatEvent{
		Type:     dto.ChatEventInitialMessages,
		GroupID:  goalID,
		Messages: dto.ToChatMessageDTOs(rows),
	}
	// The backlog is queued before subscribing so it always precedes live events.
	if !client.Enqueue(initial.Encode()) {
		logger.Warn().Str("client_id", client.ID).Uint64("goal_id", goalID).Msg("chat backlog dropped, queue full or closed")
		return ErrBacklogDropped
	}
	s.hub.Join(goalID, client)

	logger.Debug().Str("client_id", client.ID).Uint64("goal_id", goalID).Msg("chat room joined")
	return nil
}

// LeaveRoom unsubscribes the connection from one room
func (s *ChatService) LeaveRoom(client *realtime.Client, goalID uint64) {
	s.hub.Leave(goalID, client)
}

// Disconnect drops the connection from every room
func (s *ChatService) Disconnect(client *realtime.Client) {
	s.hub.Disconnect(client)
}

// SendMessage persists a member's message and publishes it to the room
func (s *ChatService) SendMessage(ctx context.Context, userID, goalID uint64, text string) (*dto.ChatMessageDTO, error) {
	if err := s.ensureMember(ctx, goalID, userID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.ChatMessage{
		GoalID:    goalID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	out := dto.ChatMessageDTO{
		ID:          msg.ID,
		GroupID:     goalID,
		UserID:      userID,
		MessageText: msg.Text,
		CreatedAt:   msg.CreatedAt,
		UserName:    s.username(ctx, userID),
	}

	event := dto.ChatEvent{Type: dto.ChatEventNewMessage, GroupID: goalID, Message: &out}
	if err := s.broker.Publish(ctx, goalID, event.Encode()); err != nil {
		return nil, fmt.Errorf("failed to publish message: %w", err)
	}

	return &out, nil
}

// History returns the most recent messages of a goal for one of its members
func (s *ChatService) History(ctx context.Context, userID, goalID uint64) ([]repository.ChatMessageRow, error) {
	if err := ensureGoal(ctx, s.goalRepo, goalID); err != nil {
		return nil, err
	}
	if err := s.ensureMember(ctx, goalID, userID); err != nil {
		return nil, err
	}

	rows, err := s.chatRepo.Recent(ctx, goalID, constants.ChatHistorySize)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return rows, nil
}

// ensureMember checks membership against the store on every call
func (s *ChatService) ensureMember(ctx context.Context, goalID, userID uint64) error {
	if _, err := s.goalRepo.FindMember(ctx, goalID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	return nil
}

func (s *ChatService) username(ctx context.Context, userID uint64) string {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user.Username == "" {
		return constants.AnonymousName
	}
	return user.Username
}
