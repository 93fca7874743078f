package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"instaclone/internal/domain"
	"instaclone/internal/repository"
)

// MessageService encapsula la lógica de mensajes directos entre usuarios.
type MessageService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
}

func NewMessageService(users repository.UserRepository, messages repository.MessageRepository) *MessageService {
	return &MessageService{users: users, messages: messages}
}

func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (domain.Message, error) {
	if s == nil || s.messages == nil || s.users == nil {
		return domain.Message{}, domain.ErrServiceNotConfigured
	}

	receiverID = strings.TrimSpace(receiverID)
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Message{}, domain.ErrEmptyText
	}
	if receiverID == "" {
		return domain.Message{}, domain.ErrUserNotFound
	}
	if receiverID == senderID {
		return domain.Message{}, domain.ErrSelfMessage
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Message{}, domain.ErrUserNotFound
		}
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    text,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// Conversation devuelve los mensajes entre ambos usuarios, del mas viejo al mas nuevo.
func (s *MessageService) Conversation(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	if s == nil || s.messages == nil {
		return nil, domain.ErrServiceNotConfigured
	}
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return []domain.Message{}, nil
	}
	return s.messages.ListConversation(ctx, userID, otherID)
}
