package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"instaclone/internal/domain"
	"instaclone/internal/repository/repotest"
)

type mockMessageServiceRepo struct {
	lastCreated domain.Message
	createErr   error
	listData    []domain.Message
	listErr     error
	lastPair    [2]string
}

func (m *mockMessageServiceRepo) Create(_ context.Context, message domain.Message) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCreated = message
	return nil
}

func (m *mockMessageServiceRepo) ListConversation(_ context.Context, userID, otherID string) ([]domain.Message, error) {
	m.lastPair = [2]string{userID, otherID}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listData, nil
}

func TestMessageServiceSend_NormalizesAndDefaults(t *testing.T) {
	store := repotest.New()
	seedUsers(t, store, "alice", "bob")
	repo := &mockMessageServiceRepo{}
	svc := NewMessageService(store.Users, repo)

	msg, err := svc.Send(context.Background(), "alice", " bob ", " hola ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastCreated.ID == "" || repo.lastCreated.ID != msg.ID {
		t.Fatalf("expected generated id")
	}
	if repo.lastCreated.CreatedAt.IsZero() {
		t.Fatalf("expected created_at default")
	}
	if repo.lastCreated.ReceiverID != "bob" || repo.lastCreated.Message != "hola" {
		t.Fatalf("expected trimmed fields, got receiver=%q message=%q", repo.lastCreated.ReceiverID, repo.lastCreated.Message)
	}
}

func TestMessageServiceSend_Validation(t *testing.T) {
	store := repotest.New()
	seedUsers(t, store, "alice")
	svc := NewMessageService(store.Users, store.Messages)

	cases := []struct {
		receiver string
		text     string
		want     error
	}{
		{receiver: "bob", text: "  ", want: domain.ErrEmptyText},
		{receiver: "alice", text: "hola", want: domain.ErrSelfMessage},
		{receiver: "ghost", text: "hola", want: domain.ErrUserNotFound},
		{receiver: "", text: "hola", want: domain.ErrUserNotFound},
	}
	for i, c := range cases {
		if _, err := svc.Send(context.Background(), "alice", c.receiver, c.text); !errors.Is(err, c.want) {
			t.Fatalf("case %d expected %v, got %v", i, c.want, err)
		}
	}
}

func TestMessageServiceConversation(t *testing.T) {
	store := repotest.New()
	seedUsers(t, store, "alice", "bob", "carol")
	svc := NewMessageService(store.Users, store.Messages)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "alice", "bob", "hola"); err != nil {
		t.Fatalf("send: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, err := svc.Send(ctx, "bob", "alice", "que tal"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "carol", "alice", "otro chat"); err != nil {
		t.Fatalf("send: %v", err)
	}

	out, err := svc.Conversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(out) != 2 || out[0].Message != "hola" || out[1].Message != "que tal" {
		t.Fatalf("unexpected conversation %+v", out)
	}
}

func TestMessageServiceConversation_EmptyOther(t *testing.T) {
	repo := &mockMessageServiceRepo{}
	svc := NewMessageService(nil, repo)
	out, err := svc.Conversation(context.Background(), "alice", "  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty list, got %+v", out)
	}
}

func TestMessageService_NotConfigured(t *testing.T) {
	var svc *MessageService
	if _, err := svc.Send(context.Background(), "a", "b", "x"); !errors.Is(err, domain.ErrServiceNotConfigured) {
		t.Fatalf("expected ErrServiceNotConfigured, got %v", err)
	}

	svc = NewMessageService(nil, nil)
	if _, err := svc.Conversation(context.Background(), "a", "b"); !errors.Is(err, domain.ErrServiceNotConfigured) {
		t.Fatalf("expected ErrServiceNotConfigured, got %v", err)
	}
}
