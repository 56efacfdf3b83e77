package service

import (
	"context"
	"testing"
	"time"

	"github.com/authhybrid/backend/internal/apperr"
	"github.com/authhybrid/backend/internal/repository"
)

func newChatServicesForTest(t *testing.T, f *serviceFixture) (*ConversationService, *MessageService) {
	t.Helper()
	convRepo := repository.NewConversationRepository(f.db)
	msgRepo := repository.NewMessageRepository(f.db)
	return NewConversationService(convRepo, f.users), NewMessageService(msgRepo, convRepo)
}

func TestConversationCreateDirectAndDeduplicate(t *testing.T) {
	f := newServiceFixture(t)
	convs, _ := newChatServicesForTest(t, f)
	a := f.createUser(t, "a@example.dev", "password123", true)
	b := f.createUser(t, "b@example.dev", "password123", true)
	ctx := context.Background()

	conv, err := convs.Create(ctx, a.ID, []string{b.ID}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if conv.IsGroup {
		t.Fatal("two participants must not form a group")
	}
	if len(conv.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(conv.Participants))
	}

	// Same pair again, from either side, is a conflict.
	if _, err := convs.Create(ctx, a.ID, []string{b.ID}, ""); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("duplicate direct allowed: %v", err)
	}
	if _, err := convs.Create(ctx, b.ID, []string{a.ID}, ""); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("reversed duplicate allowed: %v", err)
	}
}

func TestConversationCreateGroupRequiresTitle(t *testing.T) {
	f := newServiceFixture(t)
	convs, _ := newChatServicesForTest(t, f)
	a := f.createUser(t, "a@example.dev", "password123", true)
	b := f.createUser(t, "b@example.dev", "password123", true)
	c := f.createUser(t, "c@example.dev", "password123", true)
	ctx := context.Background()

	_, err := convs.Create(ctx, a.ID, []string{b.ID, c.ID}, "")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("untitled group allowed: %v", err)
	}

	conv, err := convs.Create(ctx, a.ID, []string{b.ID, c.ID}, "team chat")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if !conv.IsGroup || conv.Title != "team chat" {
		t.Fatalf("unexpected group: %+v", conv)
	}
}

func TestConversationCreateValidation(t *testing.T) {
	f := newServiceFixture(t)
	convs, _ := newChatServicesForTest(t, f)
	a := f.createUser(t, "a@example.dev", "password123", true)
	ctx := context.Background()

	if _, err := convs.Create(ctx, a.ID, nil, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("no participants allowed: %v", err)
	}
	// The creator alone, even duplicated, is not a conversation.
	if _, err := convs.Create(ctx, a.ID, []string{a.ID}, ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("self-only conversation allowed: %v", err)
	}
	if _, err := convs.Create(ctx, a.ID, []string{"nope"}, ""); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown participant allowed: %v", err)
	}
}

func TestMessageSendAndList(t *testing.T) {
	f := newServiceFixture(t)
	convs, msgs := newChatServicesForTest(t, f)
	a := f.createUser(t, "a@example.dev", "password123", true)
	b := f.createUser(t, "b@example.dev", "password123", true)
	stranger := f.createUser(t, "x@example.dev", "password123", true)
	ctx := context.Background()

	conv, err := convs.Create(ctx, a.ID, []string{b.ID}, "")
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	if _, err := msgs.Send(ctx, conv.ID, a.ID, "  "); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("blank message allowed: %v", err)
	}
	if _, err := msgs.Send(ctx, conv.ID, stranger.ID, "hi"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("non-participant allowed to send: %v", err)
	}

	sent, err := msgs.Send(ctx, conv.ID, a.ID, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.ID == "" || sent.SenderID != a.ID {
		t.Fatalf("unexpected message: %+v", sent)
	}

	page, err := msgs.List(ctx, conv.ID, b.ID, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].Body != "hello" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if _, err := msgs.List(ctx, conv.ID, stranger.ID, time.Time{}, 0); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("non-participant allowed to read: %v", err)
	}
}

func TestConversationListAndMarkRead(t *testing.T) {
	f := newServiceFixture(t)
	convs, _ := newChatServicesForTest(t, f)
	a := f.createUser(t, "a@example.dev", "password123", true)
	b := f.createUser(t, "b@example.dev", "password123", true)
	stranger := f.createUser(t, "x@example.dev", "password123", true)
	ctx := context.Background()

	conv, err := convs.Create(ctx, a.ID, []string{b.ID}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mine, err := convs.ListForUser(ctx, a.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("list for participant: %d err=%v", len(mine), err)
	}
	none, err := convs.ListForUser(ctx, stranger.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("list for stranger: %d err=%v", len(none), err)
	}

	if err := convs.MarkRead(ctx, conv.ID, a.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := convs.MarkRead(ctx, conv.ID, stranger.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("stranger allowed to mark read: %v", err)
	}
}
