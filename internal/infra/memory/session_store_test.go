package memory

import (
	"context"
	"testing"

	"totem-quiz-bot/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	key := domain.SessionKey{Platform: domain.PlatformTelegram, UserID: 7}

	sc, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Key != key || !sc.Disposable() {
		t.Fatalf("expected fresh context, got %+v", sc)
	}

	sc.PromptMessageID = 100
	if err := store.Save(ctx, sc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := store.Load(ctx, key)
	if got.PromptMessageID != 100 {
		t.Fatalf("expected prompt 100, got %d", got.PromptMessageID)
	}

	other, _ := store.Load(ctx, domain.SessionKey{Platform: domain.PlatformTelegram, UserID: 8})
	if other.PromptMessageID != 0 {
		t.Fatalf("contexts leaked across users: %+v", other)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected store empty, len=%d", store.Len())
	}
}
