package memory

import (
	"context"
	"testing"
	"time"

	"vet-clinic/internal/ports/session"
)

func TestSessionStore_TTL(t *testing.T) {
	store := NewSessionStore(time.Minute)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Save(context.Background(), &session.Session{ID: "s1", DiagnosisAccessCode: "ABCD1234"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(context.Background(), "s1")
	if err != nil || got.DiagnosisAccessCode != "ABCD1234" {
		t.Fatalf("expected session, got %+v err=%v", got, err)
	}

	// la copia devuelta no afecta al store
	got.DiagnosisAccessCode = "CHANGED"
	again, _ := store.Get(context.Background(), "s1")
	if again.DiagnosisAccessCode != "ABCD1234" {
		t.Fatalf("store mutated through returned pointer")
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(context.Background(), "s1"); err != session.ErrNotFound {
		t.Fatalf("expected ErrNotFound after ttl, got %v", err)
	}
}
