package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-clinic/internal/ports/session"
)

// Requiere un Redis real: REDIS_TEST_URL=redis://localhost:6379/15 go test ./...
func newTestStore(t *testing.T, ttl time.Duration) *SessionStore {
	t.Helper()

	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	client, err := Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, ttl)
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	sess := &session.Session{
		ID:                  uuid.NewString(),
		DiagnosisAccessCode: "A1B2C3D4",
		CreatedAt:           time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.DiagnosisAccessCode, got.DiagnosisAccessCode)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionStore_Expires(t *testing.T) {
	store := newTestStore(t, time.Second)
	ctx := context.Background()

	sess := &session.Session{ID: uuid.NewString(), CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, sess))

	time.Sleep(1500 * time.Millisecond)
	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestOpen_BadURL(t *testing.T) {
	_, err := Open(context.Background(), "://nope")
	assert.Error(t, err)
}
