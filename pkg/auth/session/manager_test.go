package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerStartAndRotate(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()
	adminID := uuid.New()

	accessID, token, err := manager.Start(ctx, adminID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.HasPrefix(token, accessID+".") {
		t.Fatalf("refresh token %q should embed access id %q", token, accessID)
	}
	if _, ok := store.data[store.AccessSessionKey(accessID)]; !ok {
		t.Fatalf("expected session to be stored")
	}

	if _, _, _, err := manager.Rotate(ctx, accessID+".wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	gotAdmin, newAccessID, newToken, err := manager.Rotate(ctx, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if gotAdmin != adminID {
		t.Fatalf("expected admin %s, got %s", adminID, gotAdmin)
	}
	if _, exists := store.data[store.AccessSessionKey(accessID)]; exists {
		t.Fatalf("old access key left behind")
	}
	if newAccessID == accessID || newToken == token {
		t.Fatalf("rotation must issue fresh identifiers")
	}

	if _, _, _, err := manager.Rotate(ctx, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reusing a rotated token must fail, got %v", err)
	}
}

func TestManagerRotateRejectsMalformed(t *testing.T) {
	manager, _ := newTestManager()
	for _, token := range []string{"", "no-dot", ".secret", "access."} {
		if _, _, _, err := manager.Rotate(context.Background(), token); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("token %q: expected invalid refresh token, got %v", token, err)
		}
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	manager, _ := newTestManager()
	ctx := context.Background()

	accessID, _, err := manager.Start(ctx, uuid.New())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	ok, err := manager.HasSession(ctx, accessID)
	if err != nil || !ok {
		t.Fatalf("expected active session, ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = manager.HasSession(ctx, accessID)
	if err != nil || ok {
		t.Fatalf("expected revoked session, ok=%v err=%v", ok, err)
	}
}
