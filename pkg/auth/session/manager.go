package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/essyessentials/storefront-backend/pkg/config"
	redisclient "github.com/essyessentials/storefront-backend/pkg/redis"
	"github.com/google/uuid"
)

const refreshSecretBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// record is what Redis holds per access session.
type record struct {
	AdminID string `json:"admin_id"`
	Secret  string `json:"secret"`
}

// Manager handles admin session creation, rotation and revocation. A refresh
// token is "<accessID>.<secret>" so it can be rotated without the access token.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Start opens a session for adminID and returns its access id (the JWT jti)
// and refresh token.
func (m *Manager) Start(ctx context.Context, adminID uuid.UUID) (string, string, error) {
	if adminID == uuid.Nil {
		return "", "", fmt.Errorf("admin id is required")
	}
	accessID := NewAccessID()
	token, err := m.write(ctx, accessID, adminID)
	if err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

// Rotate validates the refresh token, invalidates its session and opens a new
// one for the same admin.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (uuid.UUID, string, string, error) {
	accessID, secret, ok := splitRefreshToken(refreshToken)
	if !ok {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(accessID)
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if redisclient.IsNil(err) {
			return uuid.Nil, "", "", ErrInvalidRefreshToken
		}
		return uuid.Nil, "", "", err
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(rec.Secret), []byte(secret)) != 1 {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}
	adminID, err := uuid.Parse(rec.AdminID)
	if err != nil {
		return uuid.Nil, "", "", ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	newToken, err := m.write(ctx, newAccessID, adminID)
	if err != nil {
		return uuid.Nil, "", "", err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return uuid.Nil, "", "", err
	}

	return adminID, newAccessID, newToken, nil
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the provided access ID still has an active session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if redisclient.IsNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) write(ctx context.Context, accessID string, adminID uuid.UUID) (string, error) {
	secret, err := generateSecret()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(record{AdminID: adminID.String(), Secret: secret})
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", err
	}
	return accessID + "." + secret, nil
}

func splitRefreshToken(token string) (string, string, bool) {
	accessID, secret, found := strings.Cut(strings.TrimSpace(token), ".")
	if !found || accessID == "" || secret == "" {
		return "", "", false
	}
	return accessID, secret, true
}

func generateSecret() (string, error) {
	bytes := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
