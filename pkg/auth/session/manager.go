package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/fork-backend/pkg/config"
	redisclient "github.com/angelmondragon/fork-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const (
	refreshSecretBytes = 32
	tokenSeparator     = "."
	valueSeparator     = ":"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Session is one refresh grant. AccessID doubles as the JWT jti.
type Session struct {
	AccessID     string
	UserID       uuid.UUID
	RefreshToken string
}

// Manager stores refresh sessions in Redis. A refresh token is the access id
// and a random secret joined by a dot; only the secret and the owning user are
// persisted, keyed by access id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

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
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Start opens a new session for userID.
func (m *Manager) Start(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	accessID := uuid.NewString()
	value := userID.String() + valueSeparator + secret
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), value, m.ttl); err != nil {
		return nil, err
	}
	return &Session{
		AccessID:     accessID,
		UserID:       userID,
		RefreshToken: accessID + tokenSeparator + secret,
	}, nil
}

// Rotate exchanges a refresh token for a new session and invalidates the old one.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (*Session, error) {
	accessID, userID, err := m.lookup(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	next, err := m.Start(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := m.store.Del(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		return nil, err
	}
	return next, nil
}

// Revoke ends the session a refresh token belongs to.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	accessID, _, err := m.lookup(ctx, refreshToken)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Manager) lookup(ctx context.Context, refreshToken string) (string, uuid.UUID, error) {
	accessID, secret, ok := strings.Cut(strings.TrimSpace(refreshToken), tokenSeparator)
	if !ok || accessID == "" || secret == "" {
		return "", uuid.Nil, ErrInvalidRefreshToken
	}
	stored, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", uuid.Nil, ErrInvalidRefreshToken
		}
		return "", uuid.Nil, err
	}
	rawUser, storedSecret, ok := strings.Cut(stored, valueSeparator)
	if !ok {
		return "", uuid.Nil, ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(storedSecret), []byte(secret)) != 1 {
		return "", uuid.Nil, ErrInvalidRefreshToken
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return "", uuid.Nil, ErrInvalidRefreshToken
	}
	return accessID, userID, nil
}

func generateSecret() (string, error) {
	bytes := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
