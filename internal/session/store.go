// Package session remembers who signed in last so a client can resume
// without asking again. Only the email and provider are kept; no secret
// ever reaches the key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

const (
	fieldEmail    = "email"
	fieldProvider = "provider"
)

// Client is the part of *redis.Client the store needs.
type Client interface {
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store persists the last session per profile key.
type Store struct {
	client Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore builds a store. A zero ttl keeps sessions until cleared.
func NewStore(client Client, prefix string, ttl time.Duration, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = "ticket-tracker:session"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Save records the session under profile, replacing any earlier one.
func (s *Store) Save(ctx context.Context, profile string, sess domain.Session) error {
	if strings.TrimSpace(sess.Email) == "" {
		return fmt.Errorf("save session: %w: email required", domain.ErrValidation)
	}
	if _, ok := domain.ParseProviderType(string(sess.Provider)); !ok {
		return fmt.Errorf("save session: %w: unknown provider %q", domain.ErrValidation, sess.Provider)
	}
	key := s.key(profile)
	if err := s.client.HSet(ctx, key, fieldEmail, sess.Email, fieldProvider, string(sess.Provider)).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire session: %w", err)
		}
	}
	s.logger.Debug("session saved", zap.String("profile", profile), zap.String("provider", string(sess.Provider)))
	return nil
}

// Load returns the stored session. domain.ErrNotFound means nothing to
// resume; a stored entry with an unknown provider is treated the same way.
func (s *Store) Load(ctx context.Context, profile string) (*domain.Session, error) {
	values, err := s.client.HGetAll(ctx, s.key(profile)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	email := values[fieldEmail]
	provider, ok := domain.ParseProviderType(values[fieldProvider])
	if email == "" || !ok {
		if len(values) > 0 {
			s.logger.Warn("ignoring malformed session", zap.String("profile", profile))
		}
		return nil, domain.ErrNotFound
	}
	return &domain.Session{Email: email, Provider: provider}, nil
}

// Clear forgets the session for profile. Clearing an absent session is not an error.
func (s *Store) Clear(ctx context.Context, profile string) error {
	if err := s.client.Del(ctx, s.key(profile)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) key(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return s.prefix + ":" + profile
}
