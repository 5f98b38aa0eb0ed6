package userauth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// TokenRevoker records tokens that must be rejected even though they are
// still cryptographically valid. Records carry a TTL equal to the remaining
// lifetime of the token at blocking time, so the store never grows beyond the
// set of tokens that could still be presented.
type TokenRevoker interface {
	// IsBlocked reports whether the token has been revoked. No side effects.
	IsBlocked(ctx context.Context, token string) (bool, error)

	// Block revokes the token until expiresAt. Blocking the same token twice
	// is idempotent; an expiresAt already in the past is a no-op.
	Block(ctx context.Context, token string, expiresAt time.Time) error

	// BlockOnce atomically revokes the token and reports whether this call
	// created the record. It returns false when the token was already
	// blocked, which is how the verifier enforces exactly-once consumption
	// under concurrent replay.
	BlockOnce(ctx context.Context, token string, expiresAt time.Time) (bool, error)
}

// Zero is stored as the record value; only the key and its TTL matter.
const revocationMarker = 0

// RedisRevocationStore keeps revocation records in Redis, whose SET EX and
// SET NX EX primitives give us expiry-aligned cleanup and atomic
// check-then-set for free.
type RedisRevocationStore struct {
	client *redis.Client
	logger Logger
}

var _ TokenRevoker = (*RedisRevocationStore)(nil)

// NewRedisRevocationStore wraps an existing client. The client's connection
// pool is shared and safe for concurrent use.
func NewRedisRevocationStore(client *redis.Client, logger Logger) *RedisRevocationStore {
	if logger == nil {
		logger = defLogger{}
	}
	return &RedisRevocationStore{client: client, logger: logger}
}

func (s *RedisRevocationStore) IsBlocked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, token).Result()
	if err != nil {
		return false, s.unavailable(err, "revocation lookup failed")
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) Block(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, token, revocationMarker, ttl).Err(); err != nil {
		return s.unavailable(err, "revocation insert failed")
	}
	return nil
}

func (s *RedisRevocationStore) BlockOnce(ctx context.Context, token string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return true, nil
	}

	created, err := s.client.SetNX(ctx, token, revocationMarker, ttl).Result()
	if err != nil {
		return false, s.unavailable(err, "revocation insert failed")
	}
	return created, nil
}

func (s *RedisRevocationStore) unavailable(err error, msg string) error {
	s.logger.Error("RedisRevocationStore unavailable: %s", err)
	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(TextCodeStoreUnavailable)
}
