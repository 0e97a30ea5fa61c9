package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cloudforge/invoice-service/internal/domain"
)

// SessionStore implements account.SessionStore on Redis:
// - rt:<token> -> userID with TTL
// - rtu:<userID> -> set of live tokens, so RevokeAll can drop them all.
// The set can hold tokens whose rt: key already expired; membership is
// only consulted for revocation, never for validation.
type SessionStore struct {
	rdb *goredis.Client

	tokenPrefix string
	userPrefix  string
	tokenBytes  int
}

func NewSessionStore(c *Client) *SessionStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &SessionStore{
		rdb:         rdb,
		tokenPrefix: "rt:",
		userPrefix:  "rtu:",
		tokenBytes:  32, // 256-bit
	}
}

func (s *SessionStore) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrMissingField("user_id")
	}
	if s.rdb == nil {
		return "", errors.New("redis session store not configured")
	}
	if ttl <= 0 {
		return "", domain.ErrMissingField("ttl")
	}

	token, err := s.newOpaqueToken()
	if err != nil {
		return "", err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.tokenPrefix+token, userID, ttl)
	pipe.SAdd(ctx, s.userPrefix+userID, token)
	pipe.Expire(ctx, s.userPrefix+userID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", domain.ErrRedisUnavailable(err)
	}

	return token, nil
}

func (s *SessionStore) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrRefreshTokenInvalid()
	}
	if s.rdb == nil {
		return "", errors.New("redis session store not configured")
	}

	uid, err := s.rdb.Get(ctx, s.tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrRefreshTokenInvalid()
		}
		return "", domain.ErrRedisUnavailable(err)
	}
	if strings.TrimSpace(uid) == "" {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return uid, nil
}

func (s *SessionStore) RevokeRefreshToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if s.rdb == nil {
		return errors.New("redis session store not configured")
	}

	uid, err := s.rdb.Get(ctx, s.tokenPrefix+token).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return domain.ErrRedisUnavailable(err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.tokenPrefix+token)
	if uid != "" {
		pipe.SRem(ctx, s.userPrefix+uid, token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *SessionStore) RevokeAll(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if s.rdb == nil {
		return errors.New("redis session store not configured")
	}

	tokens, err := s.rdb.SMembers(ctx, s.userPrefix+userID).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return domain.ErrRedisUnavailable(err)
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, s.tokenPrefix+t)
	}
	pipe.Del(ctx, s.userPrefix+userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *SessionStore) newOpaqueToken() (string, error) {
	b := make([]byte, s.tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
