package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campus/internal/auth/models"
	"campus/pkg/platform/sentinel"
)

const keyPrefix = "verify:"

// RedisStore keeps pending codes in Redis; expiry is enforced by key TTL.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock overrides the time source used to derive key TTLs.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type record struct {
	Email     string    `json:"email"`
	Purpose   string    `json:"purpose"`
	Code      string    `json:"code"`
	Verified  bool      `json:"verified"`
	ExpiresAt time.Time `json:"expires_at"`
}

func redisKey(email string, purpose models.Purpose) string {
	return keyPrefix + string(purpose) + ":" + models.NormalizeEmail(email)
}

// Save stores v with a TTL matching its expiry, replacing any pending code.
func (s *RedisStore) Save(ctx context.Context, v *models.Verification) error {
	ttl := v.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("verification already expired: %w", sentinel.ErrExpired)
	}
	payload, err := json.Marshal(toRecord(v))
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	return s.client.Set(ctx, redisKey(v.Email, v.Purpose), payload, ttl).Err()
}

func (s *RedisStore) Find(ctx context.Context, email string, purpose models.Purpose) (*models.Verification, error) {
	raw, err := s.client.Get(ctx, redisKey(email, purpose)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	return fromRecord(rec), nil
}

// MarkVerified rewrites the record with Verified set, keeping the key's TTL.
func (s *RedisStore) MarkVerified(ctx context.Context, email string, purpose models.Purpose) error {
	v, err := s.Find(ctx, email, purpose)
	if err != nil {
		return err
	}
	v.Verified = true
	payload, err := json.Marshal(toRecord(v))
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	err = s.client.SetArgs(ctx, redisKey(email, purpose), payload, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrNotFound
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, email string, purpose models.Purpose) error {
	return s.client.Del(ctx, redisKey(email, purpose)).Err()
}

func toRecord(v *models.Verification) record {
	return record{
		Email:     models.NormalizeEmail(v.Email),
		Purpose:   string(v.Purpose),
		Code:      v.Code,
		Verified:  v.Verified,
		ExpiresAt: v.ExpiresAt.UTC(),
	}
}

func fromRecord(r record) *models.Verification {
	return &models.Verification{
		Email:     r.Email,
		Purpose:   models.Purpose(r.Purpose),
		Code:      r.Code,
		Verified:  r.Verified,
		ExpiresAt: r.ExpiresAt,
	}
}
