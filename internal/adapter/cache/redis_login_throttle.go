package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLoginThrottle counts consecutive failed logins per account and
// locks the account out for the configured window once the attempt
// budget is spent. A successful login clears the counter.
type RedisLoginThrottle struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginThrottle constructs a Redis-backed login throttle.
func NewRedisLoginThrottle(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

func throttleKey(email string) string {
	return "login_attempts:" + email
}

// Allow reports whether the account may attempt a login.
func (t *RedisLoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t == nil || t.client == nil {
		return true, nil
	}
	count, err := t.client.Get(ctx, throttleKey(email)).Int()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, fmt.Errorf("load login attempts: %w", err)
	}
	return count < t.maxAttempts, nil
}

// RecordFailure bumps the counter and refreshes the lockout window.
func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if t == nil || t.client == nil {
		return nil
	}
	key := throttleKey(email)
	if err := t.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("record login failure: %w", err)
	}
	if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
		return fmt.Errorf("expire login counter: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (t *RedisLoginThrottle) Reset(ctx context.Context, email string) error {
	if t == nil || t.client == nil {
		return nil
	}
	if err := t.client.Del(ctx, throttleKey(email)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("reset login counter: %w", err)
	}
	return nil
}
