// Package throttle limits how many lifecycle emails one address can trigger
// within a fixed window.
package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-wellness/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "wellness:mail:"

var ErrThrottled = errors.New("too many emails requested, try again later")

type Limiter struct {
	client redis.Cmdable
	max    int64
	window time.Duration
}

// New returns nil when client is nil or the limit is disabled. A nil Limiter allows everything.
func New(client redis.Cmdable, cfg config.ThrottleConfig) *Limiter {
	if client == nil || cfg.MaxEmails <= 0 || cfg.Window <= 0 {
		return nil
	}
	return &Limiter{
		client: client,
		max:    int64(cfg.MaxEmails),
		window: cfg.Window,
	}
}

// Allow counts one email for key. Redis failures are logged and the email is allowed.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	if l == nil {
		return nil
	}

	redisKey := keyPrefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Mail throttle unavailable, allowing request")
		return nil
	}
	if count == 1 {
		if err = l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to set mail throttle window")
		}
	}

	if count > l.max {
		return ErrThrottled
	}
	return nil
}
