package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/funildigital/checkout/internal/config"
)

const keyPaymentIP = "checkout:payments:ip:%s"

const (
	paymentRate  = 0.5
	paymentBurst = 5
)

// PaymentLimiter throttles payment creation per client IP. It fails open:
// without Redis, or when Redis errors, every request is allowed. Losing a
// throttle is cheaper than losing a sale.
type PaymentLimiter struct {
	bucket *TokenBucket
	log    *zap.Logger
}

func NewPaymentLimiter(cfg config.Config, log *zap.Logger) *PaymentLimiter {
	limiter := &PaymentLimiter{log: log.Named("ratelimit.payment")}

	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return limiter
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	limiter.bucket = NewTokenBucket(client)
	return limiter
}

func (l *PaymentLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *PaymentLimiter) Allow(ctx context.Context, clientIP string) bool {
	if !l.Enabled() || clientIP == "" {
		return true
	}
	allowed, err := l.bucket.Allow(ctx, fmt.Sprintf(keyPaymentIP, clientIP), paymentRate, paymentBurst)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request", zap.Error(err))
		return true
	}
	return allowed
}
