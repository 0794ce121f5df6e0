package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"teamfit/internal/domain"
)

// RateLimiter impone un intervalo minimo entre requests salientes al proveedor
// LLM. Es por proceso: instancias concurrentes del analyzer aplican cada una su
// propio presupuesto.
type RateLimiter struct {
	mu              sync.Mutex
	minInterval     time.Duration
	requestsPerSec  float64
	lastRequestTime time.Time
	requestCount    int
	totalWait       time.Duration
	logger          *zap.Logger
	sleep           func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter crea un limiter para la tasa configurada de requests por segundo.
func NewRateLimiter(requestsPerSecond float64, logger *zap.Logger) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	return &RateLimiter{
		minInterval:    time.Duration(float64(time.Second) / requestsPerSecond),
		requestsPerSec: requestsPerSecond,
		logger:         logger,
		sleep:          sleepCtx,
	}
}

// WaitIfNeeded bloquea hasta que haya pasado el intervalo minimo desde el
// request anterior, mas un jitter uniforme en [0, 100ms). Debe llamarse
// inmediatamente antes de cada request al LLM.
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if !rl.lastRequestTime.IsZero() {
		elapsed := now.Sub(rl.lastRequestTime)
		if elapsed < rl.minInterval {
			wait := rl.minInterval - elapsed
			wait += time.Duration(rand.Float64() * float64(100*time.Millisecond))
			if rl.logger != nil {
				rl.logger.Info("rate limiting before next request", zap.Duration("wait", wait))
			}
			if err := rl.sleep(ctx, wait); err != nil {
				return err
			}
			rl.totalWait += wait
		}
	}

	rl.lastRequestTime = time.Now()
	rl.requestCount++
	return nil
}

// Stats devuelve estadisticas best-effort del limiter.
func (rl *RateLimiter) Stats() domain.RateLimiterStats {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return domain.RateLimiterStats{
		TotalRequests:          rl.requestCount,
		RequestsPerSecondLimit: rl.requestsPerSec,
		TotalWaitTime:          rl.totalWait.Seconds(),
	}
}

// RequestsPerSecond expone la tasa configurada.
func (rl *RateLimiter) RequestsPerSecond() float64 {
	return rl.requestsPerSec
}

// MinInterval expone el intervalo minimo entre requests.
func (rl *RateLimiter) MinInterval() time.Duration {
	return rl.minInterval
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
