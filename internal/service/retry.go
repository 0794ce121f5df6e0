package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"teamfit/internal/llm"
)

const llmMaxRetries = 3

// retrySleep es inyectable para que los tests no duerman de verdad.
var retrySleep = sleepCtx

// completeWithRetry aplica la disciplina rate-limit-then-retry compartida por
// el extractor y el scorer: pasa por el rate limiter, y ante errores
// transitorios (rate limit del proveedor) reintenta hasta 3 veces con backoff
// exponencial 2^intento mas jitter uniforme en [1,3) segundos. Cualquier otro
// error se propaga de inmediato.
func completeWithRetry(
	ctx context.Context,
	client llm.Client,
	limiter *RateLimiter,
	logger *zap.Logger,
	model string,
	messages []llm.Message,
	temperature float64,
	maxTokens int,
) (string, error) {
	if limiter != nil {
		if err := limiter.WaitIfNeeded(ctx); err != nil {
			return "", err
		}
	}

	var lastErr error
	for attempt := 0; attempt < llmMaxRetries; attempt++ {
		content, err := client.Complete(ctx, model, messages, temperature, maxTokens)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if llm.Classify(err) != llm.KindTransient || attempt == llmMaxRetries-1 {
			return "", err
		}

		wait := time.Duration((math.Pow(2, float64(attempt)) + 1 + rand.Float64()*2) * float64(time.Second))
		if logger != nil {
			logger.Warn("rate limit hit, retrying",
				zap.Duration("wait", wait),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", llmMaxRetries),
			)
		}
		if err := retrySleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}
