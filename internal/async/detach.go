package async

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Detach runs fn on its own goroutine with a fresh deadline-bound context
// and an error boundary. It exists to make fire-and-forget explicit: the
// task never blocks the caller and its failure never propagates, only
// logs. The parent context is deliberately not inherited so a finished
// HTTP request cannot cancel the task mid-flight.
func Detach(log *zap.Logger, name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("detached task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Warn("detached task failed",
				zap.String("task", name),
				zap.Error(err),
			)
		}
	}()
}
