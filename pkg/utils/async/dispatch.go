package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/chatops-lab/chatrelay/pkg/utils/logging"
)

// Dispatch runs handler in its own goroutine, detached from the request
// lifecycle. The handler gets a fresh background context carrying the
// caller's logger, so it survives the originating request being answered.
// Failures and panics are logged, never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		logger := logging.From(bgCtx)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logger.Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
