package obs

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Attach a request id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// Return the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs how long the named operation took. Use as
//
//	defer obs.Time(ctx, logger, "op")(&err)
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	return TimeWithClock(ctx, clockwork.NewRealClock(), logger, name)
}

func TimeWithClock(ctx context.Context, clock clockwork.Clock, logger *slog.Logger, name string) func(errp *error) {
	start := clock.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		if logger == nil {
			return
		}
		dur := clock.Since(start)

		if errp != nil && *errp != nil {
			logger.WarnContext(ctx, "operation failed",
				"req_id", reqID, "op", name, "dur_ms", dur.Milliseconds(), "error", *errp)
			return
		}
		logger.DebugContext(ctx, "operation done", "req_id", reqID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
