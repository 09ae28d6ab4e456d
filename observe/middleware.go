package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/rpcshield/queue"
)

// SubmitFunc is the shape of a payload submission call.
type SubmitFunc func(ctx context.Context, payload []byte) error

// Middleware wraps a submission function with tracing, metrics, and
// logging. The payload itself never reaches any of the three; only the
// call identity, its size, and a sanitized error description do.
func Middleware(obs Observer, metrics *CallMetrics, meta CallMeta, next SubmitFunc) SubmitFunc {
	logger := obs.Logger().WithCall(meta)

	return func(ctx context.Context, payload []byte) error {
		ctx, span := StartCallSpan(ctx, obs.Tracer(), meta)
		start := time.Now()

		err := next(ctx, payload)
		elapsed := time.Since(start)

		if metrics != nil {
			metrics.RecordCall(ctx, meta, elapsed, err)
		}

		if err != nil {
			sanitized := queue.SanitizeError(err)
			logger.Error(ctx, "rpc call failed",
				Field{Key: "error", Value: sanitized},
				Field{Key: "duration_ms", Value: elapsed.Milliseconds()},
				Field{Key: "payload_bytes", Value: len(payload)},
			)
			EndCallSpan(span, sanitizedError{sanitized})
			return err
		}

		logger.Debug(ctx, "rpc call succeeded",
			Field{Key: "duration_ms", Value: elapsed.Milliseconds()},
			Field{Key: "payload_bytes", Value: len(payload)},
		)
		EndCallSpan(span, nil)
		return nil
	}
}

// sanitizedError carries redacted error text across the span boundary so
// the original error never reaches the exporter.
type sanitizedError struct {
	text string
}

func (e sanitizedError) Error() string { return e.text }
