package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InjectTraceID stamps the context logger with a trace identifier so every
// log line for one request or sweep carries the same id. A caller-supplied
// id, such as one taken from an inbound X-Request-Id header, wins over a
// generated one.
func InjectTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	logger := log.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}
