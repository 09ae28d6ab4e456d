package observe

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Log levels in order of severity.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// redactedFields are field keys whose values are never emitted. Payload
// bytes and anything credential-shaped stay out of the log stream; only
// identifiers, counts, and sizes may describe a job.
var redactedFields = map[string]bool{
	"payload":       true,
	"payloads":      true,
	"private_key":   true,
	"privateKey":    true,
	"secret":        true,
	"token":         true,
	"password":      true,
	"api_key":       true,
	"apiKey":        true,
	"mnemonic":      true,
	"seed":          true,
	"signature":     true,
	"credential":    true,
	"authorization": true,
}

// structuredLogger writes JSON lines to stderr.
type structuredLogger struct {
	mu     *sync.Mutex
	level  int
	fields []Field
}

// NewLogger creates a structured JSON logger at the given level.
func NewLogger(level string) Logger {
	return &structuredLogger{
		mu:    &sync.Mutex{},
		level: parseLevel(level),
	}
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(levelInfo, "info", msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(levelWarn, "warn", msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(levelError, "error", msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(levelDebug, "debug", msg, fields)
}

// WithCall returns a child logger that annotates every entry with the
// call's network and method.
func (l *structuredLogger) WithCall(meta CallMeta) Logger {
	child := &structuredLogger{
		mu:     l.mu,
		level:  l.level,
		fields: make([]Field, 0, len(l.fields)+2),
	}
	child.fields = append(child.fields, l.fields...)
	child.fields = append(child.fields,
		Field{Key: "rpc.network", Value: meta.Network},
		Field{Key: "rpc.method", Value: meta.Method},
	)
	return child
}

func (l *structuredLogger) log(level int, levelName, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339Nano),
		"level": levelName,
		"msg":   msg,
	}

	for _, f := range l.fields {
		entry[f.Key] = sanitizeValue(f.Key, f.Value)
	}
	for _, f := range fields {
		entry[f.Key] = sanitizeValue(f.Key, f.Value)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Logging is best-effort; a field that cannot marshal must not
		// take the process down.
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	os.Stderr.Write(append(data, '\n'))
}

func sanitizeValue(key string, value any) any {
	if redactedFields[key] {
		return "[REDACTED]"
	}
	return value
}
