// Package observability carries the ambient logging, metrics, and
// tracing stack every component logs/measures/traces through, rather
// than reaching for fmt.Println or log.Printf directly.
package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// Logger wraps log/slog with agent/task/workspace correlation and
// redaction of API keys and other secrets that tend to end up in LLM
// request/response payloads.
type Logger struct {
	logger  *slog.Logger
	config  LogConfig
	redacts []*regexp.Regexp
}

// LogConfig configures Logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Format is "json" or "text".
	Format string
	// Output defaults to os.Stdout.
	Output io.Writer
	// AddSource includes file:line in every record.
	AddSource bool
	// RedactPatterns are additional regexes appended to DefaultRedactPatterns.
	RedactPatterns []string
}

// ContextKey namespaces values this package reads out of a context.Context.
type ContextKey string

const (
	AgentIDKey     ContextKey = "agent_id"
	WorkspaceIDKey ContextKey = "workspace_id"
	TaskIDKey      ContextKey = "task_id"
)

// DefaultRedactPatterns covers provider API keys, bearer tokens, and
// JWTs, since agent conversation content frequently echoes back
// fragments of tool output or error messages containing them.
var DefaultRedactPatterns = []string{
	`(?i)(api[_-]?key|apikey)[\s:=]+["\']?([a-zA-Z0-9_\-]{16,})["\']?`,
	`(?i)(bearer|token)[\s:]+([a-zA-Z0-9_\-\.]{16,})`,
	`(?i)(secret|password|passwd|pwd)[\s:=]+["\']?([^\s"']{8,})["\']?`,
	`sk-ant-[a-zA-Z0-9_-]{95,}`,
	`sk-[a-zA-Z0-9]{48,}`,
	`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`,
	`(?i)(secret|key|token)[\s:=]+["\']?([a-fA-F0-9]{32,})["\']?`,
}

// NewLogger builds a Logger from config, defaulting Output to
// os.Stdout, Level to "info", Format to "json".
func NewLogger(config LogConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Level == "" {
		config.Level = "info"
	}
	if config.Format == "" {
		config.Format = "json"
	}

	opts := &slog.HandlerOptions{Level: LogLevelFromString(config.Level), AddSource: config.AddSource}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	redacts := make([]*regexp.Regexp, 0, len(DefaultRedactPatterns)+len(config.RedactPatterns))
	for _, pattern := range append(append([]string{}, DefaultRedactPatterns...), config.RedactPatterns...) {
		if re, err := regexp.Compile(pattern); err == nil {
			redacts = append(redacts, re)
		}
	}

	return &Logger{logger: slog.New(handler), config: config, redacts: redacts}
}

// MustNewLogger panics if the logger cannot be created, for use during
// process startup.
func MustNewLogger(config LogConfig) *Logger {
	logger := NewLogger(config)
	if logger == nil {
		panic("observability: failed to create logger")
	}
	return logger
}

// WithContext returns a logger that attaches agent/task/workspace
// correlation fields from ctx to every subsequent record.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	attrs := make([]any, 0, 6)
	if v, ok := ctx.Value(AgentIDKey).(string); ok && v != "" {
		attrs = append(attrs, "agent_id", v)
	}
	if v, ok := ctx.Value(WorkspaceIDKey).(string); ok && v != "" {
		attrs = append(attrs, "workspace_id", v)
	}
	if v, ok := ctx.Value(TaskIDKey).(string); ok && v != "" {
		attrs = append(attrs, "task_id", v)
	}
	if len(attrs) == 0 {
		return l
	}
	return &Logger{logger: l.logger.With(attrs...), config: l.config, redacts: l.redacts}
}

// WithFields returns a logger with additional static fields attached
// to every record, e.g. component name.
func (l *Logger) WithFields(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...), config: l.config, redacts: l.redacts}
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) { l.log(ctx, slog.LevelDebug, msg, args...) }
func (l *Logger) Info(ctx context.Context, msg string, args ...any)  { l.log(ctx, slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(ctx context.Context, msg string, args ...any)  { l.log(ctx, slog.LevelWarn, msg, args...) }
func (l *Logger) Error(ctx context.Context, msg string, args ...any) { l.log(ctx, slog.LevelError, msg, args...) }

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	msg = l.redactString(msg)

	attrs := make([]any, 0, len(args)+6)
	if v, ok := ctx.Value(AgentIDKey).(string); ok && v != "" {
		attrs = append(attrs, "agent_id", v)
	}
	if v, ok := ctx.Value(WorkspaceIDKey).(string); ok && v != "" {
		attrs = append(attrs, "workspace_id", v)
	}
	if v, ok := ctx.Value(TaskIDKey).(string); ok && v != "" {
		attrs = append(attrs, "task_id", v)
	}
	for _, arg := range args {
		attrs = append(attrs, l.redactValue(arg))
	}

	l.logger.Log(ctx, level, msg, attrs...)
}

func (l *Logger) redactValue(v any) any {
	switch val := v.(type) {
	case string:
		return l.redactString(val)
	case error:
		return l.redactString(val.Error())
	case []byte:
		return l.redactString(string(val))
	case map[string]any:
		return l.redactMap(val)
	default:
		if b, err := json.Marshal(v); err == nil {
			return l.redactString(string(b))
		}
		return v
	}
}

func (l *Logger) redactString(s string) string {
	for _, re := range l.redacts {
		s = re.ReplaceAllString(s, "[REDACTED]")
	}
	return s
}

var sensitiveKeys = map[string]bool{
	"password": true, "passwd": true, "secret": true, "token": true,
	"api_key": true, "apikey": true, "private_key": true, "privatekey": true,
	"auth": true, "authorization": true,
}

func (l *Logger) redactMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if sensitiveKeys[strings.ToLower(strings.ReplaceAll(k, "-", "_"))] {
			result[k] = "[REDACTED]"
		} else {
			result[k] = l.redactValue(v)
		}
	}
	return result
}

// WithAgentID attaches an agent id to ctx for later WithContext/log calls.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, AgentIDKey, agentID)
}

// WithWorkspaceID attaches a workspace id to ctx.
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, WorkspaceIDKey, workspaceID)
}

// WithTaskID attaches a task id to ctx.
func WithTaskID(ctx context.Context, taskID string) context.Context {
	return context.WithValue(ctx, TaskIDKey, taskID)
}

// LogLevelFromString converts s to a slog.Level, defaulting to Info.
func LogLevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
