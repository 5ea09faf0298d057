package securitymanager

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fmapi/firemon-api-go/pkg/firemon"
)

// LogLevels are the levels a server logger accepts.
var LogLevels = []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF"}

// Logging manages the server side loggers of Security Manager.
type Logging struct {
	sm *SecurityManager
}

func (l *Logging) url() string { return l.sm.URL() + "/logging" }

// All returns every logger.
func (l *Logging) All(ctx context.Context) ([]*Logger, error) {
	var resp struct {
		LoggingLevels []firemon.Record `json:"loggingLevels"`
	}
	if err := l.sm.Client().NewRequest(l.url()).Decode(ctx, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list loggers: %w", err)
	}
	out := make([]*Logger, 0, len(resp.LoggingLevels))
	for _, rec := range resp.LoggingLevels {
		out = append(out, &Logger{Record: rec, logging: l})
	}
	return out, nil
}

// Get returns the logger with exactly this name.
func (l *Logging) Get(ctx context.Context, name string) (*Logger, error) {
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*Logger
	for _, lg := range all {
		if lg.Name() == name {
			matches = append(matches, lg)
		}
	}
	return firemon.ExactlyOne(matches, "logger "+name)
}

// Filter returns loggers matching filter. The "logger" field matches any
// logger whose name contains it; other fields must be equal.
func (l *Logging) Filter(ctx context.Context, filter firemon.Filter) ([]*Logger, error) {
	if len(filter) == 0 {
		return nil, fmt.Errorf("%w: filter needs at least one field, use All instead", firemon.ErrInvalidArgument)
	}
	all, err := l.All(ctx)
	if err != nil {
		return nil, err
	}

	rest := map[string]any{}
	for k, v := range filter {
		if k != "logger" {
			rest[k] = v
		}
	}
	name, byName := filter["logger"]

	var out []*Logger
	for _, lg := range all {
		if byName && !strings.Contains(lg.Name(), fmt.Sprint(name)) {
			continue
		}
		if lg.Without("logger").Matches(rest) {
			out = append(out, lg)
		}
	}
	return out, nil
}

// Reset restores every logger to its default level.
func (l *Logging) Reset(ctx context.Context) error {
	return l.sm.Client().NewRequest(l.url(), firemon.WithKey("reset")).Delete(ctx)
}

// Logger is a server side logger and its level.
type Logger struct {
	firemon.Record
	logging *Logging
}

// Data returns the logger fields.
func (lg *Logger) Data() firemon.Record { return lg.Record }

// Name returns the logger name, for example "com.fm.sm".
func (lg *Logger) Name() string { return lg.Str("logger") }

func (lg *Logger) String() string { return lg.Name() }

// SetLevel changes the logger level.
func (lg *Logger) SetLevel(ctx context.Context, level string) error {
	level = strings.ToUpper(level)
	if !slices.Contains(LogLevels, level) {
		return fmt.Errorf("%w: unknown log level %q", firemon.ErrInvalidArgument, level)
	}
	_, err := lg.request(firemon.WithKey(level)).Post(ctx, nil)
	return err
}

// Reset restores the logger to its default level.
func (lg *Logger) Reset(ctx context.Context) error {
	return lg.request().Delete(ctx)
}

func (lg *Logger) request(opts ...firemon.RequestOption) *firemon.Request {
	return lg.logging.sm.Client().NewRequest(lg.logging.url()+"/"+lg.Name(), opts...)
}
