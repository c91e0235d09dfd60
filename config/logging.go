package config

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is finer than slog.LevelDebug, for the occasional line noisy
// enough that even debug builds shouldn't print it by default.
const LevelTrace = slog.Level(-8)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
}

// NewLogger builds the process-wide structured logger for cfg.LogLevel. The
// returned logger promotes remote_addr and nick context values onto every
// log line written through a context-aware method (InfoContext, and so on),
// so a session's logs can be filtered without threading those fields
// through every call site by hand.
func NewLogger(cfg Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "trace":
		level = LevelTrace
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		fallthrough
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				lvl := a.Value.Any().(slog.Level)
				label, exists := levelNames[lvl]
				if !exists {
					label = lvl.String()
				}
				a.Value = slog.StringValue(label)
			}
			return a
		},
	}
	return slog.New(contextHandler{slog.NewTextHandler(os.Stdout, opts)})
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if addr := ctx.Value(ctxKeyRemoteAddr); addr != nil {
		r.AddAttrs(slog.Attr{Key: "remote_addr", Value: slog.StringValue(addr.(string))})
	}
	if nick := ctx.Value(ctxKeyNick); nick != nil {
		r.AddAttrs(slog.Attr{Key: "nick", Value: slog.StringValue(nick.(string))})
	}
	if connID := ctx.Value(ctxKeyConnID); connID != nil {
		r.AddAttrs(slog.Attr{Key: "conn_id", Value: slog.StringValue(connID.(string))})
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

type ctxKey int

const (
	ctxKeyRemoteAddr ctxKey = iota
	ctxKeyNick
	ctxKeyConnID
)

// WithRemoteAddr returns a context that causes NewLogger's handler to
// attach remote_addr to every log line written through it.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ctxKeyRemoteAddr, addr)
}

// WithNick returns a context that causes NewLogger's handler to attach nick
// to every log line written through it.
func WithNick(ctx context.Context, nick string) context.Context {
	return context.WithValue(ctx, ctxKeyNick, nick)
}

// WithConnID returns a context that causes NewLogger's handler to attach
// conn_id to every log line written through it. Unlike nick, a connection's
// id never changes for the lifetime of the TCP connection, so it is the
// stable key for correlating log lines across a rename.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyConnID, id)
}
