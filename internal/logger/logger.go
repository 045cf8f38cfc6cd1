// Package logger configures the process-wide slog logger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Setup installs the default logger: JSON on stdout in production, text with
// debug level otherwise.
func Setup(production bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, production)))
}

// NewHandler builds the handler Setup installs, writing to w.
func NewHandler(w io.Writer, production bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if !production {
		opts.Level = slog.LevelDebug
		return NewFieldsHandler(slog.NewTextHandler(w, opts))
	}
	return NewFieldsHandler(slog.NewJSONHandler(w, opts))
}

// FieldsHandler adds the LogFields carried by the record's context.
type FieldsHandler struct {
	slog.Handler
}

func NewFieldsHandler(h slog.Handler) *FieldsHandler {
	return &FieldsHandler{Handler: h}
}

func (h *FieldsHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := GetLogFields(ctx)
	if fields.OrgID != "" {
		r.AddAttrs(slog.String("org_id", fields.OrgID))
	}
	if fields.CompetitorID != "" {
		r.AddAttrs(slog.String("competitor_id", fields.CompetitorID))
	}
	if fields.View != "" {
		r.AddAttrs(slog.String("view", fields.View))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *FieldsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FieldsHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *FieldsHandler) WithGroup(name string) slog.Handler {
	return &FieldsHandler{Handler: h.Handler.WithGroup(name)}
}
