package logging

import (
	"context"
	"log/slog"
	"strings"
)

// stageLevelHandler enforces a minimum level while delegating output to the
// wrapped handler, which is configured with the most verbose level any stage
// needs. Loggers tagged with a stage that has an override switch to that
// stage's level.
type stageLevelHandler struct {
	next      slog.Handler
	level     slog.Level
	overrides map[string]slog.Level
}

func newStageLevelHandler(next slog.Handler, level slog.Level, overrides map[string]slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &stageLevelHandler{next: next, level: level, overrides: overrides}
}

func (h *stageLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *stageLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *stageLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, attr := range attrs {
		if attr.Key != FieldStage {
			continue
		}
		stage := strings.ToLower(strings.TrimSpace(attr.Value.String()))
		if override, ok := h.overrides[stage]; ok {
			level = override
		}
	}
	return &stageLevelHandler{
		next:      h.next.WithAttrs(attrs),
		level:     level,
		overrides: h.overrides,
	}
}

func (h *stageLevelHandler) WithGroup(name string) slog.Handler {
	return &stageLevelHandler{
		next:      h.next.WithGroup(name),
		level:     h.level,
		overrides: h.overrides,
	}
}
