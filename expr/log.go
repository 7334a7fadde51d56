package expr

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
)

// loggable is satisfied by every Expr instantiation
type loggable interface {
	fmt.Stringer
	Kind() Kind
	Digest() Digest
}

// Slog wraps an Expr as a slog.LogValuer so the tree is only rendered
// if the record is actually written
func Slog[K cmp.Ordered](e Expr[K]) slog.LogValuer {
	return exprLogValuer{e}
}

type exprLogValuer struct{ loggable }

func (l exprLogValuer) LogValue() slog.Value {
	return slog.StringValue(l.String())
}

// Handler wraps underlying so that expression attributes are rendered lazily
func Handler(underlying slog.Handler) slog.Handler {
	return &exprLogHandler{underlying: underlying}
}

// Logger is a slog.Logger capable of lazy-printing expression trees
func Logger(underlying *slog.Logger) *slog.Logger {
	return slog.New(Handler(underlying.Handler()))
}

type exprLogHandler struct {
	underlying slog.Handler
}

func (l *exprLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *exprLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(wrap(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *exprLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrap(attr)
	}
	return Handler(l.underlying.WithAttrs(wrapped))
}

func (l *exprLogHandler) WithGroup(name string) slog.Handler {
	return Handler(l.underlying.WithGroup(name))
}

func wrap(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	if e, isExpr := attr.Value.Any().(loggable); isExpr {
		attr.Value = slog.AnyValue(exprLogValuer{e})
	}
	return attr
}
