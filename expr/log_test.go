package expr

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogRendersTree(t *testing.T) {
	buf := &bytes.Buffer{}
	l := slog.New(slog.NewTextHandler(buf, nil))
	l.Info("rewrote", "out", Slog(f.Not(v("a"))))
	assert.Contains(t, buf.String(), "out=!a")

	buf.Reset()
	Logger(l).Info("rewrote", "out", f.Not(v("b")))
	assert.Contains(t, buf.String(), "out=!b")
}

func TestIsLiteral(t *testing.T) {
	assert.True(t, IsLiteral(NewLiteral[string](true), true))
	assert.False(t, IsLiteral(NewLiteral[string](true), false))
	assert.False(t, IsLiteral(v("true"), true))
	assert.True(t, IsLiteral(f.And(v("a"), NewLiteral[string](false)), false))
}
