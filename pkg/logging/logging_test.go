package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, true, slog.LevelDebug)

	ctx := AppendCtx(context.Background(), slog.String("run", "abc"))
	ctx = AppendCtx(ctx, slog.Int("sprite", 3))
	log.InfoContext(ctx, "decoded", "bytes", 10)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "decoded", rec["msg"])
	assert.Equal(t, "abc", rec["run"])
	assert.Equal(t, float64(3), rec["sprite"])
	assert.Equal(t, float64(10), rec["bytes"])
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, false, slog.LevelWarn)

	log.Info("hidden")
	assert.Empty(t, buf.String())
	log.With("k", "v").WithGroup("g").Warn("shown", "x", 1)
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
	assert.Contains(t, buf.String(), "g.x=1")
}

func TestAppendCtx_DoesNotShareParent(t *testing.T) {
	parent := AppendCtx(context.Background(), slog.String("a", "1"))
	left := AppendCtx(parent, slog.String("b", "2"))
	right := AppendCtx(parent, slog.String("c", "3"))

	assert.Equal(t, []string{"a=1"}, attrStrings(parent))
	assert.Equal(t, []string{"a=1", "b=2"}, attrStrings(left))
	assert.Equal(t, []string{"a=1", "c=3"}, attrStrings(right))
}

func attrStrings(ctx context.Context) []string {
	attrs, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	var out []string
	for _, a := range attrs {
		out = append(out, a.String())
	}
	return out
}

func TestRotating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pakctl.log")
	w := Rotating(path)
	log := Logger(w, false, slog.LevelInfo)
	log.Info("hello")
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello")
}
