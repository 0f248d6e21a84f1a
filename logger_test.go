package textflow

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/textflow/text"
)

func TestSetLogger_PropagatesToText(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	if text.Logger() != custom {
		t.Error("SetLogger did not propagate to the text package")
	}
	if Logger() != custom {
		t.Error("Logger() did not return the logger set via SetLogger")
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestSetLogger_CapturesCacheDecisions(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	e := newTestEngine(t)
	content := []text.InlineContent{text.TextRun{Text: "logged"}}
	for range 2 {
		if _, err := e.Layout(content, testStyles, text.Constraints{Width: 100}); err != nil {
			t.Fatalf("Layout: %v", err)
		}
	}
	if !strings.Contains(buf.String(), "layout cache hit") {
		t.Errorf("expected a cache hit record, got:\n%s", buf.String())
	}
}
