package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/textflow"
	"github.com/gogpu/textflow/internal/markup"
	"github.com/gogpu/textflow/text"
)

func TestPrintLayout(t *testing.T) {
	engine := textflow.New()
	if err := registerFonts(engine.Fonts(), ""); err != nil {
		t.Fatalf("registerFonts: %v", err)
	}
	content, err := markup.Parse("Hello {mono:World}[br]again")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	styles := text.StyleSheet{"": {Family: "Body"}, "mono": {Family: "Go Mono"}}
	l, err := engine.Layout(content, styles, text.Constraints{Width: 500})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	var buf bytes.Buffer
	printLayout(&buf, l)
	out := buf.String()

	if !strings.HasPrefix(out, "2 lines, LTR") {
		t.Errorf("header = %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{`"Hello World\u2029"`, `"again"`, "fonts: Go, Go Mono"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestRegisterFonts_MissingFile(t *testing.T) {
	engine := textflow.New()
	if err := registerFonts(engine.Fonts(), "/nonexistent/font.ttf"); err == nil {
		t.Fatal("expected error for missing font file")
	}
}

func TestInput_Args(t *testing.T) {
	got, err := input([]string{"a", "b"})
	if err != nil || got != "a b" {
		t.Fatalf("input = %q, %v", got, err)
	}
}
