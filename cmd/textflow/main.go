// Command textflow lays out a paragraph of inline markup and prints the
// resulting lines.
//
// Usage:
//
//	textflow [flags] [markup]
//
// The markup is read from standard input when no argument is given.
// See package internal/markup for the syntax; the styles "mono" and
// "big" are predefined.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/textflow"
	"github.com/gogpu/textflow/internal/markup"
	"github.com/gogpu/textflow/text"
)

var alignments = map[string]text.Alignment{
	"start":       text.AlignStart,
	"end":         text.AlignEnd,
	"left":        text.AlignLeft,
	"right":       text.AlignRight,
	"center":      text.AlignCenter,
	"justify":     text.AlignJustify,
	"justify-all": text.AlignJustifyAll,
}

var modes = map[string]text.WritingMode{
	"horizontal-tb": text.HorizontalTB,
	"vertical-rl":   text.VerticalRL,
	"vertical-lr":   text.VerticalLR,
}

func main() {
	var (
		width     = flag.Float64("width", 320, "layout width in pixels")
		height    = flag.Float64("height", 0, "layout height in pixels (0 = unbounded)")
		size      = flag.Float64("size", 16, "default font size in pixels")
		align     = flag.String("align", "start", "alignment: start, end, left, right, center, justify, justify-all")
		mode      = flag.String("mode", "horizontal-tb", "writing mode: horizontal-tb, vertical-rl, vertical-lr")
		hyphenate = flag.Bool("hyphenate", false, "enable hyphenation")
		lang      = flag.String("lang", "", "hyphenation language (default: en)")
		fontPath  = flag.String("font", "", "font file used for the default style instead of Go Regular")
		system    = flag.Bool("system", false, "fall back to installed system fonts")
		verbose   = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		textflow.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	c := text.Constraints{
		Width:     *width,
		Height:    *height,
		Hyphenate: *hyphenate,
		Language:  *lang,
	}
	var ok bool
	if c.Align, ok = alignments[*align]; !ok {
		log.Fatalf("unknown alignment %q", *align)
	}
	if c.WritingMode, ok = modes[*mode]; !ok {
		log.Fatalf("unknown writing mode %q", *mode)
	}

	src, err := input(flag.Args())
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	content, err := markup.Parse(src)
	if err != nil {
		log.Fatal(err)
	}

	var opts []textflow.EngineOption
	if *system {
		dir, err := os.UserCacheDir()
		if err != nil {
			log.Fatalf("Failed to locate cache directory: %v", err)
		}
		opts = append(opts, textflow.WithSystemFonts(dir))
	}
	engine := textflow.New(opts...)
	if err := registerFonts(engine.Fonts(), *fontPath); err != nil {
		log.Fatal(err)
	}

	styles := text.StyleSheet{
		"":     {Family: "Body", Size: *size},
		"mono": {Family: "Go Mono", Size: *size},
		"big":  {Family: "Go Bold", Size: *size * 1.5},
	}
	layout, err := engine.Layout(content, styles, c)
	if err != nil {
		log.Fatalf("Layout failed: %v", err)
	}
	printLayout(os.Stdout, layout)
}

func input(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(os.Stdin)
	return string(b), err
}

func registerFonts(fm *text.FontManager, path string) error {
	fonts := []struct {
		family string
		data   []byte
	}{
		{"Go Mono", gomono.TTF},
		{"Go Bold", gobold.TTF},
		{"Go", goregular.TTF},
	}
	for _, f := range fonts {
		src, err := text.NewFontSource(f.data, text.WithName(f.family))
		if err != nil {
			return err
		}
		fm.Register(f.family, src)
	}
	fm.SetDefaultFallback("Go", "Go Mono")

	if path == "" {
		src, _ := fm.Source("Go")
		fm.Register("Body", src)
		return nil
	}
	return fm.LoadFile("Body", path)
}

func printLayout(w io.Writer, l *text.Layout) {
	fmt.Fprintf(w, "%d lines, %s, bounds %.1fx%.1f\n",
		len(l.Lines), l.BaseDirection, l.Bounds.Width(), l.Bounds.Height())
	for i := range l.Lines {
		line := &l.Lines[i]
		mark := ""
		if line.Hyphenated {
			mark = "-"
		}
		fmt.Fprintf(w, "%3d  x=%7.1f y=%7.1f w=%7.1f  %q%s\n",
			i, line.Rect.MinX, line.Baseline, line.Rect.Width(), l.LineText(i), mark)
	}
	if l.Overflow != nil {
		fmt.Fprintf(w, "overflow: %v\n", l.Overflow)
	}
	if len(l.FontsUsed) > 0 {
		fmt.Fprintf(w, "fonts: %s\n", strings.Join(l.FontsUsed, ", "))
	}
	for _, err := range l.Diagnostics {
		fmt.Fprintf(w, "diagnostic: %v\n", err)
	}
}
