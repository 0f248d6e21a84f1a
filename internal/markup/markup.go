// Package markup parses the small inline markup used by the textflow
// command into inline content.
//
// Plain text becomes text runs in the default style. {name:...} sets
// the style handle "name" for its contents and may nest. Directives in
// square brackets insert non-text content:
//
//	[tab]          a tab
//	[br]           a forced break
//	[obj W H]      an inline object W wide and H tall
//	[obj W H B]    the same with its baseline B above the bottom edge
//	[obj W H A]    the same aligned by A: middle, text-top, text-bottom,
//	               top or bottom
//
// A backslash escapes any of \ { } [ ].
package markup

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/gogpu/textflow/text"
)

var (
	markupLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Escaped", Pattern: `\\[\\{}\[\]]`},
			{Name: "SpanOpen", Pattern: `\{[A-Za-z_][A-Za-z0-9_-]*:`, Action: lexer.Push("Span")},
			{Name: "DirOpen", Pattern: `\[`, Action: lexer.Push("Directive")},
			{Name: "Text", Pattern: `[^\\{}\[\]]+`},
		},
		"Span": {
			{Name: "SpanClose", Pattern: `\}`, Action: lexer.Pop()},
			lexer.Include("Root"),
		},
		"Directive": {
			{Name: "Whitespace", Pattern: `[ \t]+`},
			{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
			{Name: "Keyword", Pattern: `[a-z][a-z-]*`},
			{Name: "DirClose", Pattern: `\]`, Action: lexer.Pop()},
		},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace"),
	)
)

// Document is the root of parsed markup.
type Document struct {
	Nodes []*Node `parser:"@@*"`
}

// Node is one piece of markup.
type Node struct {
	Span      *Span      `parser:"  @@"`
	Directive *Directive `parser:"| @@"`
	Escaped   *string    `parser:"| @Escaped"`
	Text      *string    `parser:"| @Text"`
}

// Span applies a style handle to its nodes.
type Span struct {
	Open  string  `parser:"@SpanOpen"`
	Nodes []*Node `parser:"@@* SpanClose"`
}

// Style returns the handle named in the span's opening token.
func (s *Span) Style() text.StyleHandle {
	return text.StyleHandle(strings.TrimSuffix(strings.TrimPrefix(s.Open, "{"), ":"))
}

// Directive is a bracketed instruction with numeric arguments and an
// optional trailing keyword.
type Directive struct {
	Pos    lexer.Position
	Name   string    `parser:"DirOpen @Keyword"`
	Args   []float64 `parser:"@Number*"`
	Option string    `parser:"@Keyword? DirClose"`
}

var objectAligns = map[string]text.ObjectAlign{
	"baseline":    text.ObjectBaseline,
	"middle":      text.ObjectMiddle,
	"text-top":    text.ObjectTextTop,
	"text-bottom": text.ObjectTextBottom,
	"top":         text.ObjectTop,
	"bottom":      text.ObjectBottom,
}

// Parse converts markup into inline content. Adjacent text with the same
// style is merged into one run.
func Parse(src string) ([]text.InlineContent, error) {
	doc, err := documentParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("markup: %w", err)
	}
	b := builder{}
	if err := b.nodes(doc.Nodes, ""); err != nil {
		return nil, err
	}
	b.flush()
	return b.out, nil
}

// builder accumulates inline content while walking the tree.
type builder struct {
	out   []text.InlineContent
	text  strings.Builder
	style text.StyleHandle
}

func (b *builder) flush() {
	if b.text.Len() == 0 {
		return
	}
	b.out = append(b.out, text.TextRun{Text: b.text.String(), Style: b.style})
	b.text.Reset()
}

func (b *builder) appendText(s string, style text.StyleHandle) {
	if style != b.style {
		b.flush()
		b.style = style
	}
	b.text.WriteString(s)
}

func (b *builder) nodes(nodes []*Node, style text.StyleHandle) error {
	for _, n := range nodes {
		switch {
		case n.Span != nil:
			if err := b.nodes(n.Span.Nodes, n.Span.Style()); err != nil {
				return err
			}
		case n.Directive != nil:
			item, err := n.Directive.content(style)
			if err != nil {
				return err
			}
			b.flush()
			b.out = append(b.out, item)
		case n.Escaped != nil:
			b.appendText((*n.Escaped)[1:], style)
		case n.Text != nil:
			b.appendText(*n.Text, style)
		}
	}
	return nil
}

// content converts the directive into an inline item.
func (d *Directive) content(style text.StyleHandle) (text.InlineContent, error) {
	want := func(n ...int) error {
		for _, k := range n {
			if len(d.Args) == k {
				return nil
			}
		}
		return fmt.Errorf("markup: %s: [%s] takes %v arguments, got %d", d.Pos, d.Name, n, len(d.Args))
	}
	if d.Option != "" && d.Name != "obj" {
		return nil, fmt.Errorf("markup: %s: [%s] takes no option, got %q", d.Pos, d.Name, d.Option)
	}
	switch d.Name {
	case "tab":
		if err := want(0); err != nil {
			return nil, err
		}
		return text.Tab{Style: style}, nil
	case "br":
		if err := want(0); err != nil {
			return nil, err
		}
		return text.ForcedBreak{}, nil
	case "obj":
		if err := want(2, 3); err != nil {
			return nil, err
		}
		obj := text.InlineObject{Width: d.Args[0], Height: d.Args[1]}
		if len(d.Args) == 3 {
			obj.Baseline = d.Args[2]
		}
		if d.Option != "" {
			align, ok := objectAligns[d.Option]
			if !ok {
				return nil, fmt.Errorf("markup: %s: unknown object alignment %q", d.Pos, d.Option)
			}
			obj.Align = align
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("markup: %s: unknown directive [%s]", d.Pos, d.Name)
	}
}
