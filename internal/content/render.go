package content

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// parser is shared; goldmark parsers are safe for concurrent Parse
// calls and the configuration never changes.
var (
	parser     goldmark.Markdown
	parserOnce sync.Once
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parser = goldmark.New()
	})
	return parser
}

// Render parses markdown and produces styled terminal text wrapped to
// width. Soft line breaks inside paragraphs become spaces, so the
// hard-wrapped page sources reflow cleanly at any terminal width.
func Render(source string, width int) string {
	if source == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	src := []byte(source)
	doc := getParser().Parser().Parse(gtext.NewReader(src))

	r := &renderer{source: src, width: width}
	_ = ast.Walk(doc, r.walk)
	return strings.TrimRight(r.output.String(), "\n")
}

// renderer walks the goldmark AST directly. Inline content accumulates
// in a buffer and is word-wrapped as a unit when the enclosing block
// closes; goldmark's streaming renderer interface does not fit that
// accumulate-then-wrap shape.
type renderer struct {
	source []byte
	width  int

	output strings.Builder
	inline strings.Builder

	bold   int
	italic int

	lists []listState

	// indent is the running prefix for nested list content.
	indent string
	// bullet replaces the indent on the first line of a list item.
	bullet string
}

type listState struct {
	ordered bool
	counter int
}

func (r *renderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			r.inline.Reset()
		} else {
			r.flushParagraph()
		}

	case ast.KindHeading:
		if entering {
			r.inline.Reset()
		} else {
			r.flushHeading(node.(*ast.Heading).Level)
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			r.lists = append(r.lists, listState{ordered: list.IsOrdered(), counter: start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if len(r.lists) == 0 {
				r.output.WriteString("\n")
			}
		}

	case ast.KindListItem:
		if entering {
			r.enterListItem()
		} else {
			r.indent = r.indent[:len(r.indent)-bulletWidth(r.lists[len(r.lists)-1])]
		}

	case ast.KindThematicBreak:
		if entering {
			rule := faintStyle().Render(strings.Repeat("─", r.width))
			r.output.WriteString(rule + "\n\n")
		}

	case ast.KindText:
		if entering {
			t := node.(*ast.Text)
			r.inline.WriteString(r.styled(string(t.Segment.Value(r.source))))
			if t.SoftLineBreak() {
				r.inline.WriteString(" ")
			}
			if t.HardLineBreak() {
				r.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			r.inline.WriteString(r.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		em := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if em.Level >= 2 {
			r.bold += delta
		} else {
			r.italic += delta
		}

	case ast.KindCodeSpan:
		if entering {
			r.inline.WriteString(faintStyle().Render(r.childText(node)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			r.inline.WriteString(r.childText(node))
			if len(link.Destination) > 0 {
				r.inline.WriteString(" " + faintStyle().Render("("+string(link.Destination)+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			url := string(node.(*ast.AutoLink).URL(r.source))
			r.inline.WriteString(faintStyle().Render(url))
		}
	}

	return ast.WalkContinue, nil
}

func (r *renderer) enterListItem() {
	top := &r.lists[len(r.lists)-1]
	var b string
	if top.ordered {
		b = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		b = "• "
	}
	r.bullet = r.indent + b
	r.indent += strings.Repeat(" ", bulletWidth(*top))
}

func bulletWidth(s listState) int {
	if s.ordered {
		// Counter has already advanced past the current item.
		return len(fmt.Sprintf("%d. ", s.counter-1))
	}
	return 2
}

// flushParagraph wraps the accumulated inline content and writes it
// with the current list indentation.
func (r *renderer) flushParagraph() {
	text := r.inline.String()
	r.inline.Reset()
	if text == "" {
		return
	}

	wrapped := ansi.Wrap(text, r.width-len(r.indent), " ,.;-")
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		prefix := r.indent
		if i == 0 && r.bullet != "" {
			prefix = r.bullet
			r.bullet = ""
		}
		r.output.WriteString(prefix + line + "\n")
	}
	if len(r.lists) == 0 {
		r.output.WriteString("\n")
	}
}

func (r *renderer) flushHeading(level int) {
	text := ansi.Strip(r.inline.String())
	r.inline.Reset()
	if text == "" {
		return
	}

	style := lipgloss.NewStyle().Bold(true)
	if level == 1 {
		text = strings.ToUpper(text)
	}
	r.output.WriteString(style.Render(text) + "\n\n")
}

// styled applies the current emphasis state to a text fragment.
func (r *renderer) styled(text string) string {
	if r.bold == 0 && r.italic == 0 {
		return text
	}
	style := lipgloss.NewStyle()
	if r.bold > 0 {
		style = style.Bold(true)
	}
	if r.italic > 0 {
		style = style.Italic(true)
	}
	return style.Render(text)
}

// childText collects the raw text of a node's inline children.
func (r *renderer) childText(node ast.Node) string {
	var out strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			out.Write(c.Segment.Value(r.source))
		case *ast.String:
			out.Write(c.Value)
		}
	}
	return out.String()
}

func faintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Faint(true)
}
