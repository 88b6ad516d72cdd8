// Package format turns assistant text written in a small markdown subset into a
// tagged document that a terminal surface can style without ever interpreting
// the text itself as control sequences.
//
// Only three rules are recognized, applied in this order:
//
//	**text**  bold
//	*text*    italic
//	newline   line break
//
// Everything else is literal. Escape sequences and control characters are
// removed before any rule runs.
package format

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// Node is one run of text sharing the same emphasis, or a line break.
type Node struct {
	Text   string
	Bold   bool
	Italic bool
	Break  bool
}

// Document is an ordered sequence of nodes.
type Document []Node

// Parse applies the markdown subset to text.
func Parse(text string) Document {
	root := Node{Text: Sanitize(text)}

	emphasized := markItalic(splitPattern(root, boldPattern, func(n *Node) { n.Bold = true }))

	doc := make(Document, 0, len(emphasized))
	for _, n := range emphasized {
		doc = append(doc, splitLines(n)...)
	}
	return doc
}

// Literal wraps text without applying any markdown rule. Newlines still
// become breaks so multi-line input keeps its shape.
func Literal(text string) Document {
	return splitLines(Node{Text: Sanitize(text)})
}

// Sanitize strips terminal escape sequences, control characters (other than
// newline and tab) and bidirectional overrides, and normalizes line endings.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = ansi.Strip(text)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r), unicode.Is(unicode.Bidi_Control, r):
			return -1
		}
		return r
	}, text)
}

// Plain returns the document text with emphasis dropped.
func (d Document) Plain() string {
	var b strings.Builder
	for _, n := range d {
		if n.Break {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(n.Text)
	}
	return b.String()
}

// splitPattern cuts n.Text around every match of re. The first capture group
// of each match becomes a node marked by mark; text between matches keeps the
// emphasis of n. Empty emphasized runs are dropped.
func splitPattern(n Node, re *regexp.Regexp, mark func(*Node)) []Node {
	if n.Break || n.Text == "" {
		return []Node{n}
	}
	locs := re.FindAllStringSubmatchIndex(n.Text, -1)
	if len(locs) == 0 {
		return []Node{n}
	}
	out := make([]Node, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			out = append(out, n.withText(n.Text[last:loc[0]]))
		}
		inner := n.withText(n.Text[loc[2]:loc[3]])
		mark(&inner)
		if inner.Text != "" {
			out = append(out, inner)
		}
		last = loc[1]
	}
	if last < len(n.Text) {
		out = append(out, n.withText(n.Text[last:]))
	}
	return out
}

type span struct {
	from, to int
	italic   bool
}

// markItalic matches the italic rule across the joined text of nodes, so a
// span may open and close in different nodes. Delimiters are dropped and each
// node keeps its own bold flag.
func markItalic(nodes []Node) []Node {
	var b strings.Builder
	starts := make([]int, len(nodes))
	for i, n := range nodes {
		starts[i] = b.Len()
		b.WriteString(n.Text)
	}
	text := b.String()
	locs := italicPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nodes
	}

	keep := make([]span, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		keep = append(keep, span{from: last, to: loc[0]}, span{from: loc[2], to: loc[3], italic: true})
		last = loc[1]
	}
	keep = append(keep, span{from: last, to: len(text)})

	out := make([]Node, 0, len(nodes)+2*len(locs))
	for i, n := range nodes {
		from, to := starts[i], starts[i]+len(n.Text)
		first := len(out)
		for _, s := range keep {
			lo, hi := max(from, s.from), min(to, s.to)
			if lo >= hi {
				continue
			}
			if len(out) > first && out[len(out)-1].Italic == s.italic {
				out[len(out)-1].Text += text[lo:hi]
				continue
			}
			piece := n.withText(text[lo:hi])
			piece.Italic = s.italic
			out = append(out, piece)
		}
	}
	return out
}

func splitLines(n Node) []Node {
	if n.Break || !strings.Contains(n.Text, "\n") {
		if n.Text == "" && !n.Break {
			return nil
		}
		return []Node{n}
	}
	lines := strings.Split(n.Text, "\n")
	out := make([]Node, 0, 2*len(lines)-1)
	for i, line := range lines {
		if i > 0 {
			out = append(out, Node{Break: true})
		}
		if line != "" {
			out = append(out, n.withText(line))
		}
	}
	return out
}

func (n Node) withText(text string) Node {
	n.Text = text
	return n
}
