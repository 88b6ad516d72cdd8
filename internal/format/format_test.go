package format

import (
	"strings"
	"testing"
)

func TestParseBoldItalicAndBreak(t *testing.T) {
	assertNodes(t, Parse("**bold** and *italics*\nnext line"), Document{
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italics", Italic: true},
		{Break: true},
		{Text: "next line"},
	})
}

func assertNodes(t *testing.T, got, want Document) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d nodes, got %d: %#v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("node %d: expected %#v, got %#v", i, want[i], got[i])
		}
	}
}

func TestParseItalicInsideBold(t *testing.T) {
	assertNodes(t, Parse("**a *b* c**"), Document{
		{Text: "a ", Bold: true},
		{Text: "b", Bold: true, Italic: true},
		{Text: " c", Bold: true},
	})
}

func TestParseItalicAroundBold(t *testing.T) {
	assertNodes(t, Parse("*a **b** c*"), Document{
		{Text: "a ", Italic: true},
		{Text: "b", Bold: true, Italic: true},
		{Text: " c", Italic: true},
	})
	assertNodes(t, Parse("*Tip: use **fresh** lime*"), Document{
		{Text: "Tip: use ", Italic: true},
		{Text: "fresh", Bold: true, Italic: true},
		{Text: " lime", Italic: true},
	})
}

func TestParseUnmatchedBoldPairsWithNextStar(t *testing.T) {
	// A lone "**" is not bold; its first star closes the earlier italic span.
	assertNodes(t, Parse("2 * 3 = 6 and **unterminated"), Document{
		{Text: "2 "},
		{Text: " 3 = 6 and ", Italic: true},
		{Text: "*unterminated"},
	})
}

func TestParseMarkersDoNotSpanLines(t *testing.T) {
	// Bold cannot cross the newline, so each "**" is an empty italic span and is dropped.
	doc := Parse("**open\nclose**")
	assertNodes(t, doc, Document{
		{Text: "open"},
		{Break: true},
		{Text: "close"},
	})
	if got := doc.Plain(); got != "open\nclose" {
		t.Fatalf("unexpected plain text %q", got)
	}
}

func TestParseEmptyItalicMergesNeighbours(t *testing.T) {
	assertNodes(t, Parse("a**b"), Document{{Text: "ab"}})
}

func TestSanitizeStripsEscapesAndControls(t *testing.T) {
	in := "\x1b[31mred\x1b[0m \x1b]8;;http://evil\x07link\x1b]8;;\x07\x00\x07 ok\u202e\r\nnext\ttab"
	got := Sanitize(in)
	if strings.ContainsRune(got, '\x1b') {
		t.Fatalf("escape byte survived: %q", got)
	}
	if strings.ContainsAny(got, "\x00\x07\r\u202e") {
		t.Fatalf("control character survived: %q", got)
	}
	if got != "red link ok\nnext\ttab" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

func TestParseMarkupLooksLiteral(t *testing.T) {
	doc := Parse("<b>not html</b> & <script>")
	if got := doc.Plain(); got != "<b>not html</b> & <script>" {
		t.Fatalf("expected markup preserved as text, got %q", got)
	}
}

func TestLiteralIgnoresMarkdown(t *testing.T) {
	doc := Literal("**not bold**\nsecond")
	if len(doc) != 3 || !doc[1].Break {
		t.Fatalf("expected text, break, text; got %#v", doc)
	}
	if doc[0].Bold || doc[0].Text != "**not bold**" {
		t.Fatalf("expected literal asterisks, got %#v", doc[0])
	}
}

func TestRenderKeepsInjectedEscapesOut(t *testing.T) {
	out := Parse("**hi**\x1b[2J there").Render(DefaultStyles())
	if strings.Contains(out, "\x1b[2J") {
		t.Fatalf("injected clear-screen sequence survived render: %q", out)
	}
	if !strings.Contains(out, "hi") || !strings.Contains(out, "there") {
		t.Fatalf("expected text to survive render, got %q", out)
	}
}

func TestRenderWrappedBreaksLongLines(t *testing.T) {
	out := Literal("shaken not stirred with a twist").RenderWrapped(DefaultStyles(), 10)
	if !strings.Contains(out, "\n") {
		t.Fatalf("expected wrapped output, got %q", out)
	}
}
