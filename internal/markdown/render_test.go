package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasicMarkdown(t *testing.T) {
	html, err := Render("**bold** and *italic*\n\n- item one\n- item two")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"<strong>bold</strong>", "<em>italic</em>", "<li>item one</li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestRenderEscapesRawHTML(t *testing.T) {
	html, err := Render("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("raw html must be escaped:\n%s", html)
	}
}

func TestRenderFencedCode(t *testing.T) {
	html, err := Render("```\nfmt.Println(\"hi\")\n```")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "<pre>") || !strings.Contains(html, "<code>") {
		t.Errorf("expected code block:\n%s", html)
	}
}

func TestRenderPlainText(t *testing.T) {
	html, err := Render("just a sentence")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(html, "just a sentence") {
		t.Errorf("plain text lost:\n%s", html)
	}
}
