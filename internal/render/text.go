package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "table": true,
	"ul": true, "ol": true, "blockquote": true, "pre": true, "hr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripHTML removes tags, inline CSS and scripts and returns the visible text.
// Plain text input is returned with entities decoded.
func StripHTML(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return s, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	doc.Find("style, script, noscript, head").Remove()

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(&b, n)
	}
	return b.String(), nil
}

// collectText writes text nodes in document order, breaking lines around block elements
func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	}
	block := n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if block && n.Data != "br" && n.Data != "hr" {
		b.WriteString("\n")
	}
}

// CollapseBlankLines trims trailing spaces on each line and squeezes runs of
// empty lines into one
func CollapseBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\u00a0")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
