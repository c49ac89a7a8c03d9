package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"MenuScout/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParseDocument turns raw HTML into a goquery document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return doc, nil
}

// FetchDocument fetches rawURL and parses the body. The returned page carries
// the final URL after redirects.
func FetchDocument(ctx context.Context, f Fetcher, rawURL string) (*goquery.Document, *Page, error) {
	page, err := f.Get(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	doc, err := ParseDocument(page.Body)
	if err != nil {
		return nil, nil, err
	}
	return doc, page, nil
}

// hasClassToken reports whether one of the element's class tokens equals token.
// Elements without a class attribute simply do not match.
func hasClassToken(s *goquery.Selection, token string) bool {
	class, ok := s.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if c == token {
			return true
		}
	}
	return false
}

// textLines splits text into trimmed lines longer than minLen runes.
func textLines(text string, minLen int) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) > minLen {
			out = append(out, line)
		}
	}
	return out
}

// firstLine returns the first trimmed non-empty line of text.
func firstLine(text string) string {
	lines := textLines(text, 0)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// anchorsFromDocument lists every <a> in document order, resolving hrefs
// against base when possible.
func anchorsFromDocument(doc *goquery.Document, base string) []models.Anchor {
	baseURL, _ := url.Parse(base)
	var anchors []models.Anchor
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href != "" && baseURL != nil {
			if ref, err := url.Parse(href); err == nil {
				href = baseURL.ResolveReference(ref).String()
			}
		}
		anchors = append(anchors, models.Anchor{
			Href: href,
			Text: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return anchors
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "footer": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "ol": true, "p": true, "section": true, "table": true,
	"td": true, "th": true, "tr": true, "ul": true,
}

// lineText is Selection.Text with a line break at every block element
// boundary, so visually separate fields end up on separate lines.
func lineText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}
