package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"lifecontext/lifecontext/crawler"
)

// SnapshotDocument is a goquery-backed implementation of the crawler's
// Document interface over one HTML snapshot of a live page.
type SnapshotDocument struct {
	doc *goquery.Document
	url string
}

// ParseSnapshot parses raw page HTML captured at pageURL.
func ParseSnapshot(pageURL, rawHTML string) (*SnapshotDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return &SnapshotDocument{doc: doc, url: pageURL}, nil
}

func (d *SnapshotDocument) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

func (d *SnapshotDocument) URL() string { return d.url }

func (d *SnapshotDocument) QueryAll(selector string) []crawler.Node {
	var out []crawler.Node
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, snapshotNode{sel: sel})
	})
	return out
}

func (d *SnapshotDocument) MetaKeywords() string {
	return d.doc.Find(`meta[name="keywords"]`).AttrOr("content", "")
}

// BodyText flattens the body to plain text, skipping script/style/noscript
// subtrees, single-space separated.
func (d *SnapshotDocument) BodyText() string {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

// snapshotNode adapts a goquery selection to the crawler's Node interface.
// Matches/Closest panic on unparseable selectors (cascadia does); the
// classifier treats that as a non-match.
type snapshotNode struct {
	sel *goquery.Selection
}

func (n snapshotNode) IsElement() bool {
	return len(n.sel.Nodes) > 0 && n.sel.Nodes[0].Type == html.ElementNode
}

func (n snapshotNode) Matches(selector string) bool {
	return n.sel.Is(selector)
}

func (n snapshotNode) Closest(selector string) bool {
	return n.sel.Closest(selector).Length() > 0
}

func (n snapshotNode) Text() string {
	return n.sel.Text()
}

func (n snapshotNode) Children() []crawler.Node {
	var out []crawler.Node
	n.sel.Children().Each(func(_ int, sel *goquery.Selection) {
		out = append(out, snapshotNode{sel: sel})
	})
	return out
}
