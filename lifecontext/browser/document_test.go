package browser

import (
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title> Sample Article </title>
<meta name="keywords" content="go, crawling, web">
</head>
<body>
<nav>Site navigation</nav>
<article class="post">
  <h1>Heading</h1>
  <p>First paragraph of the article body.</p>
  <script>console.log("tracking");</script>
</article>
<div class="sidebar"><div class="ad">Buy things</div></div>
<style>.x{color:red}</style>
</body>
</html>`

func parseSample(t *testing.T) *SnapshotDocument {
	t.Helper()
	doc, err := ParseSnapshot("https://example.com/post", sampleHTML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestSnapshotDocumentBasics(t *testing.T) {
	doc := parseSample(t)
	if doc.Title() != "Sample Article" {
		t.Errorf("title = %q", doc.Title())
	}
	if doc.URL() != "https://example.com/post" {
		t.Errorf("url = %q", doc.URL())
	}
	if doc.MetaKeywords() != "go, crawling, web" {
		t.Errorf("keywords = %q", doc.MetaKeywords())
	}
}

func TestSnapshotQueryAll(t *testing.T) {
	doc := parseSample(t)
	nodes := doc.QueryAll("article")
	if len(nodes) != 1 {
		t.Fatalf("got %d article nodes", len(nodes))
	}
	if !strings.Contains(nodes[0].Text(), "First paragraph") {
		t.Errorf("article text = %q", nodes[0].Text())
	}
	if len(doc.QueryAll(".missing")) != 0 {
		t.Error("expected no matches for absent selector")
	}
}

func TestBodyTextSkipsNonContent(t *testing.T) {
	doc := parseSample(t)
	body := doc.BodyText()
	if strings.Contains(body, "console.log") || strings.Contains(body, "color:red") {
		t.Errorf("script/style text leaked into body: %q", body)
	}
	for _, want := range []string{"Heading", "First paragraph of the article body.", "Site navigation"} {
		if !strings.Contains(body, want) {
			t.Errorf("body text missing %q: %q", want, body)
		}
	}
}

func TestSnapshotNode(t *testing.T) {
	doc := parseSample(t)

	h1 := doc.QueryAll("h1")[0]
	if !h1.IsElement() {
		t.Error("h1 should be an element")
	}
	if !h1.Matches("h1") || h1.Matches("p") {
		t.Error("Matches misbehaves")
	}
	if !h1.Closest("article") {
		t.Error("h1 should have article as an ancestor")
	}
	if h1.Closest(".sidebar") {
		t.Error("h1 is not inside the sidebar")
	}

	ad := doc.QueryAll(".ad")[0]
	if !ad.Closest(".sidebar") {
		t.Error("ad should resolve its sidebar ancestor")
	}

	article := doc.QueryAll("article")[0]
	kids := article.Children()
	if len(kids) != 3 {
		t.Fatalf("article children = %d, want 3", len(kids))
	}
	if !kids[0].Matches("h1") {
		t.Error("first child should be the h1")
	}
}
