package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-publisher/pkg/interfaces"
)

const articleSource = `---
title: Sample Article
author: Ada
description: A short description
cover: images/cover.png
theme: lapis
code: github
series: go
---
# Sample Article

Intro paragraph with ![diagram](images/a.png "Diagram") and a remote
![logo](https://example.com/logo.png).

<img src="images/b.jpg" width="100">

` + "```go" + `
// ![not an image](images/code.png)
` + "```" + `

Final ![again](images/a.png).
`

func TestParseFrontMatter(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte(articleSource))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Article" || fm.Author != "Ada" {
		t.Fatalf("unexpected title/author: %#v", fm)
	}
	if fm.Cover != "images/cover.png" || fm.Theme != "lapis" || fm.Code != "github" {
		t.Fatalf("unexpected cover/theme/code: %#v", fm)
	}
	if fm.Description != "A short description" {
		t.Fatalf("unexpected description %q", fm.Description)
	}
	if fm.Custom["series"] != "go" {
		t.Fatalf("custom key missing: %#v", fm.Custom)
	}
	if !strings.HasPrefix(string(body), "# Sample Article") {
		t.Fatalf("body should start after frontmatter, got %q", string(body)[:20])
	}
}

func TestParseFrontMatter_NoBlock(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("# Only body\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" || string(body) != "# Only body\n" {
		t.Fatalf("unexpected result %#v %q", fm, body)
	}
}

func TestExtractImages(t *testing.T) {
	doc, err := ParseDocument("article.md", []byte(articleSource))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	var sources []string
	for _, ref := range doc.Images {
		sources = append(sources, ref.Source)
	}
	want := []string{"images/a.png", "https://example.com/logo.png", "images/b.jpg", "images/a.png"}
	if strings.Join(sources, ",") != strings.Join(want, ",") {
		t.Fatalf("images mismatch\nwant %v\ngot  %v", want, sources)
	}
	if doc.Images[0].Alt != "diagram" {
		t.Fatalf("expected alt text, got %q", doc.Images[0].Alt)
	}
	if doc.Images[0].Line != 3 {
		t.Fatalf("expected first image on body line 3, got %d", doc.Images[0].Line)
	}

	local := doc.LocalImages()
	if len(local) != 3 {
		t.Fatalf("expected 3 local images, got %d", len(local))
	}
}

func TestRewriteImages(t *testing.T) {
	doc, err := ParseDocument("article.md", []byte(articleSource))
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}

	doc.ReplaceImages(map[string]string{
		"images/a.png":    "https://mmbiz.qpic.cn/a",
		"images/b.jpg":    "https://mmbiz.qpic.cn/b",
		"images/code.png": "https://mmbiz.qpic.cn/code",
	})
	body := string(doc.Body)

	if strings.Contains(body, "](images/a.png") {
		t.Fatalf("local image left in body: %s", body)
	}
	if !strings.Contains(body, `![diagram](https://mmbiz.qpic.cn/a "Diagram")`) {
		t.Fatalf("title not preserved: %s", body)
	}
	if !strings.Contains(body, `![again](https://mmbiz.qpic.cn/a)`) {
		t.Fatalf("second reference not rewritten: %s", body)
	}
	if !strings.Contains(body, `<img src="https://mmbiz.qpic.cn/b" width="100">`) {
		t.Fatalf("html image not rewritten: %s", body)
	}
	if !strings.Contains(body, "![not an image](images/code.png)") {
		t.Fatalf("code block must stay untouched: %s", body)
	}
	if !strings.Contains(body, "https://example.com/logo.png") {
		t.Fatalf("unmapped image must stay untouched: %s", body)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]byte("# Title\n\nSome *emphasis* here.\n\n```\ncode()\n```\n\nMore text."), 0)
	if got != "Title Some emphasis here. More text." {
		t.Fatalf("unexpected summary %q", got)
	}

	long := strings.Repeat("字", 130)
	cut := Summarize([]byte(long), 120)
	if cut != strings.Repeat("字", 120)+"..." {
		t.Fatalf("expected rune-aware truncation, got %q", cut)
	}
}

func TestIsRemote(t *testing.T) {
	for src, want := range map[string]bool{
		"https://a/b.png":  true,
		"HTTP://a/b.png":   true,
		"//cdn/b.png":      true,
		"data:image/png;x": true,
		"images/b.png":     false,
		"/abs/path/b.png":  false,
	} {
		if IsRemote(src) != want {
			t.Fatalf("IsRemote(%q) != %v", src, want)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.md")
	if err := os.WriteFile(path, []byte(articleSource), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if doc.Path != path || doc.FrontMatter.Title != "Sample Article" {
		t.Fatalf("unexpected document %#v", doc)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two"), interfaces.ParseOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}
