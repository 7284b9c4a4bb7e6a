package testsupport

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ExportItem describes one item of a generated blog export.
type ExportItem struct {
	Title      string
	Body       string
	PostType   string
	Status     string
	Slug       string
	Link       string
	Creator    string
	PostDate   string
	PubDate    string
	Categories []string
}

// WriteExport renders items as a WordPress export document at path.
// PostType defaults to "post" and Status to "publish".
func WriteExport(t testing.TB, path string, items ...ExportItem) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(RenderExport(items...)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// RenderExport returns the export document for items.
func RenderExport(items ...ExportItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Test Blog</title>
	<link>https://blog.example</link>
	<description>fixture</description>
`)
	for _, item := range items {
		postType := item.PostType
		if postType == "" {
			postType = "post"
		}
		status := item.Status
		if status == "" {
			status = "publish"
		}
		b.WriteString("\t<item>\n")
		fmt.Fprintf(&b, "\t\t<title>%s</title>\n", html.EscapeString(item.Title))
		if item.Link != "" {
			fmt.Fprintf(&b, "\t\t<link>%s</link>\n", html.EscapeString(item.Link))
		}
		if item.PubDate != "" {
			fmt.Fprintf(&b, "\t\t<pubDate>%s</pubDate>\n", item.PubDate)
		}
		if item.Creator != "" {
			fmt.Fprintf(&b, "\t\t<dc:creator><![CDATA[%s]]></dc:creator>\n", item.Creator)
		}
		for _, category := range item.Categories {
			fmt.Fprintf(&b, "\t\t<category domain=\"category\"><![CDATA[%s]]></category>\n", category)
		}
		fmt.Fprintf(&b, "\t\t<content:encoded><![CDATA[%s]]></content:encoded>\n", item.Body)
		if item.PostDate != "" {
			fmt.Fprintf(&b, "\t\t<wp:post_date><![CDATA[%s]]></wp:post_date>\n", item.PostDate)
		}
		if item.Slug != "" {
			fmt.Fprintf(&b, "\t\t<wp:post_name><![CDATA[%s]]></wp:post_name>\n", item.Slug)
		}
		fmt.Fprintf(&b, "\t\t<wp:status><![CDATA[%s]]></wp:status>\n", status)
		fmt.Fprintf(&b, "\t\t<wp:post_type><![CDATA[%s]]></wp:post_type>\n", postType)
		b.WriteString("\t</item>\n")
	}
	b.WriteString("</channel>\n</rss>\n")
	return b.String()
}
