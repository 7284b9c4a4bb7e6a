package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"filmwallaa/internal/config"
	"filmwallaa/internal/logging"
)

const (
	wpPrefix      = "wp"
	wpNamespace   = "http://wordpress.org/export/"
	postTypePost  = "post"
	slugMaxLength = 50
)

// Extractor converts export documents into migration-ready posts.
// It is safe for concurrent use.
type Extractor struct {
	settings config.Extraction
	logger   *slog.Logger
	titles   *bluemonday.Policy
	now      func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithClock overrides the time source used for the publish-date fallback.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Extractor from the extraction settings.
func New(settings config.Extraction, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "export"),
		titles:   bluemonday.StrictPolicy(),
		now:      time.Now,
	}
	if len(e.settings.Keywords) == 0 {
		e.settings.Keywords = append([]string(nil), config.DefaultKeywords...)
	}
	if e.settings.KeywordThreshold <= 0 {
		e.settings.KeywordThreshold = 3
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile reads and extracts the export at path.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return e.Extract(data)
}

// ExtractReader is Extract for streamed input.
func (e *Extractor) ExtractReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return e.Extract(data)
}

// Extract parses a WXR document and returns every item classified as a
// movie review. Malformed XML is an error; an export without reviews is not.
// WordPress fields are read under whatever prefix the document binds to the
// WordPress export namespace, falling back to "wp".
func (e *Extractor) Extract(data []byte) (*Result, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	wp := wpFields{prefixes: wpPrefixes(data)}

	result := &Result{Items: len(feed.Items)}
	for _, item := range feed.Items {
		if item == nil || wp.get(item, "post_type") != postTypePost {
			continue
		}
		result.PostItems++

		raw := e.rawPost(item, wp)
		hits := CountKeywords(raw.Title+" "+raw.BodyText, e.settings.Keywords)
		if hits < e.settings.KeywordThreshold {
			result.Rejected++
			e.logger.Debug("post skipped, not a movie review",
				logging.String("title", raw.Title),
				logging.Int("keyword_hits", hits),
			)
			continue
		}
		post := e.derive(raw)
		post.KeywordHits = hits
		result.Posts = append(result.Posts, post)
	}

	e.logger.Info("export extracted",
		logging.Int("items", result.Items),
		logging.Int("post_items", result.PostItems),
		logging.Int("accepted", len(result.Posts)),
		logging.Int("rejected", result.Rejected),
	)
	return result, nil
}

func (e *Extractor) rawPost(item *gofeed.Item, wp wpFields) RawPost {
	raw := RawPost{
		Title:        e.cleanTitle(item.Title),
		BodyText:     stripHTML(item.Content),
		Author:       itemAuthor(item),
		Categories:   uniqueCategories(item.Categories),
		Slug:         strings.TrimSpace(wp.get(item, "post_name")),
		OriginalURL:  strings.TrimSpace(item.Link),
		SourceStatus: strings.TrimSpace(wp.get(item, "status")),
	}
	if raw.Author == "" {
		raw.Author = e.settings.DefaultAuthor
	}

	published, ok := parsePublished(wp.get(item, "post_date"), item.Published)
	if !ok {
		published = e.now().UTC()
		raw.DateEstimated = true
		logging.WarnWithHint(e.logger, "publish date unreadable, using current time",
			"date_fallback", "check wp:post_date and pubDate for this item",
			logging.String("title", raw.Title),
			logging.String("post_date", wp.get(item, "post_date")),
			logging.String("pub_date", item.Published),
		)
	}
	raw.PublishedAt = published
	return raw
}

// cleanTitle drops any markup in the title and decodes entities.
func (e *Extractor) cleanTitle(title string) string {
	return strings.TrimSpace(html.UnescapeString(e.titles.Sanitize(title)))
}

// wpFields reads WordPress extension elements from feed items.
type wpFields struct {
	prefixes []string
}

func (w wpFields) get(item *gofeed.Item, name string) string {
	for _, prefix := range w.prefixes {
		if value := extensionValue(item.Extensions, prefix, name); value != "" {
			return value
		}
	}
	return ""
}

// wpPrefixes returns the extension keys to try for WordPress fields: the
// prefixes bound to any version of the WordPress export namespace, the
// namespace URIs themselves, and "wp". Only declarations before the first
// item are considered.
func wpPrefixes(data []byte) []string {
	var prefixes, spaces []string
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		tok, err := dec.RawToken()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "item" {
			break
		}
		for _, attr := range start.Attr {
			uri := strings.TrimSpace(attr.Value)
			if attr.Name.Space != "xmlns" || !strings.HasPrefix(uri, wpNamespace) {
				continue
			}
			if attr.Name.Local != wpPrefix {
				prefixes = append(prefixes, attr.Name.Local)
			}
			spaces = append(spaces, uri)
		}
	}
	prefixes = append(prefixes, spaces...)
	return append(prefixes, wpPrefix)
}

func extensionValue(extensions ext.Extensions, prefix, name string) string {
	values := extensions[prefix][name]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}

func itemAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author != nil && strings.TrimSpace(author.Name) != "" {
			return strings.TrimSpace(author.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			if creator = strings.TrimSpace(creator); creator != "" {
				return creator
			}
		}
	}
	return ""
}

func uniqueCategories(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(html.UnescapeString(value))
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}
	return out
}

const blockSelector = "p, div, br, li, h1, h2, h3, h4, h5, h6, blockquote, tr"

// stripHTML reduces post content to plain text. Block elements are separated
// by newlines so words from adjacent paragraphs do not run together.
func stripHTML(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}
	doc.Find("script, style").Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
