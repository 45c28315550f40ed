package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	citationExpr   = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceExpr = regexp.MustCompile(`\s+`)
	titleSuffix    = regexp.MustCompile(`\s*-\s*Wikipedia.*$`)

	boilerplateExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Coordinates:[^.]*\.?`),
		regexp.MustCompile(`(?i)This article needs additional citations[^.]*\.?`),
		regexp.MustCompile(`(?i)Please help improve this article[^.]*\.?`),
		regexp.MustCompile(`(?i)This article may require cleanup[^.]*\.?`),
		regexp.MustCompile(`(?i)The examples and perspective in this article[^.]*\.?`),
	}

	missingArticleIndicators = []string{
		"Wikipedia does not have an article",
		"The page you requested does not exist",
		"This page does not exist",
	}
)

// Elements that never carry article prose.
const noiseSelector = "sup.reference, .reference, .references, ol.references, " +
	".navbox, .navigation-box, .infobox, .metadata, .dablink, .hatnote, " +
	"table.wikitable, table.infobox, table.navbox, .thumbcaption, .gallery, " +
	".toc, #toc, .mw-editsection, .catlinks, .printfooter, .mw-footer, " +
	"script, style, noscript, .geo, .coordinates, .sidebar, .vertical-navbox, " +
	".dmbox, .ambox, .mbox, .tmbox, .imbox, .ombox, .fmbox, .mw-empty-elt"

const blockSelector = "p, li, dd, dt, h1, h2, h3, h4, h5, h6, blockquote, div, td, th, br, tr"

var skippedSections = map[string]struct{}{
	"contents":        {},
	"see also":        {},
	"references":      {},
	"notes":           {},
	"external links":  {},
	"further reading": {},
	"bibliography":    {},
	"sources":         {},
	"citations":       {},
	"footnotes":       {},
}

// WikipediaScraper fetches article pages and reduces them to plain prose.
type WikipediaScraper struct {
	client           *http.Client
	userAgent        string
	maxBodyBytes     int64
	minContentLength int
}

var _ domain.ArticleFetcher = (*WikipediaScraper)(nil)

// NewWikipediaScraper builds a scraper; a nil client gets one with the
// configured timeout.
func NewWikipediaScraper(cfg config.ScraperConfig, client *http.Client) domain.ArticleFetcher {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &WikipediaScraper{
		client:           client,
		userAgent:        cfg.UserAgent,
		maxBodyBytes:     cfg.MaxBodyBytes,
		minContentLength: cfg.MinContentLength,
	}
}

func (s *WikipediaScraper) Fetch(ctx context.Context, articleURL string) (*domain.Article, error) {
	log := logger.Get().With(zap.String("url", articleURL))
	start := time.Now()

	doc, err := s.fetchDocument(ctx, articleURL)
	if err != nil {
		log.Warn("Article fetch failed", zap.Error(err))
		return nil, err
	}

	if text := doc.Text(); containsAny(text, missingArticleIndicators) {
		return nil, fmt.Errorf("%w: page reports a missing article", domain.ErrEmptyArticle)
	}

	title := extractTitle(doc)
	sections := extractSections(doc)
	content := extractContent(doc)

	if title == "" {
		return nil, fmt.Errorf("%w: no article title", domain.ErrEmptyArticle)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: no article text", domain.ErrEmptyArticle)
	}
	if n := len([]rune(content)); n < s.minContentLength {
		return nil, fmt.Errorf("%w: %d characters, minimum %d", domain.ErrEmptyArticle, n, s.minContentLength)
	}

	log.Info("Article scraped",
		zap.String("title", title),
		zap.Int("characters", len(content)),
		zap.Int("sections", len(sections)),
		zap.Duration("duration", time.Since(start)),
	)

	return &domain.Article{
		URL:         articleURL,
		Title:       title,
		CleanedText: content,
		Sections:    sections,
	}, nil
}

func (s *WikipediaScraper) fetchDocument(ctx context.Context, articleURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetchFailure, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: source returned %s", domain.ErrEmptyArticle, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: source returned %s", domain.ErrFetchFailure, resp.Status)
	}
	if ct := strings.ToLower(resp.Header.Get("Content-Type")); !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("%w: unexpected content type %q", domain.ErrFetchFailure, ct)
	}

	body := io.Reader(resp.Body)
	if s.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBodyBytes+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrFetchFailure, err)
	}
	if s.maxBodyBytes > 0 && int64(len(raw)) > s.maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrFetchFailure, s.maxBodyBytes)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %v", domain.ErrFetchFailure, err)
	}
	return doc, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range []string{"h1#firstHeading", "h1.firstHeading", ".mw-page-title-main", "h1"} {
		if t := normalize(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return normalize(titleSuffix.ReplaceAllString(doc.Find("title").First().Text(), ""))
}

// contentRoot picks the article body, falling back to <body>.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"#mw-content-text", ".mw-parser-output", "body"} {
		if root := doc.Find(sel).First(); root.Length() > 0 {
			return root
		}
	}
	return doc.Selection
}

func extractSections(doc *goquery.Document) []string {
	sections := make([]string, 0)
	seen := make(map[string]struct{})

	contentRoot(doc).Find("h2").Each(func(_ int, h *goquery.Selection) {
		h = h.Clone()
		h.Find(".mw-editsection").Remove()

		name := h.Find(".mw-headline").First().Text()
		if strings.TrimSpace(name) == "" {
			name = h.Text()
		}
		name = normalize(citationExpr.ReplaceAllString(name, ""))
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if _, skip := skippedSections[key]; skip {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		sections = append(sections, name)
	})
	return sections
}

// extractContent strips noise from the article body and returns its text as
// a single whitespace-normalised string.
func extractContent(doc *goquery.Document) string {
	root := contentRoot(doc).Clone()
	root.Find(noiseSelector).Remove()

	// goquery concatenates text nodes without separators; pad block elements
	// so adjacent paragraphs do not run together.
	root.Find(blockSelector).AppendNodes(&html.Node{Type: html.TextNode, Data: " "})

	text := citationExpr.ReplaceAllString(root.Text(), "")
	text = whitespaceExpr.ReplaceAllString(text, " ")
	for _, expr := range boilerplateExprs {
		text = expr.ReplaceAllString(text, "")
	}
	return normalize(text)
}

func normalize(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

