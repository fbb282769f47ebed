// Package crawler discovers and fetches website content for a run. It tries
// sitemap files first and falls back to crawling the homepage for internal
// links. All fetching is best effort and rate limited.
package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/brandscope/brandscope/internal/models"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; BrandscopeBot/1.0; +https://brandscope.dev/bot)"

	// MaxPages bounds both link discovery and content fetching.
	MaxPages = 50

	maxSitemapURLs    = 200
	maxNestedSitemaps = 5
)

// sitemapPaths are tried in order; the first one yielding URLs wins.
var sitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
	"/sitemap/sitemap.xml",
}

// skippedExtensions are binary or media files that carry no prose.
var skippedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".svg", ".webp", ".mp4", ".css", ".js"}

// Crawler fetches pages with a shared rate limit and per-request timeout.
type Crawler struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Crawler {
	return &Crawler{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(2), 4),
		userAgent: defaultUserAgent,
		logger:    logger,
	}
}

// DiscoveryResult is the outcome of URL discovery for a site.
type DiscoveryResult struct {
	URLs         []string
	FoundSitemap bool
}

// DiscoverURLs finds candidate page URLs for the site. Sitemap paths are
// tried in order; if none yields a URL the homepage is fetched and same-host
// links are extracted instead.
func (c *Crawler) DiscoverURLs(ctx context.Context, websiteURL string) (DiscoveryResult, error) {
	base, err := normalizeBase(websiteURL)
	if err != nil {
		return DiscoveryResult{}, fmt.Errorf("invalid website url %q: %w", websiteURL, err)
	}

	for _, path := range sitemapPaths {
		urls, err := c.fetchSitemap(ctx, base, base.Scheme+"://"+base.Host+path, 0)
		if err != nil {
			c.logger.Debug("sitemap fetch failed", "path", path, "error", err)
			continue
		}
		if len(urls) > 0 {
			c.logger.Info("sitemap discovered", "path", path, "urls", len(urls))
			return DiscoveryResult{URLs: urls, FoundSitemap: true}, nil
		}
	}

	urls, err := c.homepageLinks(ctx, base)
	if err != nil {
		return DiscoveryResult{}, fmt.Errorf("homepage crawl of %s: %w", base, err)
	}
	c.logger.Info("homepage crawl discovered links", "host", base.Host, "urls", len(urls))
	return DiscoveryResult{URLs: urls, FoundSitemap: false}, nil
}

// FetchPages downloads up to MaxPages of the given URLs and extracts their
// text. Individual fetch failures are logged and skipped.
func (c *Crawler) FetchPages(ctx context.Context, urls []string) []models.PageContent {
	if len(urls) > MaxPages {
		urls = urls[:MaxPages]
	}

	pages := make([]models.PageContent, 0, len(urls))
	for _, u := range urls {
		page, err := c.fetchPage(ctx, u)
		if err != nil {
			c.logger.Warn("page fetch skipped", "url", u, "error", err)
			continue
		}
		pages = append(pages, page)
	}
	return pages
}

func (c *Crawler) fetchPage(ctx context.Context, pageURL string) (models.PageContent, error) {
	body, err := c.get(ctx, pageURL)
	if err != nil {
		return models.PageContent{}, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return models.PageContent{}, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	doc.Find("script, style, noscript").Remove()

	var headings []string
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			headings = append(headings, t)
		}
	})

	return models.PageContent{
		URL:      pageURL,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Headings: strings.Join(headings, " "),
		Content:  collapseWhitespace(doc.Find("body").Text()),
	}, nil
}

// homepageLinks extracts same-host links from the homepage, capped and
// filtered for binary extensions. The homepage itself is always included.
func (c *Crawler) homepageLinks(ctx context.Context, base *url.URL) ([]string, error) {
	body, err := c.get(ctx, base.String())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse homepage: %w", err)
	}

	seen := map[string]bool{base.String(): true}
	urls := []string{base.String()}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		resolved := resolveLink(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true
		urls = append(urls, resolved)
		return len(urls) < MaxPages
	})
	return urls, nil
}

func (c *Crawler) fetchSitemap(ctx context.Context, base *url.URL, sitemapURL string, depth int) ([]string, error) {
	body, err := c.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, 10<<20))
	if err != nil {
		return nil, err
	}

	var urlset struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	if err := xml.Unmarshal(data, &urlset); err == nil && len(urlset.URLs) > 0 {
		urls := make([]string, 0, len(urlset.URLs))
		for _, u := range urlset.URLs {
			loc := strings.TrimSpace(u.Loc)
			if loc != "" && !hasSkippedExtension(loc) {
				urls = append(urls, loc)
			}
			if len(urls) >= maxSitemapURLs {
				break
			}
		}
		return urls, nil
	}

	// Sitemap index files nest further sitemaps one level down.
	var index struct {
		Sitemaps []struct {
			Loc string `xml:"loc"`
		} `xml:"sitemap"`
	}
	if err := xml.Unmarshal(data, &index); err != nil || len(index.Sitemaps) == 0 {
		return nil, nil
	}
	if depth >= 1 {
		return nil, nil
	}

	var urls []string
	for i, sm := range index.Sitemaps {
		if i >= maxNestedSitemaps || len(urls) >= maxSitemapURLs {
			break
		}
		nested, err := c.fetchSitemap(ctx, base, strings.TrimSpace(sm.Loc), depth+1)
		if err != nil {
			c.logger.Debug("nested sitemap skipped", "url", sm.Loc, "error", err)
			continue
		}
		urls = append(urls, nested...)
	}
	if len(urls) > maxSitemapURLs {
		urls = urls[:maxSitemapURLs]
	}
	return urls, nil
}

func (c *Crawler) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

func normalizeBase(websiteURL string) (*url.URL, error) {
	raw := strings.TrimSpace(websiteURL)
	if raw == "" {
		return nil, fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("no host in %q", websiteURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""
	u.RawQuery = ""
	return u, nil
}

// resolveLink turns an href into an absolute same-host URL, or "" when the
// link leaves the site or points at a binary asset.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Host != base.Host {
		return ""
	}
	if hasSkippedExtension(resolved.Path) {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

func hasSkippedExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
