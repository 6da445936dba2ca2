package jmana

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/brogergvhs/jmana/internal/providers"
	"github.com/brogergvhs/jmana/internal/util"
)

const (
	DefaultBaseURL = "https://mangahide.com"

	// The site never says which listing page is the last one, but a full
	// page always holds exactly this many entries.
	PageSize = 40
)

var ErrStatus = errors.New("unexpected HTTP status")

const (
	selListItem     = "div.conts > ul > li"
	selListTitle    = ".titBox > span"
	selListThumb    = ".imgBox img"
	selDetailsRoot  = "div.leftM"
	selDetailsAuth  = "div.comBtnArea a"
	selDetailsRows  = "li.row"
	selChapterItem  = "div.contents > ul > li"
	selChapterDate  = "ul > li:not(.fcR)"
	selPageItem     = ".view li#view_content2"
	selPageImage    = "div img"
	chapterPathFrom = "book/"
	chapterPathTo   = "book_frame/"
)

type Logger interface {
	Debugf(format string, args ...any)
}

type Options struct {
	BaseURL  string
	Tokens   Tokens
	Location *time.Location
	Log      Logger
}

type Scraper struct {
	client *http.Client
	base   string
	meta   *MetaParser
	log    Logger

	attempts int
	backoff  time.Duration
}

var _ providers.Source = (*Scraper)(nil)

func NewScraper(c *http.Client, opts Options) *Scraper {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	tokens := opts.Tokens
	if tokens == (Tokens{}) {
		tokens = DefaultTokens
	}

	return &Scraper{
		client: c,
		base:   base,
		meta:   NewMetaParser(tokens, opts.Location),
		log:    opts.Log,

		attempts: 3,
		backoff:  500 * time.Millisecond,
	}
}

func (s *Scraper) Name() string { return "JMana" }

func (s *Scraper) BaseURL() string { return s.base }

func (s *Scraper) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

// Page numbers are 1-based for callers and 0-based on the site.
func (s *Scraper) popularURL(page int) string {
	return fmt.Sprintf("%s/comic_main_frame?page=%d", s.base, max(page, 1)-1)
}

func (s *Scraper) searchURL(page int, query string) string {
	return fmt.Sprintf("%s/comic_main_frame?keyword=%s&page=%d", s.base, url.QueryEscape(query), max(page, 1)-1)
}

func (s *Scraper) latestURL() string {
	return s.base + "/frame"
}

// absolute turns a site-relative path into a full URL.
func (s *Scraper) absolute(path string) string {
	u, err := url.Parse(path)
	if err == nil && u.IsAbs() {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.base + path
}

func (s *Scraper) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Referer", s.base+"/")

	s.debugf("GET %s\n", target)

	resp, err := util.DoWithRetry(s.client, req, s.attempts, s.backoff)
	var se *util.StatusError
	if errors.As(err, &se) {
		return nil, fmt.Errorf("fetch %s: %w: %d after %d attempts", target, ErrStatus, se.Code, se.Attempts)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %w: %d", target, ErrStatus, resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}

	return doc, nil
}

func (s *Scraper) Popular(ctx context.Context, page int) (providers.MangasPage, error) {
	return s.listing(ctx, s.popularURL(page), true)
}

func (s *Scraper) Search(ctx context.Context, page int, query string) (providers.MangasPage, error) {
	return s.listing(ctx, s.searchURL(page, query), true)
}

// Latest has a single page.
func (s *Scraper) Latest(ctx context.Context, _ int) (providers.MangasPage, error) {
	return s.listing(ctx, s.latestURL(), false)
}

func (s *Scraper) listing(ctx context.Context, target string, paged bool) (providers.MangasPage, error) {
	doc, err := s.fetchDOM(ctx, target)
	if err != nil {
		return providers.MangasPage{}, err
	}

	mangas := s.parseListing(doc)
	s.debugf("%s: %d entries\n", target, len(mangas))

	return providers.MangasPage{
		Mangas:      mangas,
		HasNextPage: paged && len(mangas) == PageSize,
	}, nil
}

func (s *Scraper) parseListing(doc *goquery.Document) []providers.Manga {
	out := []providers.Manga{}
	doc.Find(selListItem).Each(func(_ int, el *goquery.Selection) {
		out = append(out, s.mangaFromElement(el))
	})

	return out
}

// joinText joins the trimmed text of every matched element with a
// single space. Selection.Text would glue them together.
func joinText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, el *goquery.Selection) {
		if t := strings.Join(strings.Fields(el.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})

	return strings.Join(parts, " ")
}

// firstAttr returns the attribute of the first matched element that has it.
func firstAttr(sel *goquery.Selection, name string) string {
	has := sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
		_, ok := el.Attr(name)
		return ok
	})

	return has.First().AttrOr(name, "")
}

func (s *Scraper) mangaFromElement(el *goquery.Selection) providers.Manga {
	href := firstAttr(el.Find("a"), "href")
	href = strings.ReplaceAll(href, " ", "%20")
	href = stripTrailingID(href)

	thumb := el.Find(selListThumb).AttrOr("src", "")
	if thumb != "" {
		thumb = s.base + thumb
	}

	return providers.Manga{
		URL:          withoutDomain(href),
		Title:        strings.TrimSpace(el.Find(selListTitle).First().Text()),
		ThumbnailURL: thumb,
		Status:       providers.StatusUnknown,
	}
}

// stripTrailingID drops a "/<digits>" run that starts at the last slash,
// so "/comic/abc/123?x=1" becomes "/comic/abc?x=1".
func stripTrailingID(link string) string {
	i := strings.LastIndex(link, "/")
	if i < 0 {
		return link
	}

	j := i + 1
	for j < len(link) && link[j] >= '0' && link[j] <= '9' {
		j++
	}
	if j == i+1 {
		return link
	}

	return link[:i] + link[j:]
}

// withoutDomain keeps path, query and fragment of an absolute URL.
func withoutDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() {
		return link
	}

	out := u.EscapedPath()
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		out += "#" + u.EscapedFragment()
	}

	return out
}

func (s *Scraper) Details(ctx context.Context, mangaURL string) (providers.Manga, error) {
	doc, err := s.fetchDOM(ctx, s.absolute(mangaURL))
	if err != nil {
		return providers.Manga{}, err
	}

	m := s.parseDetails(doc)
	m.URL = mangaURL

	return m, nil
}

func (s *Scraper) parseDetails(doc *goquery.Document) providers.Manga {
	info := doc.Find(selDetailsRoot).First()
	rows := info.Find(selDetailsRows)

	return providers.Manga{
		Title:       strings.TrimSpace(rows.First().Text()),
		Description: strings.TrimSpace(rows.Last().Text()),
		Author:      joinText(info.Find(selDetailsAuth)),
		Status:      providers.StatusUnknown,
	}
}

func (s *Scraper) Chapters(ctx context.Context, mangaURL string) ([]providers.Chapter, error) {
	doc, err := s.fetchDOM(ctx, s.absolute(mangaURL))
	if err != nil {
		return nil, err
	}

	chapters := s.parseChapters(doc)
	s.debugf("%s: %d chapters\n", mangaURL, len(chapters))

	return chapters, nil
}

func (s *Scraper) parseChapters(doc *goquery.Document) []providers.Chapter {
	out := []providers.Chapter{}
	doc.Find(selChapterItem).Each(func(_ int, el *goquery.Selection) {
		out = append(out, s.chapterFromElement(el))
	})

	return out
}

func (s *Scraper) chapterFromElement(el *goquery.Selection) providers.Chapter {
	link := el.Find("a")
	raw := joinText(link)

	date := strings.TrimSpace(el.Find(selChapterDate).Last().Text())

	return providers.Chapter{
		URL:        strings.ReplaceAll(firstAttr(link, "href"), chapterPathFrom, chapterPathTo),
		Name:       raw,
		Number:     s.meta.ChapterNumber(raw),
		UploadDate: s.meta.ChapterDate(date),
	}
}

func (s *Scraper) Pages(ctx context.Context, chapterURL string) ([]providers.Page, error) {
	doc, err := s.fetchDOM(ctx, s.absolute(chapterURL))
	if err != nil {
		return nil, err
	}

	pages := parsePages(doc)
	s.debugf("%s: %d pages\n", chapterURL, len(pages))

	return pages, nil
}

func parsePages(doc *goquery.Document) []providers.Page {
	pages := []providers.Page{}
	doc.Find(selPageItem).Each(func(_ int, el *goquery.Selection) {
		src := strings.TrimSpace(el.Find(selPageImage).AttrOr("src", ""))
		if src == "" {
			return
		}

		pages = append(pages, providers.Page{
			Index:    len(pages),
			ImageURL: src,
		})
	})

	return pages
}

// ImageURL resolves a page image against the site, for sources that
// emit relative image paths.
func (s *Scraper) ImageURL(p providers.Page) string {
	if p.ImageURL == "" {
		return ""
	}
	return s.absolute(p.ImageURL)
}
