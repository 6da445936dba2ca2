package jmana

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"

	"github.com/brogergvhs/jmana/internal/providers"
)

func listingHTML(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="conts"><ul>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<li><a href="/comic_list/작품 %d/%d"><div class="imgBox"><img src="/thumb/%d.jpg"></div><div class="titBox"><span>작품 %d</span><span>작가</span></div></a></li>`, i, 1000+i, i, i)
	}
	b.WriteString(`</ul></div><div class="page"><ul><li>1</li></ul></div></body></html>`)
	return b.String()
}

const detailsHTML = `<html><body>
<div class="leftM">
  <ul>
    <li class="row">나 혼자만 레벨업</li>
    <li class="row">장르: 액션</li>
    <li class="row">  세계 최약의 헌터가 각성한다.  </li>
  </ul>
  <div class="comBtnArea"><a href="/author/1">추공</a></div>
</div>
<div class="leftM"><ul><li class="row">ignored</li></ul></div>
<div class="contents"><ul>
  <li>
    <a href="/book/나혼렙 3화">나 혼자만 레벨업 3화 </a>
    <ul><li class="fcR">신규</li><li>2021-03-15</li></ul>
  </li>
  <li>
    <a href="/book/나혼렙 2-5화">나 혼자만 레벨업 2-5화</a>
    <ul><li>2021-03-10</li><li class="fcR">조회</li></ul>
  </li>
  <li>
    <a href="/book/나혼렙 번외">나 혼자만 레벨업 번외</a>
    <ul><li>날짜 없음</li></ul>
  </li>
  <li>
    <a href="/book/단편">[단편] 하루</a>
    <ul></ul>
  </li>
</ul></div>
</body></html>`

const pagesHTML = `<html><body><div class="view"><ul>
<li id="view_content2"><div><img src="https://img.mangahide.com/1/001.jpg"></div></li>
<li id="view_content2"><div><img src=""></div></li>
<li id="view_content2"><div><img src="/data/1/002.jpg"></div></li>
<li id="view_content3"><div><img src="/ad.jpg"></div></li>
</ul></div></body></html>`

const multiAnchorHTML = `<html><body>
<div class="leftM">
  <ul><li class="row">전지적 독자 시점</li><li class="row">소설 원작</li></ul>
  <div class="comBtnArea"><a href="/author/1">글작가</a><a href="/author/2">그림작가</a></div>
</div>
<div class="contents"><ul>
  <li>
    <a class="icon"><span>NEW</span></a>
    <a href="/book/전독시 12화">12화</a>
    <ul><li>2022-01-02</li></ul>
  </li>
</ul></div>
<div class="conts"><ul>
  <li><a class="bookmark"></a><a href="/comic_list/전독시/77"><div class="titBox"><span>전독시</span></div></a></li>
</ul></div>
</body></html>`

type fixture struct {
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
}

func (f *fixture) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newFixture(t *testing.T, listingSize int) *fixture {
	t.Helper()

	f := &fixture{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.RequestURI())
		f.mu.Unlock()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		switch {
		case r.URL.Path == "/comic_main_frame", r.URL.Path == "/frame":
			_, _ = w.Write([]byte(listingHTML(listingSize)))
		case strings.HasPrefix(r.URL.Path, "/comic_list/"):
			_, _ = w.Write([]byte(detailsHTML))
		case strings.HasPrefix(r.URL.Path, "/book_frame/"):
			_, _ = w.Write([]byte(pagesHTML))
		case r.URL.Path == "/euckr":
			w.Header().Set("Content-Type", "text/html; charset=euc-kr")
			enc, _ := korean.EUCKR.NewEncoder().String(detailsHTML)
			_, _ = w.Write([]byte(enc))
		case r.URL.Path == "/multi":
			_, _ = w.Write([]byte(multiAnchorHTML))
		case r.URL.Path == "/broken":
			w.WriteHeader(http.StatusForbidden)
		case r.URL.Path == "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fixture) scraper() *Scraper {
	return NewScraper(f.srv.Client(), Options{BaseURL: f.srv.URL + "/"})
}

func TestPopular(t *testing.T) {
	f := newFixture(t, PageSize)
	s := f.scraper()

	page, err := s.Popular(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, page.HasNextPage)
	require.Len(t, page.Mangas, PageSize)

	first := page.Mangas[0]
	assert.Equal(t, "/comic_list/작품%200", first.URL)
	assert.Equal(t, "작품 0", first.Title)
	assert.Equal(t, f.srv.URL+"/thumb/0.jpg", first.ThumbnailURL)
	assert.Equal(t, providers.StatusUnknown, first.Status)

	_, err = s.Popular(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"/comic_main_frame?page=0", "/comic_main_frame?page=2"}, f.seen())
}

func TestPopular_LastPage(t *testing.T) {
	for _, n := range []int{0, 1, PageSize - 1, PageSize + 1} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			f := newFixture(t, n)

			page, err := f.scraper().Popular(context.Background(), 1)
			require.NoError(t, err)
			assert.Len(t, page.Mangas, n)
			assert.False(t, page.HasNextPage)
		})
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, PageSize)

	page, err := f.scraper().Search(context.Background(), 2, "나 혼자&만")
	require.NoError(t, err)

	assert.True(t, page.HasNextPage)
	assert.Equal(t, []string{"/comic_main_frame?keyword=%EB%82%98+%ED%98%BC%EC%9E%90%26%EB%A7%8C&page=1"}, f.seen())
}

func TestLatest(t *testing.T) {
	f := newFixture(t, PageSize)

	page, err := f.scraper().Latest(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, page.Mangas, PageSize)
	assert.False(t, page.HasNextPage)
	assert.Equal(t, []string{"/frame"}, f.seen())
}

func TestDetails(t *testing.T) {
	f := newFixture(t, 0)

	m, err := f.scraper().Details(context.Background(), "/comic_list/나혼렙")
	require.NoError(t, err)

	assert.Equal(t, "/comic_list/나혼렙", m.URL)
	assert.Equal(t, "나 혼자만 레벨업", m.Title)
	assert.Equal(t, "세계 최약의 헌터가 각성한다.", m.Description)
	assert.Equal(t, "추공", m.Author)
	assert.Equal(t, providers.StatusUnknown, m.Status)
}

func TestChapters(t *testing.T) {
	f := newFixture(t, 0)

	chs, err := f.scraper().Chapters(context.Background(), "comic_list/나혼렙")
	require.NoError(t, err)
	require.Len(t, chs, 4)

	assert.Equal(t, providers.Chapter{
		URL:        "/book_frame/나혼렙 3화",
		Name:       "나 혼자만 레벨업 3화",
		Number:     3,
		UploadDate: 1615734000000,
	}, chs[0])

	assert.Equal(t, 2.5, chs[1].Number)
	assert.Equal(t, int64(1615302000000), chs[1].UploadDate)

	assert.Equal(t, providers.NumberExtra, chs[2].Number)
	assert.Equal(t, int64(0), chs[2].UploadDate)

	assert.Equal(t, providers.NumberOneShot, chs[3].Number)
	assert.Equal(t, "/book_frame/단편", chs[3].URL)
	assert.Equal(t, int64(0), chs[3].UploadDate)
}

func TestChapters_EUCKR(t *testing.T) {
	f := newFixture(t, 0)

	chs, err := f.scraper().Chapters(context.Background(), "/euckr")
	require.NoError(t, err)
	require.Len(t, chs, 4)
	assert.Equal(t, "나 혼자만 레벨업 3화", chs[0].Name)
	assert.Equal(t, 3.0, chs[0].Number)
}

func TestPages(t *testing.T) {
	f := newFixture(t, 0)
	s := f.scraper()

	pages, err := s.Pages(context.Background(), "/book_frame/나혼렙 3화")
	require.NoError(t, err)

	assert.Equal(t, []providers.Page{
		{Index: 0, ImageURL: "https://img.mangahide.com/1/001.jpg"},
		{Index: 1, ImageURL: "/data/1/002.jpg"},
	}, pages)

	assert.Equal(t, "https://img.mangahide.com/1/001.jpg", s.ImageURL(pages[0]))
	assert.Equal(t, f.srv.URL+"/data/1/002.jpg", s.ImageURL(pages[1]))
}

func TestFetchErrors(t *testing.T) {
	f := newFixture(t, 0)
	s := f.scraper()

	_, err := s.Pages(context.Background(), "/broken")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "403")

	_, err = s.Details(context.Background(), "/nowhere")
	require.ErrorIs(t, err, ErrStatus)
}

func TestFetchErrors_ServerErrorAfterRetries(t *testing.T) {
	f := newFixture(t, 0)
	s := f.scraper()
	s.backoff = time.Millisecond

	_, err := s.Pages(context.Background(), "/down")
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, []string{"/down", "/down", "/down"}, f.seen())
}

func TestMultipleAnchors(t *testing.T) {
	f := newFixture(t, 0)
	s := f.scraper()

	m, err := s.Details(context.Background(), "/multi")
	require.NoError(t, err)
	assert.Equal(t, "글작가 그림작가", m.Author)

	chs, err := s.Chapters(context.Background(), "/multi")
	require.NoError(t, err)
	require.Len(t, chs, 1)
	assert.Equal(t, "/book_frame/전독시 12화", chs[0].URL)
	assert.Equal(t, "NEW 12화", chs[0].Name)
	assert.Equal(t, 12.0, chs[0].Number)

	doc, err := s.fetchDOM(context.Background(), f.srv.URL+"/multi")
	require.NoError(t, err)
	mangas := s.parseListing(doc)
	require.Len(t, mangas, 1)
	assert.Equal(t, "/comic_list/전독시", mangas[0].URL)
}

func TestStripTrailingID(t *testing.T) {
	tests := map[string]string{
		"/comic_list/abc/123":     "/comic_list/abc",
		"/comic_list/abc/123?x=1": "/comic_list/abc?x=1",
		"/comic_list/abc/123/":    "/comic_list/abc/123/",
		"/comic_list/123/abc":     "/comic_list/123/abc",
		"/comic_list/abc/12b":     "/comic_list/abcb",
		"no-slash":                "no-slash",
		"":                        "",
	}

	for in, want := range tests {
		assert.Equal(t, want, stripTrailingID(in), in)
	}
}

func TestWithoutDomain(t *testing.T) {
	assert.Equal(t, "/comic_list/a%20b?x=1#top", withoutDomain("https://mangahide.com/comic_list/a%20b?x=1#top"))
	assert.Equal(t, "/comic_list/a", withoutDomain("/comic_list/a"))
}

func TestNewScraperDefaults(t *testing.T) {
	s := NewScraper(http.DefaultClient, Options{})

	assert.Equal(t, DefaultBaseURL, s.BaseURL())
	assert.Equal(t, "JMana", s.Name())
	assert.Equal(t, DefaultBaseURL+"/comic_main_frame?page=0", s.popularURL(0))
	assert.Equal(t, DefaultBaseURL+"/comic_main_frame?keyword=a+b&page=4", s.searchURL(5, "a b"))
	assert.Equal(t, DefaultBaseURL+"/frame", s.latestURL())
}
