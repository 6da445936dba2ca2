package downloader

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brogergvhs/jmana/internal/providers"
)

// Progress receives page counts and downloaded bytes for one chapter.
type Progress interface {
	Update(done, total int, bytes int64)
	MarkDone()
}

type nopProgress struct{}

func (nopProgress) Update(int, int, int64) {}
func (nopProgress) MarkDone()              {}

var ErrBrokenPages = errors.New("some pages failed to download")

type Downloader struct {
	client     *http.Client
	skipBroken bool
	attempts   int
	backoff    time.Duration
	timeout    time.Duration
}

func New(c *http.Client, skipBroken bool) *Downloader {
	return &Downloader{
		client:     c,
		skipBroken: skipBroken,
		attempts:   3,
		backoff:    time.Second,
		timeout:    30 * time.Second,
	}
}

type chapterState struct {
	mu    sync.Mutex
	done  int
	total int
	bytes int64
	files []string
	errs  []error
	ph    Progress
}

func (cs *chapterState) finish(file string, err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.done++
	if err != nil {
		cs.errs = append(cs.errs, err)
	} else if file != "" {
		cs.files = append(cs.files, file)
	}
	cs.ph.Update(cs.done, cs.total, cs.bytes)
}

func (cs *chapterState) addBytes(n int64) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.bytes += n
	cs.ph.Update(cs.done, cs.total, cs.bytes)
}

// DownloadPages fetches every page image of a chapter into folder, at most
// maxParallel at a time, and returns the written files and byte count.
// ph is marked done only when the chapter succeeds.
func (d *Downloader) DownloadPages(
	ctx context.Context,
	pages []providers.Page,
	folder string,
	referer string,
	maxParallel int,
	ph Progress,
) ([]string, int64, error) {
	if ph == nil {
		ph = nopProgress{}
	}

	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, 0, err
	}

	cs := &chapterState{total: len(pages), ph: ph}
	width := pageNumberWidth(pages)
	ph.Update(0, cs.total, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, maxParallel))

	for _, p := range pages {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if isSpacer(p.ImageURL) {
				cs.finish("", nil)
				return nil
			}

			out := filepath.Join(folder, pageFileName(p, width))

			var last int64
			progress := func(done int64) {
				if delta := done - last; delta > 0 {
					last = done
					cs.addBytes(delta)
				}
			}

			err := d.downloadWithRetry(gctx, p.ImageURL, out, referer, progress)
			if err != nil {
				err = fmt.Errorf("page %d: %w", p.Index+1, err)
				cs.finish("", err)
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			cs.finish(out, nil)
			return nil
		})
	}

	waitErr := g.Wait()

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return cs.files, cs.bytes, err
	}
	if waitErr != nil {
		return cs.files, cs.bytes, waitErr
	}

	if len(cs.errs) > 0 && !d.skipBroken {
		return cs.files, cs.bytes, fmt.Errorf("%w: %d/%d (%v)", ErrBrokenPages, len(cs.errs), cs.total, errors.Join(cs.errs...))
	}

	ph.MarkDone()
	return cs.files, cs.bytes, nil
}

// pageNumberWidth pads page numbers so file names sort in page order,
// never narrower than three digits.
func pageNumberWidth(pages []providers.Page) int {
	highest := len(pages)
	for _, p := range pages {
		highest = max(highest, p.Index+1)
	}

	return max(3, len(strconv.Itoa(highest)))
}

func pageFileName(p providers.Page, width int) string {
	return fmt.Sprintf("page_%0*d%s", width, p.Index+1, imageExt(p.ImageURL))
}

// isSpacer reports GIFs, which the site uses for blank separators.
func isSpacer(u string) bool {
	return strings.EqualFold(imageExt(u), ".gif")
}

func imageExt(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}

	ext := path.Ext(p)
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}

	return strings.ToLower(ext)
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	u, output, referer string,
	progress func(done int64),
) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = d.download(ctx, u, output, referer, progress)
		if err == nil {
			return nil
		}

		if attempt == d.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	return err
}

func (d *Downloader) download(
	ctx context.Context,
	u, output, referer string,
	progress func(done int64),
) (err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err := copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return nil
}
