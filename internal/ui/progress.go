package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/jmana/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress renders one bar per chapter download.
type Progress struct {
	p *mpb.Progress
}

func NewProgress(out io.Writer) *Progress {
	return &Progress{
		p: mpb.New(
			mpb.WithWidth(48),
			mpb.WithOutput(out),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
	}
}

// Wait blocks until every bar has completed.
func (pm *Progress) Wait() {
	pm.p.Wait()
}

func (pm *Progress) Chapter(name string) *ChapterBar {
	b := &ChapterBar{start: time.Now()}
	b.bar = pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(name+"  "),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(decor.Statistics) string {
				return " | " + util.Human(b.bytes.Load())
			}),
			decor.Any(func(decor.Statistics) string {
				return fmt.Sprintf(" | %ds", b.seconds())
			}),
		),
	)

	return b
}

// ChapterBar implements downloader.Progress.
type ChapterBar struct {
	bar   *mpb.Bar
	start time.Time

	total   atomic.Int64
	bytes   atomic.Int64
	elapsed atomic.Int64
	done    atomic.Bool
}

func (b *ChapterBar) seconds() int64 {
	if b.done.Load() {
		return b.elapsed.Load()
	}
	return int64(time.Since(b.start).Seconds())
}

func (b *ChapterBar) Update(done, total int, bytes int64) {
	if b.done.Load() {
		return
	}

	if total > 0 && int64(total) != b.total.Load() {
		b.total.Store(int64(total))
		b.bar.SetTotal(int64(total), false)
	}

	b.bytes.Store(bytes)
	b.bar.SetCurrent(int64(done))
}

func (b *ChapterBar) MarkDone() {
	if b.done.Swap(true) {
		return
	}

	b.elapsed.Store(int64(time.Since(b.start).Seconds()))
	b.bar.SetCurrent(b.total.Load())
	b.bar.SetTotal(b.total.Load(), true)
}

// Abort removes the bar without completing it.
func (b *ChapterBar) Abort() {
	if b.done.Swap(true) {
		return
	}
	b.bar.Abort(true)
}
