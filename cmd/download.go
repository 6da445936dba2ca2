package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/brogergvhs/jmana/internal/chapters"
	"github.com/brogergvhs/jmana/internal/config"
	"github.com/brogergvhs/jmana/internal/downloader"
	"github.com/brogergvhs/jmana/internal/providers"
	"github.com/brogergvhs/jmana/internal/providers/jmana"
	"github.com/brogergvhs/jmana/internal/ui"
	"github.com/brogergvhs/jmana/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagChapter string
	flagRange   string
	flagList    string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool
	flagRPS            float64

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download <manga-url>",
		Short: "Download chapters as CBZ files. Uses the selected config, overridden by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownload,
	}

	f := downloadCmd.Flags()

	// selection; indices follow the site's chapter order
	f.StringVar(&flagChapter, "chapter", "", "single chapter by label or index (e.g. 12.5, extra or 3)")
	f.StringVar(&flagRange, "range", "", "range of chapter indices (e.g. 5-12)")
	f.StringVar(&flagList, "list", "", "chapter indices (e.g. 1,3,5)")

	// runtime
	f.StringVar(&flagOutput, "output", "", "output folder for CBZ files")
	f.IntVar(&flagImageWorkers, "image-workers", 0, "parallel image downloads per chapter")
	f.IntVar(&flagChapterWorkers, "chapter-workers", 0, "parallel chapter downloads")
	f.BoolVar(&flagKeepFolders, "keep-folders", false, "keep temporary image folders")
	f.BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don't download")
	f.BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images instead of failing the whole chapter")
	f.Float64Var(&flagRPS, "rps", 0, "maximum requests per second")

	// headers/auth
	f.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	f.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	f.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	s, err := newSession(config.Options{
		Output:            flagOutput,
		ImageWorkers:      flagImageWorkers,
		ChapterWorkers:    flagChapterWorkers,
		KeepFolders:       flagKeepFolders,
		SkipBroken:        flagSkipBroken,
		Cookie:            flagCookie,
		CookieFile:        flagCookieFile,
		UserAgent:         flagUserAgent,
		RequestsPerSecond: flagRPS,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	cfg := s.cfg
	ctx := cmd.Context()
	mangaURL := args[0]

	fmt.Printf("Config file: %s\n", s.usedPath)
	cfg.Print(os.Stdout)
	fmt.Println()

	manga, err := s.source.Details(ctx, mangaURL)
	if err != nil {
		return err
	}

	raw, err := s.source.Chapters(ctx, mangaURL)
	if err != nil {
		return err
	}

	all := chapters.Wrap(raw)
	fmt.Printf("%s: %d chapters on the site.\n\n", manga.Title, len(all))

	selected := chapters.Filter(all, flagChapter, flagRange, flagList)
	if len(selected) == 0 {
		return errors.New("no chapters selected")
	}

	if flagDryRun {
		fmt.Printf("Dry-run: %d chapters selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Printf("%3d) %s  [%s]\n    %s\n", i+1, ch.Name, ch.Label(), s.source.BaseURL()+ch.URL)
		}
		return nil
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	job := &chapterJob{
		s:     s,
		manga: manga,
		dl:    downloader.New(s.client, cfg.SkipBroken),
		pm:    ui.NewProgress(os.Stdout),
		stats: &ui.Stats{},
	}

	start := time.Now()
	sem := make(chan struct{}, max(1, cfg.ChapterWorkers))
	var wg sync.WaitGroup

	for _, ch := range selected {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := job.run(ctx, ch); err != nil {
				job.stats.Failed.Add(1)
				s.log.Errorf("Chapter %s (%s): %v\n", ch.Label(), ch.Name, err)
			}
		}()
	}
	wg.Wait()
	job.pm.Wait()

	if ctx.Err() != nil {
		for _, p := range util.CleanupUnfinishedTempFolders(cfg.Output) {
			s.log.Infof("Removed %s\n", p)
		}
		util.RemoveIfEmpty(cfg.Output)
		return errors.New("interrupted")
	}

	fmt.Println()
	job.stats.Print(os.Stdout, time.Since(start))

	if n := job.stats.Failed.Load(); n > 0 {
		return fmt.Errorf("%d chapters failed", n)
	}

	fmt.Println("\nAll done.")
	return nil
}

type chapterJob struct {
	s     *session
	manga providers.Manga
	dl    *downloader.Downloader
	pm    *ui.Progress
	stats *ui.Stats
}

func (j *chapterJob) run(ctx context.Context, ch chapters.Chapter) error {
	cfg := j.s.cfg
	src := j.s.source

	pages, err := src.Pages(ctx, ch.URL)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return errors.New("no images found")
	}

	for i := range pages {
		pages[i].ImageURL = src.ImageURL(pages[i])
	}

	bar := j.pm.Chapter("Ch." + ch.Label())
	tmp := filepath.Join(cfg.Output, ch.FolderName())
	referer := src.BaseURL() + ch.URL

	files, bytes, err := j.dl.DownloadPages(ctx, pages, tmp, referer, cfg.ImageWorkers, bar)
	if err != nil {
		bar.Abort()
		_ = os.RemoveAll(tmp)
		return err
	}

	info := comicInfo(j.manga, ch, len(files), src.BaseURL())
	if err := util.CreateCBZ(files, ch.OutputCBZPath(cfg.Output), info); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	if !cfg.KeepFolders {
		_ = os.RemoveAll(tmp)
	}

	j.stats.Chapters.Add(1)
	j.stats.Images.Add(int64(len(files)))
	j.stats.Bytes.Add(bytes)

	return nil
}

func comicInfo(m providers.Manga, ch chapters.Chapter, pages int, base string) *util.ComicInfo {
	info := &util.ComicInfo{
		Series:  m.Title,
		Title:   ch.Name,
		Writer:  m.Author,
		Summary: m.Description,
		Web:     base + ch.URL,
		Pages:   pages,
		Lang:    "ko",
	}

	if ch.Number >= 0 {
		info.Number = ch.Label()
	}

	if t := ch.Uploaded(); !t.IsZero() {
		t = t.In(jmana.KST)
		info.Year, info.Month, info.Day = t.Year(), int(t.Month()), t.Day()
	}

	return info
}
