package cmd

import (
	"net/http"
	"time"

	"github.com/brogergvhs/jmana/internal/config"
	"github.com/brogergvhs/jmana/internal/providers/jmana"
	"github.com/brogergvhs/jmana/internal/ui"
	"github.com/brogergvhs/jmana/internal/util"
)

// session bundles what every site command needs.
type session struct {
	cfg      *config.Config
	usedPath string
	log      *ui.Logger
	client   *http.Client
	source   *jmana.Scraper
}

func newSession(overrides config.Options) (*session, error) {
	overrides.IgnoreConfig = flagIgnoreConfig
	overrides.Debug = overrides.Debug || flagDebug
	if overrides.BaseURL == "" {
		overrides.BaseURL = flagBaseURL
	}
	if overrides.LogFile == "" {
		overrides.LogFile = flagLogFile
	}

	cfg, used, err := config.LoadMerged(overrides)
	if err != nil {
		return nil, err
	}

	log := ui.NewLoggerWithOptions(ui.LogOptions{Debug: cfg.Debug, File: cfg.LogFile})
	log.Debugf("config: %s\n", used)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:           30 * time.Second,
		UserAgent:         util.PickUserAgent(cfg.UserAgent),
		Cookie:            cfg.Cookie,
		CookieFile:        cfg.CookieFile,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CloudflareBypass:  cfg.CloudflareBypass,
		DebugLogger:       log,
	})
	if err != nil {
		return nil, err
	}

	tokens := jmana.DefaultTokens
	if cfg.SpecialToken != "" {
		tokens.Special = cfg.SpecialToken
	}

	src := jmana.NewScraper(client, jmana.Options{
		BaseURL: cfg.BaseURL,
		Tokens:  tokens,
		Log:     log,
	})

	return &session{
		cfg:      cfg,
		usedPath: used,
		log:      log,
		client:   client,
		source:   src,
	}, nil
}

func (s *session) Close() {
	s.log.Sync()
}
