package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL string `yaml:"base_url"`
	Output  string `yaml:"output"`

	ImageWorkers   int  `yaml:"image_workers"`
	ChapterWorkers int  `yaml:"chapter_workers"`
	KeepFolders    bool `yaml:"keep_folders"`
	SkipBroken     bool `yaml:"skip_broken"`

	Debug   bool   `yaml:"debug"`
	LogFile string `yaml:"log_file"`

	Cookie            string  `yaml:"cookie"`
	CookieFile        string  `yaml:"cookie_file"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	CloudflareBypass  bool    `yaml:"cloudflare_bypass"`

	// SpecialToken overrides the word that marks special chapters.
	// Leave empty for the built-in "특별편".
	SpecialToken string `yaml:"special_token"`
}

// Options carries command-line overrides. Zero values mean "not set".
type Options struct {
	IgnoreConfig bool

	BaseURL           string
	Output            string
	ImageWorkers      int
	ChapterWorkers    int
	KeepFolders       bool
	SkipBroken        bool
	Debug             bool
	LogFile           string
	Cookie            string
	CookieFile        string
	UserAgent         string
	RequestsPerSecond float64
}

const (
	defaultBaseURL        = "https://mangahide.com"
	defaultImageWorkers   = 4
	defaultChapterWorkers = 2
	defaultRPS            = 4
)

func DefaultConfig() *Config {
	return &Config{
		BaseURL:           defaultBaseURL,
		Output:            ".",
		ImageWorkers:      defaultImageWorkers,
		ChapterWorkers:    defaultChapterWorkers,
		RequestsPerSecond: defaultRPS,
		CloudflareBypass:  true,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML starts from the defaults so that keys missing from an older
// profile keep their default values.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged returns the active profile (or the defaults) with opts
// applied on top, plus a description of where it came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		return finish(DefaultConfig(), opts), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig {
		return finish(DefaultConfig(), opts), "(default config in memory, run `jmana config init` to create one)", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return finish(cfg, opts), activePath, nil
}

func finish(c *Config, o Options) *Config {
	mergeConfig(c, o)
	normalizeDefaults(c)
	return c
}

func mergeConfig(c *Config, o Options) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&c.BaseURL, o.BaseURL)
	setString(&c.Output, o.Output)
	setString(&c.LogFile, o.LogFile)
	setString(&c.Cookie, o.Cookie)
	setString(&c.CookieFile, o.CookieFile)
	setString(&c.UserAgent, o.UserAgent)

	if o.ImageWorkers > 0 {
		c.ImageWorkers = o.ImageWorkers
	}
	if o.ChapterWorkers > 0 {
		c.ChapterWorkers = o.ChapterWorkers
	}
	if o.RequestsPerSecond > 0 {
		c.RequestsPerSecond = o.RequestsPerSecond
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.SkipBroken {
		c.SkipBroken = true
	}
	if o.Debug {
		c.Debug = true
	}
}

func normalizeDefaults(c *Config) {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Output == "" {
		c.Output = "."
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = defaultImageWorkers
	}
	if c.ChapterWorkers <= 0 {
		c.ChapterWorkers = defaultChapterWorkers
	}
	if c.RequestsPerSecond < 0 {
		c.RequestsPerSecond = 0
	}
}

func (c *Config) Print(w io.Writer) {
	line := func(key string, v any) {
		_, _ = fmt.Fprintf(w, " -%s: %v\n", key, v)
	}

	line("base_url", c.BaseURL)
	line("output", c.Output)
	line("image_workers", c.ImageWorkers)
	line("chapter_workers", c.ChapterWorkers)
	line("requests_per_second", c.RequestsPerSecond)
	line("cloudflare_bypass", c.CloudflareBypass)
	if c.KeepFolders {
		line("keep_folders", true)
	}
	if c.SkipBroken {
		line("skip_broken", true)
	}
	if c.Debug {
		line("debug", true)
	}
	if c.LogFile != "" {
		line("log_file", c.LogFile)
	}
	if c.CookieFile != "" {
		line("cookie_file", c.CookieFile)
	}
	if c.Cookie != "" {
		line("cookie", "(set)")
	}
	if c.UserAgent != "" {
		line("user_agent", c.UserAgent)
	}
	if c.SpecialToken != "" {
		line("special_token", c.SpecialToken)
	}
}
