package domain

import (
	"strings"
	"time"
)

// Settings is the complete run configuration.
type Settings struct {
	API          APISettings         `toml:"api" yaml:"api"`
	Board        BoardSettings       `toml:"board" yaml:"board"`
	Run          RunSettings         `toml:"run" yaml:"run"`
	Cache        CacheSettings       `toml:"cache" yaml:"cache"`
	Render       RenderSettings      `toml:"render" yaml:"render"`
	Placeholders PlaceholderSettings `toml:"placeholders" yaml:"placeholders"`
	Output       OutputSettings      `toml:"output" yaml:"output"`
}

// APISettings configures the board API client.
type APISettings struct {
	URL               string  `toml:"url" yaml:"url"`
	TokenEnv          string  `toml:"token_env" yaml:"token_env"`
	Token             string  `toml:"-" yaml:"-"`
	Version           string  `toml:"api_version" yaml:"api_version"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the API request timeout.
func (a APISettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// BoardSettings selects the board and the columns that qualify a ticket.
type BoardSettings struct {
	ID              string `toml:"id" yaml:"id"`
	StatusColumn    string `toml:"status_column" yaml:"status_column"`
	DateColumn      string `toml:"date_column" yaml:"date_column"`
	CloseDateColumn string `toml:"close_date_column" yaml:"close_date_column"`
	StatusLabel     string `toml:"status_label" yaml:"status_label"`
}

// RunSettings bounds the pipeline.
type RunSettings struct {
	Concurrency         int `toml:"concurrency" yaml:"concurrency"`
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`
	MaxItems            int `toml:"max_items" yaml:"max_items"`
}

// FetchTimeout returns the per-attachment download timeout.
func (r RunSettings) FetchTimeout() time.Duration {
	return time.Duration(r.FetchTimeoutSeconds) * time.Second
}

// CacheIndexBackend selects where location-to-fingerprint records live.
type CacheIndexBackend string

// Supported cache index backends.
const (
	CacheIndexSQLite CacheIndexBackend = "sqlite"
	CacheIndexRedis  CacheIndexBackend = "redis"
	CacheIndexMemory CacheIndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b CacheIndexBackend) IsValid() bool {
	switch b {
	case CacheIndexSQLite, CacheIndexRedis, CacheIndexMemory:
		return true
	default:
		return false
	}
}

// CacheSettings locates the content-addressed attachment cache.
type CacheSettings struct {
	Dir      string            `toml:"dir" yaml:"dir"`
	Index    CacheIndexBackend `toml:"index" yaml:"index"`
	RedisURL string            `toml:"redis_url" yaml:"redis_url"`
}

// RenderSettings controls page normalisation and external tools.
type RenderSettings struct {
	PageWidth          int  `toml:"page_width" yaml:"page_width"`
	PageHeight         int  `toml:"page_height" yaml:"page_height"`
	DPI                int  `toml:"dpi" yaml:"dpi"`
	RasterizePDF       bool `toml:"rasterize_pdf" yaml:"rasterize_pdf"`
	HTMLEnabled        bool `toml:"html_enabled" yaml:"html_enabled"`
	ToolTimeoutSeconds int  `toml:"tool_timeout_seconds" yaml:"tool_timeout_seconds"`
}

// ToolTimeout returns the timeout for one external tool invocation.
func (r RenderSettings) ToolTimeout() time.Duration {
	return time.Duration(r.ToolTimeoutSeconds) * time.Second
}

// PlaceholderSettings holds text templates for synthesized pages.
// Templates may reference {{.Filename}} and {{.Reason}}.
type PlaceholderSettings struct {
	Unsupported string `toml:"unsupported" yaml:"unsupported"`
	Corrupt     string `toml:"corrupt" yaml:"corrupt"`
	Unavailable string `toml:"unavailable" yaml:"unavailable"`
}

// Template returns the template text for a reason.
func (p PlaceholderSettings) Template(reason PlaceholderReason) string {
	switch reason {
	case PlaceholderUnsupported:
		return p.Unsupported
	case PlaceholderCorrupt:
		return p.Corrupt
	case PlaceholderUnavailable:
		return p.Unavailable
	default:
		return ""
	}
}

// OutputSettings locates generated reports.
type OutputSettings struct {
	Dir string `toml:"dir" yaml:"dir"`
}

// Default values.
const (
	DefaultAPIURL             = "https://api.monday.com/v2"
	DefaultTokenEnv           = "MONDAY_API_TOKEN"
	DefaultRequestsPerSecond  = 2.0
	DefaultAPITimeoutSeconds  = 30
	DefaultStatusColumn       = "status95"
	DefaultStatusLabel        = "Resolved"
	DefaultConcurrency        = 4
	DefaultFetchTimeout       = 60
	DefaultCacheDir           = "data/cache"
	DefaultPageWidth          = 1240
	DefaultPageHeight         = 1754
	DefaultDPI                = 150
	DefaultToolTimeoutSeconds = 60
	DefaultOutputDir          = "output"
)

// Default placeholder templates.
const (
	DefaultUnsupportedTemplate = "{{.Filename}}: unsupported type; included as placeholder."
	DefaultCorruptTemplate     = "{{.Filename}}: conversion failed; included as placeholder."
	DefaultUnavailableTemplate = "{{.Filename}}: attachment unavailable; included as placeholder."
)

// DefaultSettings returns settings with every optional field populated.
func DefaultSettings() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero-valued optional fields.
func (s *Settings) ApplyDefaults() {
	if s.API.URL == "" {
		s.API.URL = DefaultAPIURL
	}
	if s.API.TokenEnv == "" {
		s.API.TokenEnv = DefaultTokenEnv
	}
	if s.API.RequestsPerSecond <= 0 {
		s.API.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if s.API.TimeoutSeconds <= 0 {
		s.API.TimeoutSeconds = DefaultAPITimeoutSeconds
	}
	if s.Board.StatusColumn == "" {
		s.Board.StatusColumn = DefaultStatusColumn
	}
	if s.Board.StatusLabel == "" {
		s.Board.StatusLabel = DefaultStatusLabel
	}
	if s.Run.Concurrency <= 0 {
		s.Run.Concurrency = DefaultConcurrency
	}
	if s.Run.FetchTimeoutSeconds <= 0 {
		s.Run.FetchTimeoutSeconds = DefaultFetchTimeout
	}
	if s.Cache.Dir == "" {
		s.Cache.Dir = DefaultCacheDir
	}
	if s.Cache.Index == "" {
		s.Cache.Index = CacheIndexSQLite
	}
	s.Cache.Index = CacheIndexBackend(strings.ToLower(string(s.Cache.Index)))
	if s.Render.PageWidth <= 0 {
		s.Render.PageWidth = DefaultPageWidth
	}
	if s.Render.PageHeight <= 0 {
		s.Render.PageHeight = DefaultPageHeight
	}
	if s.Render.DPI <= 0 {
		s.Render.DPI = DefaultDPI
	}
	if s.Render.ToolTimeoutSeconds <= 0 {
		s.Render.ToolTimeoutSeconds = DefaultToolTimeoutSeconds
	}
	if s.Placeholders.Unsupported == "" {
		s.Placeholders.Unsupported = DefaultUnsupportedTemplate
	}
	if s.Placeholders.Corrupt == "" {
		s.Placeholders.Corrupt = DefaultCorruptTemplate
	}
	if s.Placeholders.Unavailable == "" {
		s.Placeholders.Unavailable = DefaultUnavailableTemplate
	}
	if s.Output.Dir == "" {
		s.Output.Dir = DefaultOutputDir
	}
}

// Validate checks fields that have no usable default.
func (s *Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.Board.ID) == "":
		return &ConfigError{Field: "board.id", Reason: "required"}
	case strings.TrimSpace(s.Board.DateColumn) == "":
		return &ConfigError{Field: "board.date_column", Reason: "required"}
	case !s.Cache.Index.IsValid():
		return &ConfigError{Field: "cache.index", Reason: "must be sqlite, redis or memory"}
	case s.Cache.Index == CacheIndexRedis && s.Cache.RedisURL == "":
		return &ConfigError{Field: "cache.redis_url", Reason: "required when cache.index is redis"}
	case s.Render.PageWidth > s.Render.PageHeight:
		return &ConfigError{Field: "render.page_width", Reason: "pages are portrait; width must not exceed height"}
	}
	return nil
}
