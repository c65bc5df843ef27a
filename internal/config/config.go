package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Provider timeouts follow the upstream
// services' observed latency: scraping through a headless browser is the
// slowest path, plain API lookups the fastest.
const (
	// DefaultListenAddress is the address the HTTP server binds to.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultProviderTimeout bounds one provider's search. A provider
	// that has not answered within this window contributes a failure
	// marker instead of delaying the whole report.
	DefaultProviderTimeout = 15 * time.Second

	// DefaultReportTimeout bounds one whole report generation, covering
	// the concurrent provider fan-out plus persistence.
	DefaultReportTimeout = 60 * time.Second

	// DefaultBrowserSessions is the maximum number of concurrent pages
	// opened against the shared headless browser. Scraping calls beyond
	// this limit wait for a session to be released.
	DefaultBrowserSessions = 4

	// DefaultBrowserNavigationTimeout bounds one page navigation inside
	// the headless browser.
	DefaultBrowserNavigationTimeout = 15 * time.Second

	// DefaultListLimit is the page size for report listings when the
	// caller does not specify one.
	DefaultListLimit = 10

	// DefaultMaxListLimit caps the page size for report listings.
	DefaultMaxListLimit = 100

	// DefaultUserAgent identifies personscan in outbound HTTP requests.
	DefaultUserAgent = "personscan/1.0 (+https://github.com/osintlab/personscan)"

	// AppName is the application name used for XDG directory paths.
	AppName = "personscan"
)

// ProviderKeys holds API credentials for the external data sources.
// Empty keys disable the corresponding provider's remote calls; the
// provider then returns an empty successful result.
type ProviderKeys struct {
	// GoogleAPIKey authenticates against the Custom Search JSON API.
	GoogleAPIKey string `yaml:"google_api_key"`

	// GoogleSearchEngineID selects the programmable search engine.
	GoogleSearchEngineID string `yaml:"google_search_engine_id"`

	// HIBPAPIKey authenticates breach lookups.
	HIBPAPIKey string `yaml:"hibp_api_key"`

	// HunterAPIKey authenticates email discovery lookups.
	HunterAPIKey string `yaml:"hunter_api_key"`
}

// File is the on-disk YAML configuration shape.
type File struct {
	// Keys holds provider API credentials.
	Keys ProviderKeys `yaml:"keys"`

	// SOCKSProxy, when set, routes scraping traffic through the given
	// SOCKS5 proxy in "host:port" format. Used for anonymized collection.
	SOCKSProxy string `yaml:"socks_proxy"`

	// BrowserBin overrides the headless browser binary path.
	BrowserBin string `yaml:"browser_bin"`
}

// Config holds all options for personscan. It is populated from defaults,
// the optional config file, and CLI flags, then passed by dependency
// injection.
type Config struct {
	// ListenAddress is the HTTP server bind address in "host:port" format.
	ListenAddress string

	// DataDir is the directory holding the report store and registry
	// databases. Defaults to the XDG data directory.
	DataDir string

	// ProviderTimeout bounds each provider's search call.
	ProviderTimeout time.Duration

	// ReportTimeout bounds one whole report generation.
	ReportTimeout time.Duration

	// BrowserSessions caps concurrent headless-browser pages.
	BrowserSessions int

	// BrowserNavigationTimeout bounds one page navigation.
	BrowserNavigationTimeout time.Duration

	// BrowserBin overrides the browser binary; empty means autodetect.
	BrowserBin string

	// SOCKSProxy routes scraping traffic through a SOCKS5 proxy when set.
	SOCKSProxy string

	// Keys holds provider API credentials.
	Keys ProviderKeys

	// UserAgent is sent with outbound HTTP requests.
	UserAgent string

	// Verbose enables debug-level logging.
	Verbose bool
}

// NewConfig returns a Config populated with defaults. Many defaults are
// non-zero, so relying on the zero value would produce a broken setup.
func NewConfig() *Config {
	return &Config{
		ListenAddress:            DefaultListenAddress,
		DataDir:                  XDGDataDir(),
		ProviderTimeout:          DefaultProviderTimeout,
		ReportTimeout:            DefaultReportTimeout,
		BrowserSessions:          DefaultBrowserSessions,
		BrowserNavigationTimeout: DefaultBrowserNavigationTimeout,
		UserAgent:                DefaultUserAgent,
	}
}

// ApplyFile overlays values from a loaded config file onto the Config.
// Only fields the file actually sets are overwritten.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if f.Keys.GoogleAPIKey != "" {
		c.Keys.GoogleAPIKey = f.Keys.GoogleAPIKey
	}
	if f.Keys.GoogleSearchEngineID != "" {
		c.Keys.GoogleSearchEngineID = f.Keys.GoogleSearchEngineID
	}
	if f.Keys.HIBPAPIKey != "" {
		c.Keys.HIBPAPIKey = f.Keys.HIBPAPIKey
	}
	if f.Keys.HunterAPIKey != "" {
		c.Keys.HunterAPIKey = f.Keys.HunterAPIKey
	}
	if f.SOCKSProxy != "" {
		c.SOCKSProxy = f.SOCKSProxy
	}
	if f.BrowserBin != "" {
		c.BrowserBin = f.BrowserBin
	}
}

// XDGDataDir returns the XDG data directory for personscan.
// On Linux this is ~/.local/share/personscan.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for personscan.
// On Linux this is ~/.config/personscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any server or provider
// is constructed.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return ErrNoListenAddress
	}
	if c.ProviderTimeout <= 0 {
		return ErrInvalidProviderTimeout
	}
	if c.ReportTimeout <= 0 {
		return ErrInvalidReportTimeout
	}
	if c.ReportTimeout < c.ProviderTimeout {
		return ErrReportTimeoutTooShort
	}
	if c.BrowserSessions <= 0 {
		return ErrInvalidBrowserSessions
	}
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	return nil
}
