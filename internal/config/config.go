package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "philowalk"

	// DefaultBaseURL is the English Wikipedia article path. The topic is
	// appended verbatim.
	DefaultBaseURL = "https://en.wikipedia.org/wiki/"

	// DefaultTimeout is the per-request timeout. Wikipedia answers in well
	// under a second; the margin is for Tor circuits.
	DefaultTimeout = 30 * time.Second

	// DefaultStepDelay is the pause between consecutive fetches.
	// Wikimedia asks clients to keep request rates modest.
	DefaultStepDelay = 100 * time.Millisecond

	// DefaultMaxSteps of 0 means a walk may follow links forever.
	// Cancellation (Ctrl+C) is then the only way out of a cycle.
	DefaultMaxSteps = 0

	// DefaultUserAgent identifies philowalk in HTTP requests.
	// Wikimedia's User-Agent policy requires contact information.
	DefaultUserAgent = "philowalk/1.0 (+https://github.com/nao1215/philowalk)"

	// DefaultMaxBodySize limits the decoded article size.
	// The largest articles render to a few megabytes of HTML.
	DefaultMaxBodySize = 8 * 1024 * 1024 // 8MB

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Config holds all configuration options for philowalk.
// It is populated from defaults, then the configuration file, then CLI
// flags, and passed down explicitly.
type Config struct {
	// BaseURL is the article path prefix. Topics are appended to it.
	BaseURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxSteps caps the number of links followed in one attempt.
	// 0 means no limit.
	MaxSteps int

	// StepDelay is the pause between consecutive fetches.
	StepDelay time.Duration

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// BatchSize is the number of concurrent walks in batch mode.
	// 0 disables batch mode: topics are then used one after another as
	// restart topics for a single walk.
	BatchSize int

	// ConfigFilePath is an explicit configuration file path.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report is written to stdout.
	ReportFile string

	// Topics are the starting topics given on the command line.
	// When empty, the user is prompted.
	Topics []string

	// UseTor routes article fetches through Tor.
	UseTor bool

	// UseExternalTor uses the proxy at TorProxyAddress instead of starting
	// an embedded Tor daemon. Only meaningful with UseTor.
	UseExternalTor bool

	// TorProxyAddress is the SOCKS5 proxy address in "host:port" form.
	TorProxyAddress string

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// DBDir is the directory holding the walk history database.
	// Defaults to the XDG data directory (~/.local/share/philowalk on Linux).
	DBDir string

	// SaveToDB records finished walks in the history database.
	SaveToDB bool

	// CacheTTL enables the link cache when positive. Cached topics are
	// resolved without fetching while younger than CacheTTL.
	CacheTTL time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum decoded body size in bytes.
	MaxBodySize int64

	// Headers are extra request headers, usually from the config file.
	Headers map[string]string

	// Cookie is an optional Cookie header value.
	Cookie string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		MaxSteps:          DefaultMaxSteps,
		StepDelay:         DefaultStepDelay,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for philowalk.
// On Linux: ~/.local/share/philowalk
// On macOS: ~/Library/Application Support/philowalk
// On Windows: %LOCALAPPDATA%\philowalk
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for philowalk.
// On Linux: ~/.config/philowalk
// On macOS: ~/Library/Application Support/philowalk
// On Windows: %APPDATA%\philowalk
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	// A zero timeout would make http.Client wait forever.
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize < 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.StepDelay < 0 {
		return ErrInvalidStepDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.MaxSteps < 0 {
		return ErrInvalidMaxSteps
	}

	// Cache timestamps have one second resolution.
	if c.CacheTTL < 0 || (c.CacheTTL > 0 && c.CacheTTL < time.Second) {
		return ErrInvalidCacheTTL
	}

	return nil
}
