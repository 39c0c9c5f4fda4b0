package config

import (
	"maps"
	"time"
)

// Configuration file keys. Pass them to File.Apply to keep a value that
// was already set on the command line.
const (
	KeyBaseURL   = "base_url"
	KeyUserAgent = "user_agent"
	KeyHeaders   = "headers"
	KeyCookie    = "cookie"
	KeyStepDelay = "step_delay"
	KeyMaxSteps  = "max_steps"
	KeyTimeout   = "timeout"
)

// File represents the structure of the .philowalk configuration file.
//
//	base_url: https://de.wikipedia.org/wiki/
//	step_delay: 250ms
//	headers:
//	  Accept-Language: de
type File struct {
	// BaseURL overrides the article path prefix, e.g. for another language edition.
	BaseURL string `yaml:"base_url,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headers are extra HTTP headers sent with every fetch.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is an HTTP cookie sent with every fetch.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// StepDelay overrides the pause between fetches ("250ms", "1s").
	StepDelay time.Duration `yaml:"step_delay,omitempty"`

	// MaxSteps overrides the step limit. Zero leaves the current value.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Timeout overrides the per-request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Apply copies the values set in the file onto cfg.
// Keys listed in pinned are left alone, so command-line flags win over the
// file. Headers from the file are merged into cfg.Headers.
func (cf *File) Apply(cfg *Config, pinned ...string) {
	skip := make(map[string]bool, len(pinned))
	for _, k := range pinned {
		skip[k] = true
	}

	if cf.BaseURL != "" && !skip[KeyBaseURL] {
		cfg.BaseURL = cf.BaseURL
	}
	if cf.UserAgent != "" && !skip[KeyUserAgent] {
		cfg.UserAgent = cf.UserAgent
	}
	if len(cf.Headers) > 0 && !skip[KeyHeaders] {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(cf.Headers))
		}
		maps.Copy(cfg.Headers, cf.Headers)
	}
	if cf.Cookie != "" && !skip[KeyCookie] {
		cfg.Cookie = cf.Cookie
	}
	if cf.StepDelay != 0 && !skip[KeyStepDelay] {
		cfg.StepDelay = cf.StepDelay
	}
	if cf.MaxSteps != 0 && !skip[KeyMaxSteps] {
		cfg.MaxSteps = cf.MaxSteps
	}
	if cf.Timeout != 0 && !skip[KeyTimeout] {
		cfg.Timeout = cf.Timeout
	}
}
