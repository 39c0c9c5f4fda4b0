package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoBaseURL is returned when the article base URL is empty.
	ErrNoBaseURL = errors.New("no base URL: set --base-url or base_url in the config file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is negative.
	// Use 0 to disable batch mode.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidStepDelay is returned when the step delay is negative.
	ErrInvalidStepDelay = errors.New("invalid step delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidMaxSteps is returned when the step limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxSteps = errors.New("invalid max steps: must be non-negative")

	// ErrInvalidCacheTTL is returned when the link cache TTL is negative or
	// below one second. Use 0 to disable the cache.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL: must be 0 or at least 1s")
)
