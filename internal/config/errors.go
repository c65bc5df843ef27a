package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Package-level sentinels allow callers to use errors.Is() while still
// carrying a human-readable message.
var (
	// ErrNoListenAddress is returned when the HTTP bind address is empty.
	ErrNoListenAddress = errors.New("no listen address: provide host:port")

	// ErrInvalidProviderTimeout is returned when the per-provider timeout
	// is not positive.
	ErrInvalidProviderTimeout = errors.New("invalid provider timeout: must be positive")

	// ErrInvalidReportTimeout is returned when the overall report timeout
	// is not positive.
	ErrInvalidReportTimeout = errors.New("invalid report timeout: must be positive")

	// ErrReportTimeoutTooShort is returned when the overall report timeout
	// is shorter than a single provider's timeout, which would guarantee
	// spurious provider failures.
	ErrReportTimeoutTooShort = errors.New("report timeout shorter than provider timeout")

	// ErrInvalidBrowserSessions is returned when the browser session limit
	// is not positive. Zero sessions would deadlock every scraping call.
	ErrInvalidBrowserSessions = errors.New("invalid browser sessions: must be positive")

	// ErrNoDataDir is returned when the data directory is empty.
	ErrNoDataDir = errors.New("no data directory configured")
)
