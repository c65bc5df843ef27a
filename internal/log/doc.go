// Package log provides secure logging for personscan.
//
// Reports flow government identity numbers, breach data, and provider
// API keys through the pipeline, and any of them can end up as a log
// attribute by accident. SecureHandler wraps a standard slog.Handler
// and masks attributes whose key or value looks sensitive before the
// record reaches the underlying handler.
package log
