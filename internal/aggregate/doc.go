// Package aggregate orchestrates the investigation fan-out.
//
// One search runs every configured provider concurrently, waits for
// all of them, and assembles whatever arrived into a single composite
// report. Provider failures are isolated: a crashed, timed-out, or
// erroring provider becomes a failure entry in the report, never a
// failed search. Only a dead context or a validation error fails the
// search itself.
package aggregate
