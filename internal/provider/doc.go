// Package provider implements the individual data sources an
// investigation fans out to.
//
// Every provider satisfies the same contract: given a validated query
// it returns a payload for exactly one section of the composite report,
// or an error. Providers never touch each other's sections and never
// decide report-level outcomes; a failing provider is recorded and the
// report continues without it. A provider whose credentials are not
// configured returns an empty payload rather than an error, so partial
// deployments degrade quietly instead of flooding reports with
// failures.
package provider
