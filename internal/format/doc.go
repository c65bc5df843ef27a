// Package format projects raw composite reports into the canonical
// client-facing shape.
//
// Formatting is pure: the same raw report always produces the same
// canonical report, and the raw input is never modified. All size
// bounds, description truncation, and registry field filtering happen
// here so that stored documents keep the full provider payloads.
package format
