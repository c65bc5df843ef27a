// Package export renders a subject's canonical reports in the formats
// the export endpoint and the CLI offer: JSON, CSV, and Markdown.
package export
