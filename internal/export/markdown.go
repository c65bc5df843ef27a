package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/osintlab/personscan/internal/model"
)

// MarkdownWriter outputs canonical reports as a Markdown document,
// one section per snapshot. The format is meant for sharing findings
// in documentation and case notes.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(mainID string, reports []model.CanonicalReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Investigation Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Report ID", "`" + mainID + "`"},
			{"Snapshots", strconv.Itoa(len(reports))},
		},
	})
	md.PlainText("")

	for i, report := range reports {
		w.writeSnapshot(md, i+1, report)
	}

	md.HorizontalRule()

	return len(md.String()), md.Build()
}

// writeSnapshot writes one snapshot section.
func (w *MarkdownWriter) writeSnapshot(md *markdown.Markdown, index int, report model.CanonicalReport) {
	md.H2("Snapshot " + strconv.Itoa(index))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", report.PersonalInfo.Name},
			{"Location", orDash(report.PersonalInfo.Location)},
			{"Generated", report.GeneratedAt.UTC().Format(time.RFC3339)},
			{"Identity Verified", yesNo(report.Summary.IdentityVerified)},
			{"Digital Presence", yesNo(report.Summary.DigitalPresence)},
			{"Criminal Records", strconv.Itoa(report.Summary.CriminalRecordCount)},
			{"Matched Sources", orDash(strings.Join(report.Summary.MatchedSources, ", "))},
		},
	})
	md.PlainText("")

	w.writeSocial(md, report.SocialMedia)
	w.writeRegistry(md, report.Registry)
	w.writeOther(md, report.Other)
}

// writeSocial writes the resolved social profiles.
func (w *MarkdownWriter) writeSocial(md *markdown.Markdown, social model.CanonicalSocial) {
	rows := [][]string{}
	for _, entry := range []struct {
		platform string
		profile  *model.LinkDescription
	}{
		{"Facebook", social.Facebook},
		{"Instagram", social.Instagram},
		{"LinkedIn", social.LinkedIn},
		{"Twitter", social.Twitter},
	} {
		if entry.profile == nil {
			continue
		}
		rows = append(rows, []string{entry.platform, entry.profile.Link, entry.profile.Description})
	}
	if len(rows) == 0 {
		return
	}

	md.H3("Social Media")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Platform", "Link", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRegistry writes registry match counts and the matched records.
func (w *MarkdownWriter) writeRegistry(md *markdown.Markdown, registry model.CanonicalRegistry) {
	total := len(registry.Voter) + len(registry.Pan) + len(registry.Aadhar) + len(registry.Criminal)
	if total == 0 {
		return
	}

	md.H3("Registry Matches")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Registry", "Matches"},
		Rows: [][]string{
			{"Voter", strconv.Itoa(len(registry.Voter))},
			{"PAN", strconv.Itoa(len(registry.Pan))},
			{"Aadhaar", strconv.Itoa(len(registry.Aadhar))},
			{"Criminal", strconv.Itoa(len(registry.Criminal))},
		},
	})
	md.PlainText("")
}

// writeOther writes the mixed findings section.
func (w *MarkdownWriter) writeOther(md *markdown.Markdown, items []model.OtherItem) {
	if len(items) == 0 {
		return
	}

	md.H3("Other Findings")
	md.PlainText("")

	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{item.Source, item.Link, item.Description}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Link", "Description"},
		Rows:   rows,
	})
	md.PlainText("")
}

// yesNo formats a boolean for the report tables.
func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// orDash substitutes a dash for empty values.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
