package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// csvHeader is the fixed column set of the CSV export. One row per
// snapshot; nested sections are reduced to their headline values.
var csvHeader = []string{
	"main_id",
	"sub_id",
	"generated_at",
	"name",
	"location",
	"identity_verified",
	"digital_presence",
	"criminal_record_count",
	"matched_sources",
	"facebook",
	"instagram",
	"linkedin",
	"twitter",
	"voter_records",
	"pan_records",
	"aadhar_records",
	"criminal_records",
}

// CSVWriter outputs canonical reports as CSV, one row per snapshot.
type CSVWriter struct {
	output io.Writer
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{output: output}
}

// Write implements Writer. The byte count is approximate: encoding/csv
// does not report bytes, so the count is reconstructed from the rows.
func (w *CSVWriter) Write(mainID string, reports []model.CanonicalReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}

	for _, report := range reports {
		row := []string{
			mainID,
			report.SubID,
			report.GeneratedAt.UTC().Format(time.RFC3339),
			report.PersonalInfo.Name,
			report.PersonalInfo.Location,
			strconv.FormatBool(report.Summary.IdentityVerified),
			strconv.FormatBool(report.Summary.DigitalPresence),
			strconv.Itoa(report.Summary.CriminalRecordCount),
			strings.Join(report.Summary.MatchedSources, "|"),
			socialLink(report.SocialMedia.Facebook),
			socialLink(report.SocialMedia.Instagram),
			socialLink(report.SocialMedia.LinkedIn),
			socialLink(report.SocialMedia.Twitter),
			strconv.Itoa(len(report.Registry.Voter)),
			strconv.Itoa(len(report.Registry.Pan)),
			strconv.Itoa(len(report.Registry.Aadhar)),
			strconv.Itoa(len(report.Registry.Criminal)),
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// socialLink returns the profile link or empty string.
func socialLink(profile *model.LinkDescription) string {
	if profile == nil {
		return ""
	}
	return profile.Link
}

// countingWriter counts bytes passing through to the destination.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
