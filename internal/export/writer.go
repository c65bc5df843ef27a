package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/osintlab/personscan/internal/model"
)

// Export format names accepted by NewWriter.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// ErrUnsupportedFormat is returned for format names NewWriter does not
// recognize.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ErrPDFNotImplemented is returned for the PDF format, which is
// accepted by the API surface but not produced yet.
// TODO: wire a PDF renderer once the report layout is settled.
var ErrPDFNotImplemented = errors.New("pdf export not implemented")

// Writer renders a subject's canonical snapshots to a destination.
//
// Design decision: an interface rather than format switches at the
// call sites, so the HTTP handler and the CLI share one construction
// path and new formats slot in without touching either.
type Writer interface {
	// Write renders the snapshots. Returns the number of bytes written.
	Write(mainID string, reports []model.CanonicalReport) (int, error)
}

// NewWriter creates a Writer for the named format writing to output.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output), nil
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatPDF:
		return nil, ErrPDFNotImplemented
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
