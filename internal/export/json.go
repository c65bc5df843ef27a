package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/osintlab/personscan/internal/model"
)

// JSONWriter outputs canonical reports as one indented JSON document.
type JSONWriter struct {
	output io.Writer
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{output: output}
}

// jsonDocument is the exported JSON shape.
type jsonDocument struct {
	MainID  string                  `json:"main_id"`
	Reports []model.CanonicalReport `json:"reports"`
}

// Write implements Writer.
func (w *JSONWriter) Write(mainID string, reports []model.CanonicalReport) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonDocument{MainID: mainID, Reports: reports}); err != nil {
		return 0, err
	}
	n, err := w.output.Write(buf.Bytes())
	return n, err
}
