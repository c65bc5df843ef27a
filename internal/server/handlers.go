package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osintlab/personscan/internal/export"
	"github.com/osintlab/personscan/internal/format"
	"github.com/osintlab/personscan/internal/imagemeta"
	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/normalize"
	"github.com/osintlab/personscan/internal/store"
)

// searchRequest is the POST /search body. The optional image is
// base64-encoded; its EXIF metadata is merged into the query metadata
// before the search runs.
type searchRequest struct {
	model.Query
	ImageB64 string `json:"image_b64,omitempty"`
}

// searchResponse is the answer to a completed search.
type searchResponse struct {
	MainID  string                `json:"main_id"`
	SubID   string                `json:"sub_id"`
	Report  model.CanonicalReport `json:"report"`
	Warning string                `json:"warning,omitempty"`
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.Query{
		Name:     q.Get("name"),
		Location: q.Get("location"),
		MainID:   q.Get("main_id"),
	}
	s.runSearch(w, r, query)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.ImageB64 != "" {
		meta, err := imagemeta.ExtractBase64(req.ImageB64)
		switch {
		case errors.Is(err, imagemeta.ErrNoMetadata):
			// An image without EXIF data is not a client error.
		case err != nil:
			writeError(w, &model.ValidationError{Field: "image_b64", Reason: err.Error()})
			return
		default:
			if req.AttachedMetadata == nil {
				req.AttachedMetadata = make(map[string]any, len(meta))
			}
			// Caller-supplied metadata wins over extracted values.
			for k, v := range meta {
				if _, ok := req.AttachedMetadata[k]; !ok {
					req.AttachedMetadata[k] = v
				}
			}
		}
	}

	s.runSearch(w, r, req.Query)
}

// runSearch generates one report and answers with its canonical form.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, query model.Query) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ReportTimeout)
	defer cancel()

	result, err := s.orchestrator.GenerateReport(ctx, query)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := searchResponse{
		MainID: result.MainID,
		SubID:  result.SubID,
		Report: format.Format(result.MainID, result.SubID, result.Report),
	}
	if result.PersistenceErr != nil {
		resp.Warning = "report generated but not persisted"
	}
	writeJSON(w, http.StatusOK, resp)
}

// advancedSearchRequest is the POST /advanced-search body. Each
// supplied optional parameter adds one isolated sub-search.
type advancedSearchRequest struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	MainID   string `json:"main_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// advancedEntry is one sub-search outcome. Exactly one of Report and
// Error is meaningful.
type advancedEntry struct {
	SubID   string                 `json:"sub_id,omitempty"`
	Report  *model.CanonicalReport `json:"report,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Warning string                 `json:"warning,omitempty"`
}

// advancedSearchResponse maps each searched parameter to its outcome.
type advancedSearchResponse struct {
	MainID  string                   `json:"main_id"`
	Results map[string]advancedEntry `json:"results"`
}

func (s *Server) handleAdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var req advancedSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	base := model.Query{Name: req.Name, Location: req.Location}
	if err := base.Validate(); err != nil {
		writeError(w, err)
		return
	}

	// All sub-searches share one subject so their snapshots land in the
	// same document.
	mainID := req.MainID
	if mainID == "" {
		mainID = model.NewMainID(normalize.Name(req.Name), req.Location, time.Now().UTC())
	}

	params := make([]string, 0, 4)
	queries := make([]model.Query, 0, 4)

	addQuery := func(param string, meta map[string]any) {
		params = append(params, param)
		queries = append(queries, model.Query{
			Name:             req.Name,
			Location:         req.Location,
			MainID:           mainID,
			AttachedMetadata: meta,
		})
	}

	addQuery("name", nil)
	if req.Email != "" {
		addQuery("email", map[string]any{"email": req.Email})
	}
	if req.Phone != "" {
		addQuery("phone", map[string]any{"phone": req.Phone})
	}
	if req.Domain != "" {
		addQuery("domain", map[string]any{"domain": req.Domain})
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ReportTimeout*time.Duration(len(queries)))
	defer cancel()

	results := s.orchestrator.AdvancedSearch(ctx, queries)

	resp := advancedSearchResponse{
		MainID:  mainID,
		Results: make(map[string]advancedEntry, len(results)),
	}
	for i, res := range results {
		if res.Err != nil {
			resp.Results[params[i]] = advancedEntry{Error: res.Err.Error()}
			continue
		}
		canonical := format.Format(res.Result.MainID, res.Result.SubID, res.Result.Report)
		entry := advancedEntry{SubID: res.Result.SubID, Report: &canonical}
		if res.Result.PersistenceErr != nil {
			entry.Warning = "report generated but not persisted"
		}
		resp.Results[params[i]] = entry
	}

	writeJSON(w, http.StatusOK, resp)
}

// requireStore rejects persistence-backed requests when the server was
// built without a store.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "report store is not available"})
		return false
	}
	return true
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	record, err := s.store.Get(r.Context(), chi.URLParam(r, "mainID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "mainID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listResponse is the paginated report listing.
type listResponse struct {
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
	Reports []store.Subject `json:"reports"`
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit := queryInt(r, "limit", s.opts.ListLimit)
	if limit > s.opts.MaxListLimit {
		limit = s.opts.MaxListLimit
	}
	offset := queryInt(r, "offset", 0)

	subjects, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	total, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if subjects == nil {
		subjects = []store.Subject{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Reports: subjects,
	})
}

// exportContentTypes maps export formats to response content types.
var exportContentTypes = map[string]string{
	export.FormatJSON:     "application/json",
	export.FormatCSV:      "text/csv",
	export.FormatMarkdown: "text/markdown",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	mainID := chi.URLParam(r, "mainID")

	exportFormat := r.URL.Query().Get("format")
	if exportFormat == "" {
		exportFormat = export.FormatJSON
	}

	record, err := s.store.Get(r.Context(), mainID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The writer renders into a buffer first so format errors can still
	// become error responses.
	var buf bytes.Buffer
	writer, err := export.NewWriter(exportFormat, &buf)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := writer.Write(mainID, canonicalSnapshots(record)); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[exportFormat])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", mainID+"."+extensionFor(exportFormat)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.WarnContext(r.Context(), "export write failed",
			slog.String("main_id", mainID),
			slog.String("error", err.Error()))
	}
}

// canonicalSnapshots projects every stored snapshot to its canonical
// form, ordered oldest first.
func canonicalSnapshots(record *model.MainRecord) []model.CanonicalReport {
	reports := make([]model.CanonicalReport, 0, len(record.Reports))
	for subID, raw := range record.Reports {
		reports = append(reports, format.Format(record.MainID, subID, raw))
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].GeneratedAt.Equal(reports[j].GeneratedAt) {
			return reports[i].GeneratedAt.Before(reports[j].GeneratedAt)
		}
		return reports[i].SubID < reports[j].SubID
	})
	return reports
}

// extensionFor returns the file extension for an export format.
func extensionFor(exportFormat string) string {
	if exportFormat == export.FormatMarkdown {
		return "md"
	}
	return exportFormat
}

// decodeJSON decodes a request body, rejecting unparseable bodies as
// validation errors.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &model.ValidationError{Field: "body", Reason: "is not valid JSON"}
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def for
// missing, malformed, or negative values.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
