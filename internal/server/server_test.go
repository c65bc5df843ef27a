package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/osintlab/personscan/internal/aggregate"
	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/provider"
	"github.com/osintlab/personscan/internal/store"
)

type stubProvider struct {
	name    string
	payload provider.Payload
	err     error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query model.Query) (provider.Payload, error) {
	return p.payload, p.err
}

func registryStub() *stubProvider {
	return &stubProvider{
		name: "registry",
		payload: provider.RegistryPayload{Data: model.RegistryRecords{
			Voter: []model.VoterRecord{{Name: "Ravi Kumar", EpicNumber: "ABC1234567"}},
			Pan:   []model.PanRecord{{Name: "Ravi Kumar", PanNumber: "ABCDE1234F"}},
		}},
	}
}

func newTestServer(t *testing.T, providers ...provider.Provider) (*httptest.Server, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir(), store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := aggregate.NewOrchestrator(providers, st, time.Second, logger)
	srv := New(orchestrator, st, logger, DefaultOptions())

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestSearchGet(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar&location=Mumbai")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[searchResponse](t, resp)
	if body.MainID == "" || body.SubID == "" {
		t.Errorf("missing identifiers: %+v", body)
	}
	if body.Report.PersonalInfo.Name != "Ravi Kumar" {
		t.Errorf("unexpected name %q", body.Report.PersonalInfo.Name)
	}
	if !body.Report.Summary.IdentityVerified {
		t.Error("expected identity verified with voter and pan matches")
	}
	if body.Warning != "" {
		t.Errorf("unexpected warning %q", body.Warning)
	}
}

func TestSearchGetValidation(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
}

func TestSearchPost(t *testing.T) {
	t.Parallel()
	ts, st := newTestServer(t, registryStub())

	body := `{"name": "Ravi Kumar", "location": "Mumbai", "metadata": {"note": "tip-off"}}`
	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeBody[searchResponse](t, resp)

	record, err := st.Get(context.Background(), result.MainID)
	if err != nil {
		t.Fatalf("report was not persisted: %v", err)
	}
	raw, ok := record.Reports[result.SubID]
	if !ok {
		t.Fatalf("snapshot %s missing from stored document", result.SubID)
	}
	if raw.AttachedMetadata["note"] != "tip-off" {
		t.Errorf("metadata not carried through: %v", raw.AttachedMetadata)
	}
}

func TestSearchPostInvalidBody(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", resp.StatusCode)
	}
}

func TestSearchPostInvalidImage(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	body := `{"name": "Ravi Kumar", "image_b64": "%%%not-base64%%%"}`
	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for undecodable image, got %d", resp.StatusCode)
	}
}

func TestSearchMainIDReuse(t *testing.T) {
	t.Parallel()
	ts, st := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	first := decodeBody[searchResponse](t, resp)

	resp, err = http.Get(ts.URL + "/search?name=Ravi+Kumar&main_id=" + first.MainID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	second := decodeBody[searchResponse](t, resp)

	if second.MainID != first.MainID {
		t.Fatalf("main ID not reused: %s vs %s", second.MainID, first.MainID)
	}
	record, err := st.Get(context.Background(), first.MainID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.ReportCount() != 2 {
		t.Errorf("expected 2 snapshots, got %d", record.ReportCount())
	}
}

func TestAdvancedSearch(t *testing.T) {
	t.Parallel()
	ts, st := newTestServer(t, registryStub())

	body := `{"name": "Ravi Kumar", "email": "ravi@example.com", "phone": "+919876543210"}`
	resp, err := http.Post(ts.URL+"/advanced-search", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeBody[advancedSearchResponse](t, resp)
	for _, param := range []string{"name", "email", "phone"} {
		entry, ok := result.Results[param]
		if !ok {
			t.Fatalf("missing sub-search %q", param)
		}
		if entry.Error != "" {
			t.Errorf("sub-search %q failed: %s", param, entry.Error)
		}
		if entry.Report == nil {
			t.Errorf("sub-search %q has no report", param)
		}
	}
	if _, ok := result.Results["domain"]; ok {
		t.Error("domain sub-search ran without a domain parameter")
	}

	// All sub-searches share the subject document.
	record, err := st.Get(context.Background(), result.MainID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if record.ReportCount() != 3 {
		t.Errorf("expected 3 snapshots, got %d", record.ReportCount())
	}
}

func TestAdvancedSearchRequiresName(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Post(ts.URL+"/advanced-search", "application/json",
		strings.NewReader(`{"email": "ravi@example.com"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without a name, got %d", resp.StatusCode)
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	search := decodeBody[searchResponse](t, resp)

	resp, err = http.Get(ts.URL + "/report/" + search.MainID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	record := decodeBody[model.MainRecord](t, resp)
	if record.MainID != search.MainID {
		t.Errorf("unexpected main ID %q", record.MainID)
	}
	if len(record.Reports) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(record.Reports))
	}
}

func TestGetReportNotFound(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/report/report_missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListReports(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	for _, name := range []string{"Ravi+Kumar", "Priya+Sharma", "Amit+Patel"} {
		resp, err := http.Get(ts.URL + "/search?name=" + name)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/reports?limit=2")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	listing := decodeBody[listResponse](t, resp)
	if listing.Total != 3 {
		t.Errorf("expected total 3, got %d", listing.Total)
	}
	if len(listing.Reports) != 2 {
		t.Errorf("expected 2 entries, got %d", len(listing.Reports))
	}
	if listing.Limit != 2 || listing.Offset != 0 {
		t.Errorf("unexpected paging echo: limit=%d offset=%d", listing.Limit, listing.Offset)
	}
}

func TestListReportsLimitCap(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/reports?limit=9999")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	listing := decodeBody[listResponse](t, resp)
	if listing.Limit != DefaultOptions().MaxListLimit {
		t.Errorf("limit not capped: %d", listing.Limit)
	}
}

func TestDeleteReport(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	search := decodeBody[searchResponse](t, resp)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/report/"+search.MainID, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// The second delete hits a missing record.
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on repeat delete, got %d", resp.StatusCode)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	search := decodeBody[searchResponse](t, resp)

	tests := []struct {
		format      string
		status      int
		contentType string
	}{
		{format: "json", status: http.StatusOK, contentType: "application/json"},
		{format: "csv", status: http.StatusOK, contentType: "text/csv"},
		{format: "markdown", status: http.StatusOK, contentType: "text/markdown"},
		{format: "pdf", status: http.StatusNotImplemented},
		{format: "xml", status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/report/" + search.MainID + "/export?format=" + tt.format)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.contentType != "" && resp.Header.Get("Content-Type") != tt.contentType {
				t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
			}
			if tt.status == http.StatusOK {
				data, err := io.ReadAll(resp.Body)
				if err != nil {
					t.Fatalf("failed to read body: %v", err)
				}
				if !bytes.Contains(data, []byte(search.MainID)) {
					t.Errorf("export does not mention the report ID")
				}
			}
		})
	}
}

func TestExportNotFound(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/report/report_missing/export?format=json")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestProviderFailureDoesNotFailSearch(t *testing.T) {
	t.Parallel()
	failing := &stubProvider{name: "breach", err: errors.New("upstream down")}
	ts, _ := newTestServer(t, registryStub(), failing)

	resp, err := http.Get(ts.URL + "/search?name=Ravi+Kumar")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 despite provider failure, got %d", resp.StatusCode)
	}
	body := decodeBody[searchResponse](t, resp)
	if !body.Report.Summary.IdentityVerified {
		t.Error("registry results lost when a sibling provider failed")
	}
}

func TestNilStoreAnswersWithErrors(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := aggregate.NewOrchestrator([]provider.Provider{registryStub()}, nil, time.Second, logger)
	srv := New(orchestrator, nil, logger, DefaultOptions())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "get report", method: http.MethodGet, path: "/report/report_x", want: http.StatusInternalServerError},
		{name: "list reports", method: http.MethodGet, path: "/reports", want: http.StatusInternalServerError},
		{name: "delete report", method: http.MethodDelete, path: "/report/report_x", want: http.StatusInternalServerError},
		{name: "export report", method: http.MethodGet, path: "/report/report_x/export", want: http.StatusInternalServerError},
		{name: "search still works", method: http.MethodGet, path: "/search?name=Ravi+Kumar", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts, _ := newTestServer(t, registryStub())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
