package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/provider"
	"github.com/osintlab/personscan/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProvider is a test double satisfying provider.Provider.
type stubProvider struct {
	name    string
	payload provider.Payload
	err     error
	delay   time.Duration
	panics  bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query model.Query) (provider.Payload, error) {
	if s.panics {
		panic("stub exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.payload, s.err
}

func registryStub(records model.RegistryRecords) *stubProvider {
	return &stubProvider{name: "registry", payload: provider.RegistryPayload{Data: records}}
}

func newTestOrchestrator(t *testing.T, providers []provider.Provider) (*Orchestrator, *store.Store) {
	t.Helper()

	st, err := store.Open(t.TempDir(), store.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return NewOrchestrator(providers, st, time.Second, testLogger()), st
}

func TestGenerateReportEndToEnd(t *testing.T) {
	t.Parallel()

	providers := []provider.Provider{
		registryStub(model.RegistryRecords{
			Voter: []model.VoterRecord{{EpicNumber: "ABC1234567", Name: "Ravi Kumar"}},
			Pan:   []model.PanRecord{{PanNumber: "ABCDE1234F", Name: "Ravi Kumar"}},
		}),
		&stubProvider{name: "websearch", payload: provider.WebSearchPayload{}},
	}
	o, st := newTestOrchestrator(t, providers)

	result, err := o.GenerateReport(context.Background(), model.Query{Name: "Ravi_Kumar-1a889a2b8", Location: "Mumbai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(result.MainID, "report_") {
		t.Errorf("main id missing prefix: %q", result.MainID)
	}
	if !strings.HasPrefix(result.SubID, "sub_") {
		t.Errorf("sub id missing prefix: %q", result.SubID)
	}
	if result.PersistenceErr != nil {
		t.Errorf("unexpected persistence error: %v", result.PersistenceErr)
	}

	report := result.Report
	if report.PersonalInfo.Name != "Ravi_Kumar-1a889a2b8" {
		t.Errorf("report must echo the queried name verbatim, got %q", report.PersonalInfo.Name)
	}

	// Two of three identity registries matched.
	if !report.Summary.IdentityVerified {
		t.Error("expected identity verified with voter and pan matches")
	}
	if report.Summary.DigitalPresence {
		t.Error("expected no digital presence without profiles")
	}
	if report.Summary.CriminalRecordCount != 0 {
		t.Errorf("expected 0 criminal records, got %d", report.Summary.CriminalRecordCount)
	}

	// The snapshot was persisted.
	record, err := st.Get(context.Background(), result.MainID)
	if err != nil {
		t.Fatalf("stored record not found: %v", err)
	}
	if record.ReportCount() != 1 {
		t.Errorf("expected 1 stored snapshot, got %d", record.ReportCount())
	}
}

// captureProvider records the query handed to it by the fan-out.
type captureProvider struct {
	name string
	seen chan model.Query
}

func (c *captureProvider) Name() string { return c.name }

func (c *captureProvider) Search(ctx context.Context, query model.Query) (provider.Payload, error) {
	c.seen <- query
	return provider.WebSearchPayload{}, nil
}

func TestGenerateReportHandsProvidersTheOriginalName(t *testing.T) {
	t.Parallel()

	capture := &captureProvider{name: "websearch", seen: make(chan model.Query, 1)}
	o, _ := newTestOrchestrator(t, []provider.Provider{capture})

	// The underscore and trailing token matter: exact handles must reach
	// free-text providers unmangled.
	result, err := o.GenerateReport(context.Background(), model.Query{Name: "John_Doe-1a889a2b8"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := <-capture.seen
	if got.Name != "John_Doe-1a889a2b8" {
		t.Errorf("provider received %q, want the original %q", got.Name, "John_Doe-1a889a2b8")
	}
	if result.Report.PersonalInfo.Name != "John_Doe-1a889a2b8" {
		t.Errorf("report name %q does not echo the query", result.Report.PersonalInfo.Name)
	}
}

func TestGenerateReportValidation(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, nil)

	_, err := o.GenerateReport(context.Background(), model.Query{})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "name" {
		t.Errorf("expected name field violation, got %q", verr.Field)
	}
}

func TestGenerateReportIsolatesProviderFailures(t *testing.T) {
	t.Parallel()

	providers := []provider.Provider{
		&stubProvider{name: "websearch", err: errors.New("quota exceeded")},
		&stubProvider{name: "crashy", panics: true},
		&stubProvider{name: "slow", delay: 5 * time.Second},
		registryStub(model.RegistryRecords{
			Criminal: []model.CriminalRecord{{Name: "Ravi Kumar", CaseNumber: "CR-1"}},
		}),
	}
	o, _ := newTestOrchestrator(t, providers)
	o.providerTimeout = 50 * time.Millisecond

	result, err := o.GenerateReport(context.Background(), model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatalf("provider failures must not fail the search: %v", err)
	}

	report := result.Report
	if len(report.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %v", report.Failures)
	}
	if report.Failures["websearch"] != "quota exceeded" {
		t.Errorf("unexpected websearch failure: %q", report.Failures["websearch"])
	}
	if !strings.Contains(report.Failures["crashy"], "panic") {
		t.Errorf("expected panic recorded, got %q", report.Failures["crashy"])
	}
	if report.Failures["slow"] == "" {
		t.Error("expected timeout failure for slow provider")
	}

	// The healthy provider's payload still arrived.
	if report.Summary.CriminalRecordCount != 1 {
		t.Errorf("healthy provider payload lost: %+v", report.RegistryRecords)
	}
}

func TestGenerateReportCancelledContext(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, []provider.Provider{
		&stubProvider{name: "websearch", payload: provider.WebSearchPayload{}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.GenerateReport(ctx, model.Query{Name: "Ravi Kumar"})
	var aerr *AggregationError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AggregationError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestGenerateReportReusesMainID(t *testing.T) {
	t.Parallel()

	o, st := newTestOrchestrator(t, nil)
	ctx := context.Background()

	first, err := o.GenerateReport(ctx, model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.GenerateReport(ctx, model.Query{Name: "Ravi Kumar", MainID: first.MainID})
	if err != nil {
		t.Fatal(err)
	}

	if second.MainID != first.MainID {
		t.Errorf("expected reused main id %q, got %q", first.MainID, second.MainID)
	}
	if second.SubID == first.SubID {
		t.Error("snapshots must have distinct sub ids")
	}

	record, err := st.Get(ctx, first.MainID)
	if err != nil {
		t.Fatal(err)
	}
	if record.ReportCount() != 2 {
		t.Errorf("expected 2 snapshots in document, got %d", record.ReportCount())
	}
}

func TestGenerateReportFreshMainIDsDiffer(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, nil)
	ctx := context.Background()

	first, err := o.GenerateReport(ctx, model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.GenerateReport(ctx, model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatal(err)
	}

	// Identity derivation mixes in the clock; identical queries get
	// distinct subjects unless the caller links them.
	if first.MainID == second.MainID {
		t.Errorf("expected distinct main ids, both %q", first.MainID)
	}
}

func TestGenerateReportPersistenceFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	o, st := newTestOrchestrator(t, nil)
	_ = st.Close() // Force the append to fail.

	result, err := o.GenerateReport(context.Background(), model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatalf("persistence failure must not fail the search: %v", err)
	}

	var perr *PersistenceError
	if !errors.As(result.PersistenceErr, &perr) {
		t.Fatalf("expected PersistenceError, got %v", result.PersistenceErr)
	}
	if perr.MainID != result.MainID {
		t.Errorf("persistence error names wrong document: %q", perr.MainID)
	}
	if result.Report == nil {
		t.Error("report lost on persistence failure")
	}
}

func TestDeriveSummaryIdentityVerification(t *testing.T) {
	t.Parallel()

	voter := []model.VoterRecord{{EpicNumber: "E1", Name: "X"}}
	pan := []model.PanRecord{{PanNumber: "P1", Name: "X"}}
	aadhar := []model.AadharRecord{{RefID: "A1", Name: "X"}}

	tests := []struct {
		name     string
		records  model.RegistryRecords
		verified bool
		sources  []string
	}{
		{name: "no matches", verified: false, sources: []string{}},
		{name: "voter only", records: model.RegistryRecords{Voter: voter}, verified: false, sources: []string{"voter"}},
		{name: "pan only", records: model.RegistryRecords{Pan: pan}, verified: false, sources: []string{"pan"}},
		{name: "aadhar only", records: model.RegistryRecords{Aadhar: aadhar}, verified: false, sources: []string{"aadhar"}},
		{name: "voter and pan", records: model.RegistryRecords{Voter: voter, Pan: pan}, verified: true, sources: []string{"voter", "pan"}},
		{name: "voter and aadhar", records: model.RegistryRecords{Voter: voter, Aadhar: aadhar}, verified: true, sources: []string{"voter", "aadhar"}},
		{name: "pan and aadhar", records: model.RegistryRecords{Pan: pan, Aadhar: aadhar}, verified: true, sources: []string{"pan", "aadhar"}},
		{name: "all three", records: model.RegistryRecords{Voter: voter, Pan: pan, Aadhar: aadhar}, verified: true, sources: []string{"voter", "pan", "aadhar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := deriveSummary(&model.RawCompositeReport{RegistryRecords: tt.records})
			if got.IdentityVerified != tt.verified {
				t.Errorf("identity verified = %v, want %v", got.IdentityVerified, tt.verified)
			}
			if len(got.MatchedSources) != len(tt.sources) {
				t.Fatalf("matched sources = %v, want %v", got.MatchedSources, tt.sources)
			}
			for i, src := range tt.sources {
				if got.MatchedSources[i] != src {
					t.Errorf("matched sources = %v, want %v", got.MatchedSources, tt.sources)
				}
			}
		})
	}
}

func TestDeriveSummaryCriminalDoesNotVerifyIdentity(t *testing.T) {
	t.Parallel()

	got := deriveSummary(&model.RawCompositeReport{
		RegistryRecords: model.RegistryRecords{
			Criminal: []model.CriminalRecord{{Name: "X"}, {Name: "X"}},
		},
	})

	if got.IdentityVerified {
		t.Error("criminal matches must not verify identity")
	}
	if got.CriminalRecordCount != 2 {
		t.Errorf("expected 2 criminal records, got %d", got.CriminalRecordCount)
	}
	if len(got.MatchedSources) != 1 || got.MatchedSources[0] != "criminal" {
		t.Errorf("unexpected matched sources: %v", got.MatchedSources)
	}
}

func TestDeriveSummaryDigitalPresence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		report model.RawCompositeReport
		want   bool
	}{
		{name: "nothing", want: false},
		{
			name: "dedicated social profile",
			report: model.RawCompositeReport{SocialMedia: model.SocialMediaData{
				Instagram: []model.SocialProfile{{Platform: "instagram", Link: "x"}},
			}},
			want: true,
		},
		{
			name: "web search social hit",
			report: model.RawCompositeReport{WebSearch: model.WebSearchData{
				SocialMedia: []model.SearchHit{{Link: "https://facebook.com/x"}},
			}},
			want: true,
		},
		{
			name: "web search work profile",
			report: model.RawCompositeReport{WebSearch: model.WebSearchData{
				WorkProfiles: []model.SearchHit{{Link: "https://naukri.com/x"}},
			}},
			want: true,
		},
		{
			name: "other info only",
			report: model.RawCompositeReport{WebSearch: model.WebSearchData{
				OtherInfo: []model.SearchHit{{Link: "https://news.example.com/x"}},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := deriveSummary(&tt.report); got.DigitalPresence != tt.want {
				t.Errorf("digital presence = %v, want %v", got.DigitalPresence, tt.want)
			}
		})
	}
}

func TestAdvancedSearchIsolatesVariants(t *testing.T) {
	t.Parallel()

	o, _ := newTestOrchestrator(t, nil)

	results := o.AdvancedSearch(context.Background(), []model.Query{
		{Name: "Ravi Kumar"},
		{},                          // invalid: empty name
		{Name: "Ravi Kumar Sharma"}, // runs despite previous failure
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("first variant failed: %v", results[0].Err)
	}
	var verr *model.ValidationError
	if !errors.As(results[1].Err, &verr) {
		t.Errorf("expected validation error on second variant, got %v", results[1].Err)
	}
	if results[2].Err != nil || results[2].Result == nil {
		t.Errorf("third variant must run despite earlier failure: %+v", results[2])
	}
}
