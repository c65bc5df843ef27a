package aggregate

import (
	"context"
	"log/slog"
	"time"

	"github.com/osintlab/personscan/internal/model"
	"github.com/osintlab/personscan/internal/normalize"
	"github.com/osintlab/personscan/internal/provider"
	"github.com/osintlab/personscan/internal/store"
)

// Orchestrator runs searches: it validates the query, fans out to
// every provider, derives the summary, and persists the snapshot.
type Orchestrator struct {
	providers       []provider.Provider
	store           *store.Store
	providerTimeout time.Duration
	logger          *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewOrchestrator creates an Orchestrator. A nil store disables
// persistence; searches then return reports without saving them.
func NewOrchestrator(providers []provider.Provider, st *store.Store, providerTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		providers:       providers,
		store:           st,
		providerTimeout: providerTimeout,
		logger:          logger,
		now:             time.Now,
	}
}

// SearchResult is the outcome of one search.
type SearchResult struct {
	// MainID is the subject document the snapshot belongs to.
	MainID string

	// SubID identifies this snapshot within the document.
	SubID string

	// Report is the assembled composite report.
	Report *model.RawCompositeReport

	// PersistenceErr is non-nil when the report could not be saved.
	// The report is still valid; callers decide whether to surface
	// the warning.
	PersistenceErr error
}

// GenerateReport runs one search end to end.
//
// Providers receive the query verbatim; registry-backed lookups
// normalize the name internally, while free-text searches need the
// exact handle the caller supplied. When the query carries a MainID
// the snapshot is appended to that subject's document; otherwise a
// new subject is created.
func (o *Orchestrator) GenerateReport(ctx context.Context, query model.Query) (*SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := o.now().UTC()
	mainID := query.MainID
	if mainID == "" {
		mainID = model.NewMainID(normalize.Name(query.Name), query.Location, now)
	}
	subID := model.NewSubID()

	o.logger.InfoContext(ctx, "search started",
		slog.String("main_id", mainID),
		slog.String("sub_id", subID),
		slog.String("name", query.Name),
		slog.Int("providers", len(o.providers)))

	report, err := o.fanOut(ctx, query)
	if err != nil {
		return nil, err
	}
	report.GeneratedAt = now
	report.Summary = deriveSummary(report)

	result := &SearchResult{MainID: mainID, SubID: subID, Report: report}

	if o.store != nil {
		if err := o.store.Append(ctx, mainID, subID, report); err != nil {
			// The caller still gets the report; losing the write must
			// not lose the search.
			result.PersistenceErr = &PersistenceError{MainID: mainID, Err: err}
			o.logger.ErrorContext(ctx, "failed to persist report",
				slog.String("main_id", mainID),
				slog.String("error", err.Error()))
		}
	}

	o.logger.InfoContext(ctx, "search complete",
		slog.String("main_id", mainID),
		slog.Int("failures", len(report.Failures)))

	return result, nil
}

// fanOut runs every provider concurrently and assembles the report.
func (o *Orchestrator) fanOut(ctx context.Context, query model.Query) (*model.RawCompositeReport, error) {
	tasks := make([]Task[provider.Payload], 0, len(o.providers))
	for _, p := range o.providers {
		tasks = append(tasks, Task[provider.Payload]{
			Name: p.Name(),
			Run: func(ctx context.Context) (provider.Payload, error) {
				return p.Search(ctx, query)
			},
		})
	}

	results := runAll(ctx, o.providerTimeout, tasks)

	// A dead context means the fan-out never ran to completion.
	if err := ctx.Err(); err != nil {
		return nil, &AggregationError{Err: err}
	}

	report := &model.RawCompositeReport{
		PersonalInfo:     model.PersonalInfo{Name: query.Name, Location: query.Location},
		AttachedMetadata: query.AttachedMetadata,
	}

	for _, res := range results {
		if res.Err != nil {
			if report.Failures == nil {
				report.Failures = make(map[string]string)
			}
			report.Failures[res.Name] = res.Err.Error()
			o.logger.WarnContext(ctx, "provider failed",
				slog.String("provider", res.Name),
				slog.String("error", res.Err.Error()))
			continue
		}
		if res.Value != nil {
			res.Value.Apply(report)
		}
	}

	return report, nil
}

// deriveSummary computes the report-level assessment from the
// assembled payloads.
func deriveSummary(report *model.RawCompositeReport) model.Summary {
	reg := report.RegistryRecords

	idSources := 0
	matched := make([]string, 0, 4)
	if len(reg.Voter) > 0 {
		idSources++
		matched = append(matched, "voter")
	}
	if len(reg.Pan) > 0 {
		idSources++
		matched = append(matched, "pan")
	}
	if len(reg.Aadhar) > 0 {
		idSources++
		matched = append(matched, "aadhar")
	}
	if len(reg.Criminal) > 0 {
		matched = append(matched, "criminal")
	}

	digital := report.SocialMedia.HasProfiles() ||
		len(report.WebSearch.SocialMedia) > 0 ||
		len(report.WebSearch.WorkProfiles) > 0

	return model.Summary{
		IdentityVerified:    idSources >= 2,
		DigitalPresence:     digital,
		CriminalRecordCount: len(reg.Criminal),
		MatchedSources:      matched,
	}
}

// AdvancedResult is the outcome of one sub-search of an advanced search.
type AdvancedResult struct {
	// Query is the sub-search's validated input.
	Query model.Query

	// Result is set when the sub-search succeeded.
	Result *SearchResult

	// Err is set when the sub-search failed.
	Err error
}

// AdvancedSearch runs several query variants sequentially and reports
// each outcome independently. One failing variant never aborts the
// rest; each variant fans out to all providers on its own.
func (o *Orchestrator) AdvancedSearch(ctx context.Context, queries []model.Query) []AdvancedResult {
	results := make([]AdvancedResult, len(queries))
	for i, q := range queries {
		res, err := o.GenerateReport(ctx, q)
		results[i] = AdvancedResult{Query: q, Result: res, Err: err}
	}
	return results
}
