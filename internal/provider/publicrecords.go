package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// Bounds for each public records category.
const (
	maxCourtRecords    = 5
	maxPropertyRecords = 5
	maxBusinessRecords = 5
)

// PublicRecords searches open court, property, and business registries
// through targeted search engine queries. Results are search hits
// reshaped into record stubs: a link and a description, with the
// structured fields left for the investigator to confirm.
type PublicRecords struct {
	apiKey         string
	searchEngineID string
	userAgent      string
	client         *http.Client
	logger         *slog.Logger

	// endpoint is overridable in tests.
	endpoint string
}

// NewPublicRecords creates the public records provider. With empty
// credentials the provider returns empty payloads.
func NewPublicRecords(apiKey, searchEngineID, userAgent string, timeout time.Duration, logger *slog.Logger) *PublicRecords {
	return &PublicRecords{
		apiKey:         apiKey,
		searchEngineID: searchEngineID,
		userAgent:      userAgent,
		client:         newHTTPClient(timeout),
		logger:         logger,
		endpoint:       googleSearchEndpoint,
	}
}

// Name implements Provider.
func (p *PublicRecords) Name() string {
	return "publicrecords"
}

// Search implements Provider.
func (p *PublicRecords) Search(ctx context.Context, query model.Query) (Payload, error) {
	if p.apiKey == "" || p.searchEngineID == "" {
		p.logger.DebugContext(ctx, "public records search not configured, skipping")
		return PublicRecordsPayload{}, nil
	}

	var data model.PublicRecordsData

	courtHits, err := p.categorySearch(ctx, query, "court case judgment")
	if err != nil {
		return nil, fmt.Errorf("court records search: %w", err)
	}
	for _, hit := range head(courtHits, maxCourtRecords) {
		data.CourtRecords = append(data.CourtRecords, model.CourtRecord{
			CaseNumber: hit.Title,
			Court:      hostOf(hit.Link),
		})
	}

	propertyHits, err := p.categorySearch(ctx, query, "property registration deed")
	if err != nil {
		return nil, fmt.Errorf("property records search: %w", err)
	}
	for _, hit := range head(propertyHits, maxPropertyRecords) {
		data.PropertyRecords = append(data.PropertyRecords, model.PropertyRecord{
			PropertyID:  hit.Title,
			Link:        hit.Link,
			Description: hit.Snippet,
		})
	}

	businessHits, err := p.categorySearch(ctx, query, "company director registration")
	if err != nil {
		return nil, fmt.Errorf("business records search: %w", err)
	}
	for _, hit := range head(businessHits, maxBusinessRecords) {
		data.BusinessRecords = append(data.BusinessRecords, model.BusinessRecord{
			CompanyName: hit.Title,
			Link:        hit.Link,
			Description: hit.Snippet,
		})
	}

	return PublicRecordsPayload{Data: data}, nil
}

// categorySearch runs one category-qualified search for the subject.
func (p *PublicRecords) categorySearch(ctx context.Context, query model.Query, category string) ([]googleItem, error) {
	term := fmt.Sprintf("%q %s", query.Name, category)
	if query.Location != "" {
		term += " " + query.Location
	}
	return googleSearch(ctx, p.client, p.endpoint, p.userAgent, p.apiKey, p.searchEngineID, term)
}
