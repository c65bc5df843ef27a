package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// googleSearchEndpoint is the Custom Search JSON API endpoint.
const googleSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

// socialDomains are hits classified as social media profiles.
var socialDomains = []string{
	"facebook.com",
	"instagram.com",
	"linkedin.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"pinterest.com",
}

// workDomains are hits classified as professional profiles.
var workDomains = []string{
	"naukri.com",
	"indeed.com",
	"glassdoor.com",
	"angel.co",
	"crunchbase.com",
	"github.com",
}

// WebSearch queries a search engine for the subject and classifies the
// hits into social, professional, and general buckets.
type WebSearch struct {
	apiKey         string
	searchEngineID string
	userAgent      string
	client         *http.Client
	logger         *slog.Logger

	// endpoint is overridable in tests.
	endpoint string
}

// NewWebSearch creates the web search provider. With empty credentials
// the provider returns empty payloads without calling out.
func NewWebSearch(apiKey, searchEngineID, userAgent string, timeout time.Duration, logger *slog.Logger) *WebSearch {
	return &WebSearch{
		apiKey:         apiKey,
		searchEngineID: searchEngineID,
		userAgent:      userAgent,
		client:         newHTTPClient(timeout),
		logger:         logger,
		endpoint:       googleSearchEndpoint,
	}
}

// Name implements Provider.
func (w *WebSearch) Name() string {
	return "websearch"
}

// googleSearchResponse is the subset of the Custom Search response we use.
type googleSearchResponse struct {
	Items []googleItem `json:"items"`
}

type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search implements Provider.
func (w *WebSearch) Search(ctx context.Context, query model.Query) (Payload, error) {
	if w.apiKey == "" || w.searchEngineID == "" {
		w.logger.DebugContext(ctx, "web search not configured, skipping")
		return WebSearchPayload{}, nil
	}

	term := fmt.Sprintf("%q", query.Name)
	if query.Location != "" {
		term += " " + query.Location
	}

	items, err := googleSearch(ctx, w.client, w.endpoint, w.userAgent, w.apiKey, w.searchEngineID, term)
	if err != nil {
		return nil, err
	}

	var data model.WebSearchData
	for _, item := range items {
		hit := model.SearchHit{Title: item.Title, Link: item.Link, Snippet: item.Snippet}
		switch classifyLink(item.Link) {
		case hitSocial:
			data.SocialMedia = append(data.SocialMedia, hit)
		case hitWork:
			data.WorkProfiles = append(data.WorkProfiles, hit)
		default:
			data.OtherInfo = append(data.OtherInfo, hit)
		}
	}

	w.logger.DebugContext(ctx, "web search complete",
		slog.Int("social", len(data.SocialMedia)),
		slog.Int("work", len(data.WorkProfiles)),
		slog.Int("other", len(data.OtherInfo)))

	return WebSearchPayload{Data: data}, nil
}

// googleSearch runs one Custom Search query and returns the raw items.
// Shared by every provider that rides on the search engine.
func googleSearch(ctx context.Context, client *http.Client, endpoint, userAgent, apiKey, searchEngineID, term string) ([]googleItem, error) {
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("cx", searchEngineID)
	params.Set("q", term)
	params.Set("num", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Items, nil
}

type hitKind int

const (
	hitOther hitKind = iota
	hitSocial
	hitWork
)

// classifyLink buckets a result URL by its host.
func classifyLink(link string) hitKind {
	u, err := url.Parse(link)
	if err != nil {
		return hitOther
	}
	host := strings.ToLower(u.Hostname())

	for _, d := range socialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return hitSocial
		}
	}
	for _, d := range workDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return hitWork
		}
	}
	return hitOther
}
