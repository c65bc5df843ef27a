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

// hibpEndpoint is the Have I Been Pwned breached-account endpoint.
const hibpEndpoint = "https://haveibeenpwned.com/api/v3/breachedaccount/"

// breachRecommendations is the remediation advice attached whenever
// the subject appears in at least one breach.
var breachRecommendations = []string{
	"Change passwords for all accounts using the breached email address",
	"Enable two-factor authentication on affected services",
	"Check for credential reuse across other accounts",
	"Monitor financial statements if payment data was compromised",
}

// Breach checks the subject's known email addresses against a breach
// index. Addresses come from the query's attached metadata; the
// provider does not guess addresses on its own.
type Breach struct {
	apiKey    string
	userAgent string
	client    *http.Client
	logger    *slog.Logger

	// endpoint is overridable in tests.
	endpoint string
}

// NewBreach creates the breach lookup provider. With an empty API key
// the provider returns empty payloads.
func NewBreach(apiKey, userAgent string, timeout time.Duration, logger *slog.Logger) *Breach {
	return &Breach{
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    newHTTPClient(timeout),
		logger:    logger,
		endpoint:  hibpEndpoint,
	}
}

// Name implements Provider.
func (b *Breach) Name() string {
	return "breach"
}

// hibpBreach is the subset of the breach record we use.
type hibpBreach struct {
	Name        string   `json:"Name"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	AddedDate   string   `json:"AddedDate"`
	DataClasses []string `json:"DataClasses"`
	Description string   `json:"Description"`
}

// Search implements Provider.
func (b *Breach) Search(ctx context.Context, query model.Query) (Payload, error) {
	if b.apiKey == "" {
		b.logger.DebugContext(ctx, "breach lookup not configured, skipping")
		return BreachPayload{}, nil
	}

	emails := attachedEmails(query)
	if len(emails) == 0 {
		return BreachPayload{}, nil
	}

	var data model.BreachData
	seen := make(map[string]bool)

	for _, email := range emails {
		breaches, err := b.lookup(ctx, email)
		if err != nil {
			return nil, err
		}
		for _, breach := range breaches {
			if seen[breach.Name] {
				continue
			}
			seen[breach.Name] = true
			data.Breaches = append(data.Breaches, model.Breach{
				Name:            breach.Name,
				Domain:          breach.Domain,
				BreachDate:      breach.BreachDate,
				AddedDate:       breach.AddedDate,
				CompromisedData: breach.DataClasses,
				Description:     stripTags(breach.Description),
				Link:            "https://haveibeenpwned.com/breach/" + url.PathEscape(breach.Name),
			})
		}
	}

	if len(data.Breaches) > 0 {
		data.Recommendations = breachRecommendations
	}

	return BreachPayload{Data: data}, nil
}

// lookup fetches the breach list for one address. 404 means the
// address is clean.
func (b *Breach) lookup(ctx context.Context, email string) ([]hibpBreach, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.endpoint+url.PathEscape(email)+"?truncateResponse=false", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build breach request: %w", err)
	}
	req.Header.Set("hibp-api-key", b.apiKey)
	req.Header.Set("User-Agent", b.userAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("breach request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("breach API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var breaches []hibpBreach
	if err := json.NewDecoder(resp.Body).Decode(&breaches); err != nil {
		return nil, fmt.Errorf("failed to decode breach response: %w", err)
	}
	return breaches, nil
}

// attachedEmails collects email addresses from the query metadata.
// Accepts a single "email" string or an "emails" list.
func attachedEmails(query model.Query) []string {
	var out []string

	if email, ok := query.AttachedMetadata["email"].(string); ok && email != "" {
		out = append(out, email)
	}
	if list, ok := query.AttachedMetadata["emails"].([]any); ok {
		for _, entry := range list {
			if email, ok := entry.(string); ok && email != "" {
				out = append(out, email)
			}
		}
	}

	return out
}

// stripTags removes the HTML markup breach descriptions arrive with.
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
