package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// hunterVerifyEndpoint is the email verification API endpoint.
const hunterVerifyEndpoint = "https://api.hunter.io/v2/email-verifier"

// candidateDomains are the mail providers candidate addresses are
// generated against.
var candidateDomains = []string{"gmail.com", "outlook.com", "yahoo.com"}

// minVerifyScore is the verifier confidence below which a candidate
// address is discarded.
const minVerifyScore = 70

// phonePattern matches loosely E.164-shaped phone numbers.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,18}[0-9]$`)

// EmailPhone discovers likely contact points for the subject.
// Addresses supplied in the query metadata are verified directly;
// further candidates are generated from name permutations and checked
// against a verification API. Phone numbers supplied in the query
// metadata are validated and normalized.
type EmailPhone struct {
	apiKey    string
	userAgent string
	client    *http.Client
	logger    *slog.Logger

	// endpoint is overridable in tests.
	endpoint string
}

// NewEmailPhone creates the contact discovery provider. With an empty
// API key, email discovery is skipped; phone validation still runs.
func NewEmailPhone(apiKey, userAgent string, timeout time.Duration, logger *slog.Logger) *EmailPhone {
	return &EmailPhone{
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    newHTTPClient(timeout),
		logger:    logger,
		endpoint:  hunterVerifyEndpoint,
	}
}

// Name implements Provider.
func (e *EmailPhone) Name() string {
	return "emailphone"
}

// Search implements Provider.
func (e *EmailPhone) Search(ctx context.Context, query model.Query) (Payload, error) {
	var data model.EmailPhoneData

	data.Phones = e.validatePhones(query)

	// Addresses supplied in the query metadata are caller-asserted
	// contact points: they are always kept, and scored by the verifier
	// when one is configured.
	seen := make(map[string]bool)
	for _, supplied := range attachedEmails(query) {
		if seen[supplied] {
			continue
		}
		seen[supplied] = true

		hit := model.EmailHit{Address: supplied, Type: "provided"}
		if e.apiKey != "" {
			verified, ok, err := e.verify(ctx, supplied)
			if err != nil {
				return nil, err
			}
			if ok {
				hit.Confidence = verified.Confidence
			}
		}
		data.Emails = append(data.Emails, hit)
	}

	if e.apiKey == "" {
		e.logger.DebugContext(ctx, "email verification not configured, skipping email discovery")
		return EmailPhonePayload{Data: data}, nil
	}

	for _, candidate := range emailCandidates(query.Name) {
		if seen[candidate] {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		hit, ok, err := e.verify(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if ok {
			data.Emails = append(data.Emails, hit)
		}
	}

	return EmailPhonePayload{Data: data}, nil
}

// emailCandidates generates address permutations from a subject name.
// "Ravi Kumar" produces ravi.kumar@, ravikumar@, and rkumar@ per domain.
func emailCandidates(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return nil
	}

	var locals []string
	first := sanitizeLocal(fields[0])
	if first == "" {
		return nil
	}
	last := ""
	if len(fields) > 1 {
		last = sanitizeLocal(fields[len(fields)-1])
	}
	if last == "" {
		locals = []string{first}
	} else {
		locals = []string{
			first + "." + last,
			first + last,
			first[:1] + last,
		}
	}

	var out []string
	seen := make(map[string]bool)
	for _, local := range locals {
		if local == "" || seen[local] {
			continue
		}
		seen[local] = true
		for _, domain := range candidateDomains {
			out = append(out, local+"@"+domain)
		}
	}
	return out
}

// sanitizeLocal strips characters not allowed in a mail local part.
func sanitizeLocal(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// hunterVerifyResponse is the subset of the verifier response we use.
type hunterVerifyResponse struct {
	Data struct {
		Status string `json:"status"`
		Score  int    `json:"score"`
		Email  string `json:"email"`
	} `json:"data"`
}

// verify checks one candidate address. The second return value reports
// whether the address should be kept.
func (e *EmailPhone) verify(ctx context.Context, address string) (model.EmailHit, bool, error) {
	params := url.Values{}
	params.Set("email", address)
	params.Set("api_key", e.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return model.EmailHit{}, false, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return model.EmailHit{}, false, fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	// Rate limiting on one candidate is not a provider failure.
	if resp.StatusCode == http.StatusTooManyRequests {
		return model.EmailHit{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.EmailHit{}, false, fmt.Errorf("verify API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed hunterVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return model.EmailHit{}, false, fmt.Errorf("failed to decode verify response: %w", err)
	}

	if parsed.Data.Status != "valid" || parsed.Data.Score < minVerifyScore {
		return model.EmailHit{}, false, nil
	}

	return model.EmailHit{
		Address:    address,
		Type:       "personal",
		Confidence: parsed.Data.Score,
	}, true, nil
}

// validatePhones keeps well-formed phone numbers from the query's
// attached metadata.
func (e *EmailPhone) validatePhones(query model.Query) []model.PhoneHit {
	raw, ok := query.AttachedMetadata["phone"].(string)
	if !ok || raw == "" {
		return nil
	}

	valid := phonePattern.MatchString(strings.TrimSpace(raw))
	hit := model.PhoneHit{Number: strings.TrimSpace(raw), Valid: valid}
	if strings.HasPrefix(hit.Number, "+") {
		if idx := strings.IndexAny(hit.Number[1:], " -("); idx > 0 {
			hit.CountryCode = hit.Number[:idx+1]
		}
	}
	return []model.PhoneHit{hit}
}
