package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// Provider is one data source in the investigation fan-out.
//
// Search returns the provider's payload for its section of the
// composite report. A nil error with an empty payload means the
// provider ran and found nothing (or was not configured); an error
// means the provider failed and its section stays empty.
type Provider interface {
	// Name identifies the provider in failure records and logs.
	Name() string

	// Search looks up the subject and returns this provider's payload.
	Search(ctx context.Context, query model.Query) (Payload, error)
}

// Payload is one provider's contribution to a composite report. The
// concrete payload types are closed: each writes exactly one report
// section, which keeps concurrent fan-out writes disjoint.
type Payload interface {
	// Apply writes the payload into its section of the report.
	Apply(report *model.RawCompositeReport)
}

// WebSearchPayload carries the web search provider's section.
type WebSearchPayload struct {
	Data model.WebSearchData
}

// Apply implements Payload.
func (p WebSearchPayload) Apply(report *model.RawCompositeReport) {
	report.WebSearch = p.Data
}

// SocialMediaPayload carries the social media provider's section.
type SocialMediaPayload struct {
	Data model.SocialMediaData
}

// Apply implements Payload.
func (p SocialMediaPayload) Apply(report *model.RawCompositeReport) {
	report.SocialMedia = p.Data
}

// EmailPhonePayload carries the contact discovery provider's section.
type EmailPhonePayload struct {
	Data model.EmailPhoneData
}

// Apply implements Payload.
func (p EmailPhonePayload) Apply(report *model.RawCompositeReport) {
	report.EmailPhone = p.Data
}

// DomainPayload carries the domain provider's section.
type DomainPayload struct {
	Data model.DomainData
}

// Apply implements Payload.
func (p DomainPayload) Apply(report *model.RawCompositeReport) {
	report.Domains = p.Data
}

// GeolocationPayload carries the geolocation provider's section.
type GeolocationPayload struct {
	Data model.GeolocationData
}

// Apply implements Payload.
func (p GeolocationPayload) Apply(report *model.RawCompositeReport) {
	report.Geolocation = p.Data
}

// PublicRecordsPayload carries the public records provider's section.
type PublicRecordsPayload struct {
	Data model.PublicRecordsData
}

// Apply implements Payload.
func (p PublicRecordsPayload) Apply(report *model.RawCompositeReport) {
	report.PublicRecords = p.Data
}

// BreachPayload carries the breach lookup provider's section.
type BreachPayload struct {
	Data model.BreachData
}

// Apply implements Payload.
func (p BreachPayload) Apply(report *model.RawCompositeReport) {
	report.BreachData = p.Data
}

// RegistryPayload carries the structured registry provider's section.
type RegistryPayload struct {
	Data model.RegistryRecords
}

// Apply implements Payload.
func (p RegistryPayload) Apply(report *model.RawCompositeReport) {
	report.RegistryRecords = p.Data
}

// head returns at most n leading elements of s.
func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// hostOf returns the hostname of a URL, or empty string.
func hostOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// newHTTPClient builds the HTTP client providers share. Redirects are
// followed, but never more than five deep.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
