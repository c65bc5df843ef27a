package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

// nominatimEndpoint is the OpenStreetMap geocoding endpoint.
const nominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// Geolocation geocodes the query's location hint through the
// OpenStreetMap Nominatim service.
type Geolocation struct {
	userAgent string
	client    *http.Client
	logger    *slog.Logger

	// endpoint is overridable in tests.
	endpoint string
}

// NewGeolocation creates the geolocation provider.
func NewGeolocation(userAgent string, timeout time.Duration, logger *slog.Logger) *Geolocation {
	return &Geolocation{
		userAgent: userAgent,
		client:    newHTTPClient(timeout),
		logger:    logger,
		endpoint:  nominatimEndpoint,
	}
}

// Name implements Provider.
func (g *Geolocation) Name() string {
	return "geolocation"
}

// nominatimResult is one entry of the Nominatim response.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Search implements Provider. A query without a location hint yields
// an empty payload.
func (g *Geolocation) Search(ctx context.Context, query model.Query) (Payload, error) {
	if query.Location == "" {
		return GeolocationPayload{}, nil
	}

	params := url.Values{}
	params.Set("q", query.Location)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	// Nominatim's usage policy requires an identifying user agent.
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		g.logger.DebugContext(ctx, "location did not geocode", slog.String("location", query.Location))
		return GeolocationPayload{}, nil
	}

	top := results[0]
	lat, _ := strconv.ParseFloat(top.Lat, 64)
	lon, _ := strconv.ParseFloat(top.Lon, 64)

	city := top.Address.City
	if city == "" {
		city = top.Address.Town
	}
	if city == "" {
		city = top.Address.Village
	}

	return GeolocationPayload{Data: model.GeolocationData{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: top.DisplayName,
		Address: model.AddressInfo{
			City:        city,
			State:       top.Address.State,
			Country:     top.Address.Country,
			CountryCode: top.Address.CountryCode,
		},
	}}, nil
}
