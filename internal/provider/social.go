package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/osintlab/personscan/internal/browser"
	"github.com/osintlab/personscan/internal/model"
)

// maxProfilesPerPlatform bounds how many profile hits are kept per platform.
const maxProfilesPerPlatform = 3

// socialPlatform describes one platform the provider scrapes for.
type socialPlatform struct {
	name   string
	domain string
	// pathHint restricts hits to profile-shaped URLs, e.g. "/in/" for
	// LinkedIn. Empty means any path on the domain counts.
	pathHint string
}

var socialPlatforms = []socialPlatform{
	{name: "facebook", domain: "facebook.com"},
	{name: "instagram", domain: "instagram.com"},
	{name: "linkedin", domain: "linkedin.com", pathHint: "/in/"},
	{name: "twitter", domain: "twitter.com"},
}

// SocialMedia discovers per-platform profiles by rendering public
// search result pages in a headless browser and extracting profile
// links from the rendered DOM.
//
// Design decision: search pages are rendered rather than fetched raw
// because the result lists are assembled client-side; a plain GET
// returns a shell page with no links in it.
type SocialMedia struct {
	pool   *browser.Pool
	logger *slog.Logger
}

// NewSocialMedia creates the social media provider. A nil pool
// disables the provider; it then returns empty payloads.
func NewSocialMedia(pool *browser.Pool, logger *slog.Logger) *SocialMedia {
	return &SocialMedia{pool: pool, logger: logger}
}

// Name implements Provider.
func (s *SocialMedia) Name() string {
	return "social"
}

// Search implements Provider.
func (s *SocialMedia) Search(ctx context.Context, query model.Query) (Payload, error) {
	if s.pool == nil {
		s.logger.DebugContext(ctx, "social media provider has no browser pool, skipping")
		return SocialMediaPayload{}, nil
	}

	var data model.SocialMediaData
	var lastErr error
	found := 0

	for _, platform := range socialPlatforms {
		profiles, err := s.searchPlatform(ctx, platform, query)
		if err != nil {
			// One blocked platform must not sink the other three.
			s.logger.WarnContext(ctx, "platform search failed",
				slog.String("platform", platform.name),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		found += len(profiles)

		switch platform.name {
		case "facebook":
			data.Facebook = profiles
		case "instagram":
			data.Instagram = profiles
		case "linkedin":
			data.LinkedIn = profiles
		case "twitter":
			data.Twitter = profiles
		}
	}

	// Report failure only when every platform failed.
	if found == 0 && !data.HasProfiles() && lastErr != nil {
		return nil, fmt.Errorf("all platform searches failed: %w", lastErr)
	}

	return SocialMediaPayload{Data: data}, nil
}

// searchPlatform renders a platform-scoped search page and extracts
// profile links from it.
func (s *SocialMedia) searchPlatform(ctx context.Context, platform socialPlatform, query model.Query) ([]model.SocialProfile, error) {
	term := fmt.Sprintf("site:%s %q", platform.domain, query.Name)
	if query.Location != "" {
		term += " " + query.Location
	}
	searchURL := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(term)

	page, err := s.pool.Acquire(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open search page: %w", err)
	}
	defer s.pool.Release(page)

	content, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}

	return extractProfiles(content, platform), nil
}

// extractProfiles walks the rendered document and collects anchors
// pointing at profile URLs on the platform's domain.
func extractProfiles(content string, platform socialPlatform) []model.SocialProfile {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var profiles []model.SocialProfile
	seen := make(map[string]bool)

	for node := range doc.Descendants() {
		if node.Type != html.ElementNode || node.Data != "a" {
			continue
		}
		href := attrValue(node, "href")
		link, ok := profileLink(href, platform)
		if !ok || seen[link] {
			continue
		}
		seen[link] = true

		profiles = append(profiles, model.SocialProfile{
			Platform: platform.name,
			Name:     strings.TrimSpace(nodeText(node)),
			Link:     link,
		})
		if len(profiles) >= maxProfilesPerPlatform {
			break
		}
	}

	return profiles
}

// profileLink validates and normalizes a candidate profile URL.
// Search engines wrap result links in redirect URLs; the real target
// sits in the uddg query parameter.
func profileLink(href string, platform socialPlatform) (string, bool) {
	if href == "" {
		return "", false
	}

	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	if target := u.Query().Get("uddg"); target != "" {
		return profileLink(target, platform)
	}

	host := strings.ToLower(u.Hostname())
	if host != platform.domain && !strings.HasSuffix(host, "."+platform.domain) {
		return "", false
	}
	if platform.pathHint != "" && !strings.Contains(u.Path, platform.pathHint) {
		return "", false
	}
	if u.Path == "" || u.Path == "/" {
		return "", false
	}

	return u.String(), true
}

// attrValue returns the value of the named attribute, or empty string.
func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// nodeText concatenates the text content beneath a node.
func nodeText(node *html.Node) string {
	var sb strings.Builder
	for child := range node.Descendants() {
		if child.Type == html.TextNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}
