package provider

import (
	"context"
	"testing"

	"github.com/osintlab/personscan/internal/model"
)

func TestSocialMediaWithoutPoolReturnsEmpty(t *testing.T) {
	t.Parallel()

	s := NewSocialMedia(nil, testLogger())

	payload, err := s.Search(context.Background(), model.Query{Name: "Ravi Kumar"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.(SocialMediaPayload).Data.HasProfiles() {
		t.Error("expected no profiles without a browser pool")
	}
}

func TestExtractProfiles(t *testing.T) {
	t.Parallel()

	content := `<html><body>
	<a href="https://www.linkedin.com/in/ravikumar">Ravi Kumar - Engineer</a>
	<a href="https://www.linkedin.com/in/ravikumar">duplicate</a>
	<a href="https://www.linkedin.com/company/acme">Acme Corp</a>
	<a href="https://www.linkedin.com/">home</a>
	<a href="https://example.com/in/unrelated">elsewhere</a>
	<a href="https://in.linkedin.com/in/other">Other Ravi</a>
	</body></html>`

	platform := socialPlatform{name: "linkedin", domain: "linkedin.com", pathHint: "/in/"}
	profiles := extractProfiles(content, platform)

	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d: %+v", len(profiles), profiles)
	}
	if profiles[0].Link != "https://www.linkedin.com/in/ravikumar" {
		t.Errorf("unexpected first link: %q", profiles[0].Link)
	}
	if profiles[0].Name != "Ravi Kumar - Engineer" {
		t.Errorf("unexpected anchor text: %q", profiles[0].Name)
	}
	if profiles[0].Platform != "linkedin" {
		t.Errorf("unexpected platform: %q", profiles[0].Platform)
	}
}

func TestExtractProfilesBounded(t *testing.T) {
	t.Parallel()

	content := "<html><body>"
	for _, h := range []string{"a", "b", "c", "d", "e"} {
		content += `<a href="https://twitter.com/` + h + `">@` + h + `</a>`
	}
	content += "</body></html>"

	platform := socialPlatform{name: "twitter", domain: "twitter.com"}
	profiles := extractProfiles(content, platform)

	if len(profiles) != maxProfilesPerPlatform {
		t.Errorf("expected %d profiles, got %d", maxProfilesPerPlatform, len(profiles))
	}
}

func TestProfileLink(t *testing.T) {
	t.Parallel()

	platform := socialPlatform{name: "facebook", domain: "facebook.com"}

	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{
			name:   "direct profile",
			href:   "https://www.facebook.com/ravi.kumar",
			want:   "https://www.facebook.com/ravi.kumar",
			wantOK: true,
		},
		{
			name:   "redirect wrapper unwrapped",
			href:   "https://duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.facebook.com%2Fravi.kumar",
			want:   "https://www.facebook.com/ravi.kumar",
			wantOK: true,
		},
		{
			name:   "protocol relative",
			href:   "//www.facebook.com/ravi.kumar",
			want:   "https://www.facebook.com/ravi.kumar",
			wantOK: true,
		},
		{
			name:   "wrong domain",
			href:   "https://example.com/ravi",
			wantOK: false,
		},
		{
			name:   "bare domain root",
			href:   "https://www.facebook.com/",
			wantOK: false,
		},
		{
			name:   "empty href",
			href:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := profileLink(tt.href, platform)
			if ok != tt.wantOK {
				t.Fatalf("profileLink(%q) ok = %v, want %v", tt.href, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("profileLink(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
