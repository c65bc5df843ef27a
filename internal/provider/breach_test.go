package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/osintlab/personscan/internal/model"
)

func TestBreachUnconfiguredReturnsEmpty(t *testing.T) {
	t.Parallel()

	b := NewBreach("", "test-agent", time.Second, testLogger())

	q := model.Query{Name: "X", AttachedMetadata: map[string]any{"email": "x@example.com"}}
	payload, err := b.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := payload.(BreachPayload).Data; len(got.Breaches) != 0 {
		t.Errorf("expected no breaches without api key, got %+v", got)
	}
}

func TestBreachNoEmailsReturnsEmpty(t *testing.T) {
	t.Parallel()

	b := NewBreach("test-key", "test-agent", time.Second, testLogger())

	payload, err := b.Search(context.Background(), model.Query{Name: "X"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := payload.(BreachPayload).Data; len(got.Breaches) != 0 {
		t.Errorf("expected no breaches without emails, got %+v", got)
	}
}

func TestBreachLookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("hibp-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		if strings.Contains(r.URL.Path, "clean@example.com") {
			http.NotFound(rw, r)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write([]byte(`[{
			"Name": "ExampleBreach",
			"Domain": "example.com",
			"BreachDate": "2023-05-01",
			"AddedDate": "2023-06-01",
			"DataClasses": ["Email addresses", "Passwords"],
			"Description": "In May 2023, <a href=\"https://example.com\">Example</a> was breached."
		}]`))
	}))
	defer srv.Close()

	b := NewBreach("test-key", "test-agent", time.Second, testLogger())
	b.endpoint = srv.URL + "/"

	q := model.Query{Name: "X", AttachedMetadata: map[string]any{
		"emails": []any{"pwned@example.com", "clean@example.com"},
	}}
	payload, err := b.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := payload.(BreachPayload).Data
	if len(data.Breaches) != 1 {
		t.Fatalf("expected 1 breach, got %d", len(data.Breaches))
	}
	breach := data.Breaches[0]
	if breach.Name != "ExampleBreach" {
		t.Errorf("unexpected breach name: %q", breach.Name)
	}
	if strings.Contains(breach.Description, "<a") {
		t.Errorf("description still contains markup: %q", breach.Description)
	}
	if len(data.Recommendations) == 0 {
		t.Error("expected recommendations when breaches were found")
	}
}

func TestBreachCleanAccountNoRecommendations(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.NotFound(rw, r)
	}))
	defer srv.Close()

	b := NewBreach("test-key", "test-agent", time.Second, testLogger())
	b.endpoint = srv.URL + "/"

	q := model.Query{Name: "X", AttachedMetadata: map[string]any{"email": "clean@example.com"}}
	payload, err := b.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := payload.(BreachPayload).Data
	if len(data.Breaches) != 0 || len(data.Recommendations) != 0 {
		t.Errorf("expected clean result, got %+v", data)
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{`plain text`, "plain text"},
		{`before <a href="x">link</a> after`, "before link after"},
		{`<b>bold</b>`, "bold"},
		{``, ""},
	}

	for _, tt := range tests {
		if got := stripTags(tt.in); got != tt.want {
			t.Errorf("stripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAttachedEmails(t *testing.T) {
	t.Parallel()

	q := model.Query{AttachedMetadata: map[string]any{
		"email":  "a@example.com",
		"emails": []any{"b@example.com", 42, ""},
	}}

	got := attachedEmails(q)
	if len(got) != 2 {
		t.Fatalf("expected 2 emails, got %v", got)
	}
	if got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Errorf("unexpected emails: %v", got)
	}
}
