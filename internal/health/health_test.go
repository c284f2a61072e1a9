package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lectern/relay/internal/config"
)

func lookupConfig(baseURL string) config.Config {
	var c config.Config
	c.Lookup.BaseURL = baseURL
	return c
}

func TestCheckLookupOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"For God so loved the world"}`))
	}))
	defer srv.Close()

	res := checkLookup(context.Background(), lookupConfig(srv.URL))
	if !res.OK || res.Error != "" {
		t.Fatalf("expected passing check, got %+v", res)
	}
}

func TestCheckLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := checkLookup(context.Background(), lookupConfig(srv.URL))
	if res.OK {
		t.Fatalf("expected failing check, got %+v", res)
	}
	if !strings.Contains(res.Error, "503") {
		t.Fatalf("error should carry the status: %q", res.Error)
	}
}

func TestCheckAllReportsMissingSpeechKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	status := CheckAll(context.Background(), lookupConfig(srv.URL))
	if status.OK {
		t.Fatalf("expected overall failure without a speech key")
	}
	var found bool
	for _, c := range status.Checks {
		if c.Name == "elevenlabs" {
			found = true
			if c.OK || !strings.Contains(c.Error, "ELEVENLABS_API_KEY") {
				t.Fatalf("unexpected elevenlabs result %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("elevenlabs check missing from %+v", status.Checks)
	}
}

func TestStatusString(t *testing.T) {
	s := Status{
		OK: false,
		Checks: []CheckResult{
			{Name: "lookup", OK: true},
			{Name: "elevenlabs", Error: "key rejected"},
		},
	}
	out := s.String()
	if !strings.Contains(out, "Health: FAIL") {
		t.Fatalf("missing overall status: %q", out)
	}
	if !strings.Contains(out, "✓ lookup") || !strings.Contains(out, "✗ elevenlabs") {
		t.Fatalf("missing per-check marks: %q", out)
	}
	if !strings.Contains(out, "key rejected") {
		t.Fatalf("missing error detail: %q", out)
	}
}
