// Package health probes the external services a reader session depends
// on: the passage lookup API and the speech synthesis API.
package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lectern/relay/internal/config"
)

type CheckResult struct {
	Name    string        `json:"name"`
	OK      bool          `json:"ok"`
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

type Status struct {
	OK        bool          `json:"ok"`
	Checks    []CheckResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

func (s Status) String() string {
	status := "OK"
	if !s.OK {
		status = "FAIL"
	}
	out := fmt.Sprintf("Health: %s\n", status)
	for _, c := range s.Checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		out += fmt.Sprintf("  %s %s (%dms)", mark, c.Name, c.Latency.Milliseconds())
		if c.Error != "" {
			out += fmt.Sprintf(" - %s", c.Error)
		}
		out += "\n"
	}
	return out
}

// CheckAll runs every check and returns the combined status.
func CheckAll(ctx context.Context, cfg config.Config) Status {
	checks := []CheckResult{
		checkLookup(ctx, cfg),
		checkElevenLabs(ctx, cfg),
	}

	allOK := true
	for _, c := range checks {
		if !c.OK {
			allOK = false
		}
	}

	return Status{
		OK:        allOK,
		Checks:    checks,
		CheckedAt: time.Now().UTC(),
	}
}

// checkLookup fetches a known passage from the lookup service.
func checkLookup(ctx context.Context, cfg config.Config) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "lookup"}

	probe := cfg.Lookup.BaseURL + "/" + url.PathEscape("John 3:16")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		result.Error = fmt.Sprintf("request build failed: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		result.Error = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body))
		return result
	}

	result.OK = true
	return result
}

// checkElevenLabs issues the cheapest synthesis call there is, a single
// period. A voices listing would be lighter on quota but needs key
// permissions a synthesis-only key does not carry.
func checkElevenLabs(ctx context.Context, cfg config.Config) CheckResult {
	start := time.Now()
	result := CheckResult{Name: "elevenlabs"}
	fail := func(format string, args ...any) CheckResult {
		result.Error = fmt.Sprintf(format, args...)
		result.Latency = time.Since(start)
		return result
	}

	if cfg.Speech.APIKey == "" {
		return fail("ELEVENLABS_API_KEY not set")
	}
	voice := cfg.Speech.VoiceID
	if voice == "" {
		return fail("ELEVENLABS_VOICE_ID not set")
	}

	probe := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s/stream", voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, probe, strings.NewReader(`{"text":"."}`))
	if err != nil {
		return fail("build request: %v", err)
	}
	req.Header.Set("xi-api-key", cfg.Speech.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fail("probe request: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
	case 401:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fail("key rejected (401): %s", string(body))
	case 404:
		return fail("no such voice %q", voice)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fail("synthesis probe status %d: %s", resp.StatusCode, string(body))
	}

	io.Copy(io.Discard, resp.Body)
	result.Latency = time.Since(start)
	result.OK = true
	return result
}
