// Package resolve fetches display text for a reference from the external
// lookup service. Every failure mode falls back to the raw reference, so
// the presentation loop never sees an error from here.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver is the lookup surface the presentation loop depends on.
type Resolver interface {
	Resolve(ctx context.Context, reference string) string
}

type HTTPClient struct {
	http *http.Client
	base string
}

func NewClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		http: &http.Client{Timeout: 10 * time.Second},
		base: strings.TrimSuffix(baseURL, "/"),
	}
}

// lookupResponse covers both collaborator shapes: a single text field or
// an ordered list of verse segments.
type lookupResponse struct {
	Text   string `json:"text"`
	Verses []struct {
		Text string `json:"text"`
	} `json:"verses"`
}

// Resolve returns the looked-up text for reference, whitespace-collapsed,
// or the reference itself when the lookup fails in any way.
func (c *HTTPClient) Resolve(ctx context.Context, reference string) string {
	text, err := c.fetch(ctx, reference)
	if err != nil || text == "" {
		return reference
	}
	return text
}

func (c *HTTPClient) fetch(ctx context.Context, reference string) (string, error) {
	u := c.base + "/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("lookup: %s", resp.Status)
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Text != "" {
		return collapse(parsed.Text), nil
	}
	parts := make([]string, 0, len(parsed.Verses))
	for _, v := range parsed.Verses {
		if s := collapse(v.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
