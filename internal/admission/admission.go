// Package admission gates candidate chat text into the broadcast
// pipeline: reference detection first, then a global throttle, then a
// per-user cooldown. Rejections are silent by design.
package admission

import (
	"time"

	"lectern/relay/internal/refparse"
	"lectern/relay/internal/relay"
)

// Reject reasons, used only for metrics and logs.
const (
	ReasonNoReference    = "no_reference"
	ReasonGlobalThrottle = "global_throttle"
	ReasonUserCooldown   = "user_cooldown"
)

type Config struct {
	GlobalInterval time.Duration
	UserCooldown   time.Duration
	MaxRangeSpan   int
}

// Decision is the outcome of one admit check.
type Decision struct {
	Admitted bool
	Request  relay.ReadRequest
	Reason   string
}

// Controller holds the throttle state. It is owned by a single goroutine
// (the ingest loop) and therefore carries no lock; entries in lastByUser
// never expire.
type Controller struct {
	cfg        Config
	lastGlobal time.Time
	lastByUser map[string]time.Time
}

func New(cfg Config) *Controller {
	return &Controller{cfg: cfg, lastByUser: make(map[string]time.Time)}
}

// Admit runs the checks in order. All checks are pure reads; the two
// timestamps are written together only after every check has passed and
// a non-empty reference has been extracted, so a rejection never leaves
// partially-committed throttle state.
func (c *Controller) Admit(sourceUser, text string, now time.Time) Decision {
	spaced := refparse.NormalizeSpacing(text)
	if !refparse.Detect(spaced) {
		return Decision{Reason: ReasonNoReference}
	}
	// Detection is looser than extraction ("101 12:30" looks
	// reference-shaped but has no book word), so extract up front and
	// treat an empty result as no reference at all.
	ref := refparse.Canonicalize(refparse.Extract(spaced))
	if ref == "" {
		return Decision{Reason: ReasonNoReference}
	}
	if !c.lastGlobal.IsZero() && now.Sub(c.lastGlobal) < c.cfg.GlobalInterval {
		return Decision{Reason: ReasonGlobalThrottle}
	}
	if last, ok := c.lastByUser[sourceUser]; ok && now.Sub(last) < c.cfg.UserCooldown {
		return Decision{Reason: ReasonUserCooldown}
	}

	c.lastGlobal = now
	c.lastByUser[sourceUser] = now

	ref = refparse.ClampRange(ref, c.cfg.MaxRangeSpan)
	return Decision{
		Admitted: true,
		Request:  relay.ReadRequest{Reference: ref, SourceUser: sourceUser},
	}
}
