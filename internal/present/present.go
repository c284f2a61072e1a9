// Package present drives one item through its presentation states:
// Displaying, then UnlockWait while the audio gate is closed, then
// Playing (supplied clip or synthesized speech), then Done. Failures in
// any state complete the item instead of propagating.
package present

import (
	"context"
	"log"
	"time"

	"lectern/relay/internal/relay"
)

// ClipPlayer plays a supplied audio clip, blocking until natural end of
// playback. An error means playback never started.
type ClipPlayer interface {
	Play(ctx context.Context, url string) error
}

// Synthesizer speaks text. Speak returns a channel closed on natural
// completion; an error means synthesis setup failed. Cancel stops any
// in-flight utterance.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (<-chan struct{}, error)
	Cancel()
}

type Config struct {
	// Watchdog bounds a synthesized utterance; a supplied clip is
	// trusted to terminate and gets no watchdog.
	Watchdog time.Duration
	// FallbackWait substitutes for playback when synthesis is
	// unavailable or fails to start.
	FallbackWait time.Duration
	// UnlockPoll is the gate polling interval during UnlockWait.
	UnlockPoll time.Duration
}

func DefaultConfig() Config {
	return Config{
		Watchdog:     15 * time.Second,
		FallbackWait: 4 * time.Second,
		UnlockPoll:   100 * time.Millisecond,
	}
}

// Engine presents items for one consumer session.
type Engine struct {
	cfg   Config
	gate  *Gate
	clips ClipPlayer  // nil when no audio device is available
	synth Synthesizer // nil when synthesis is unavailable

	// OnDisplay updates the visible current/next state; always called
	// first, synchronously, for every item.
	OnDisplay func(current relay.ReadRequest, next *relay.ReadRequest)
}

func NewEngine(cfg Config, gate *Gate, clips ClipPlayer, synth Synthesizer) *Engine {
	return &Engine{cfg: cfg, gate: gate, clips: clips, synth: synth}
}

// Present runs the full state machine for one item and returns when the
// item is done. It never returns an error: every failure path is a
// defined completion.
func (e *Engine) Present(ctx context.Context, item relay.ReadRequest, next *relay.ReadRequest) {
	if e.OnDisplay != nil {
		e.OnDisplay(item, next)
	}

	if !e.waitUnlocked(ctx) {
		return
	}

	if item.AudioURL != "" && e.clips != nil {
		if err := e.clips.Play(ctx, item.AudioURL); err != nil {
			// Start failure completes the item immediately, no retry.
			log.Printf("[present] clip %q failed to start: %v", item.AudioURL, err)
		}
		return
	}

	text := item.Text
	if text == "" {
		text = item.Reference
	}
	e.speak(ctx, text)
}

// waitUnlocked suspends this consumer's loop until the unlock gesture
// has happened. Returns false only when ctx ends first.
func (e *Engine) waitUnlocked(ctx context.Context) bool {
	if e.gate.Unlocked() {
		return true
	}
	tick := time.NewTicker(e.cfg.UnlockPoll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-tick.C:
			if e.gate.Unlocked() {
				return true
			}
		}
	}
}

// speak synthesizes text, racing natural completion against the
// watchdog. Setup failure or a missing synthesizer degrades to a fixed
// wait so the item still occupies a presentation slot.
func (e *Engine) speak(ctx context.Context, text string) {
	if e.synth == nil {
		e.sleep(ctx, e.cfg.FallbackWait)
		return
	}
	e.synth.Cancel()
	done, err := e.synth.Speak(ctx, text)
	if err != nil {
		log.Printf("[present] synthesis failed: %v", err)
		e.sleep(ctx, e.cfg.FallbackWait)
		return
	}
	watchdog := time.NewTimer(e.cfg.Watchdog)
	defer watchdog.Stop()
	select {
	case <-done:
	case <-watchdog.C:
		log.Printf("[present] synthesis watchdog fired")
		e.synth.Cancel()
	case <-ctx.Done():
		e.synth.Cancel()
	}
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
