// Package speech synthesizes read-request text through the ElevenLabs
// REST API and plays the result through the local audio sink.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"lectern/relay/internal/audio"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// DefaultVoiceID is used when no voice is configured.
const DefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

var ErrNoAPIKey = errors.New("speech: missing API key")

// Engine turns text into audio. One utterance at a time; starting a new
// one or calling Cancel stops the previous.
type Engine struct {
	apiKey  string
	voiceID string
	baseURL string
	sink    audio.Sink
	http    *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewEngine(apiKey, voiceID string, sink audio.Sink) (*Engine, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	return &Engine{
		apiKey:  apiKey,
		voiceID: voiceID,
		baseURL: defaultBaseURL,
		sink:    sink,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Speak synthesizes text and starts playback. The returned channel
// closes when playback reaches its natural end; an error means nothing
// will play.
func (e *Engine) Speak(ctx context.Context, text string) (<-chan struct{}, error) {
	clip, err := e.synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	clip = audio.Resample(clip, e.sink.SampleRate())

	playCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		if err := e.sink.PlayPCM(playCtx, clip.PCM); err != nil && playCtx.Err() == nil {
			log.Printf("[speech] playback failed: %v", err)
		}
	}()
	return done, nil
}

// Cancel stops the in-flight utterance, if any. Idempotent.
func (e *Engine) Cancel() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()
}

func (e *Engine) synthesize(ctx context.Context, text string) (audio.Clip, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	body, _ := json.Marshal(map[string]any{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return audio.Clip{}, err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("accept", "audio/wav")
	req.Header.Set("content-type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("synthesize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return audio.Clip{}, fmt.Errorf("synthesize: status=%d body=%s", resp.StatusCode, string(b))
	}
	clip, err := audio.DecodeWAV(resp.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("synthesize: %w", err)
	}
	return clip, nil
}
