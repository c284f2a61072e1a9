package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	rate   int
	played [][]byte
	block  time.Duration
}

func (c *captureSink) PlayPCM(ctx context.Context, pcm []byte) error {
	c.mu.Lock()
	c.played = append(c.played, pcm)
	c.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.block):
		return nil
	}
}

func (c *captureSink) SampleRate() int { return c.rate }

func wavBytes(rate int, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())
	return buf.Bytes()
}

func newTestEngine(t *testing.T, handler http.HandlerFunc, sink *captureSink) *Engine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	e, err := NewEngine("test-key", "voice-1", sink)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.baseURL = srv.URL
	return e
}

func TestNewEngineRequiresAPIKey(t *testing.T) {
	if _, err := NewEngine("", "v", &captureSink{rate: 44100}); err != ErrNoAPIKey {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestSpeakSynthesizesAndPlays(t *testing.T) {
	var gotText, gotKey string
	sink := &captureSink{rate: 44100}
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotText = body["text"]
		w.Write(wavBytes(44100, []int16{1, 2, 3}))
	}, sink)

	done, err := e.Speak(context.Background(), "John 3:16")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("playback never completed")
	}
	if gotText != "John 3:16" || gotKey != "test-key" {
		t.Fatalf("request text=%q key=%q", gotText, gotKey)
	}
	if len(sink.played) != 1 || len(sink.played[0]) != 6 {
		t.Fatalf("unexpected sink writes: %v", sink.played)
	}
}

func TestSpeakErrorOnAPIFailure(t *testing.T) {
	sink := &captureSink{rate: 44100}
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}, sink)

	if _, err := e.Speak(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
	if len(sink.played) != 0 {
		t.Fatalf("sink written despite API failure")
	}
}

func TestCancelStopsPlayback(t *testing.T) {
	sink := &captureSink{rate: 44100, block: 5 * time.Second}
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(wavBytes(44100, []int16{1, 2, 3}))
	}, sink)

	done, err := e.Speak(context.Background(), "x")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	e.Cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("cancel did not end playback")
	}
}

func TestCancelBeforeSpeakIsHarmless(t *testing.T) {
	sink := &captureSink{rate: 44100}
	e, err := NewEngine("k", "", sink)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	e.Cancel()
	if e.voiceID != DefaultVoiceID {
		t.Fatalf("default voice not applied: %q", e.voiceID)
	}
}
