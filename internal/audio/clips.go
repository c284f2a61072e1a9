package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink consumes mono PCM16 at its own fixed rate, blocking until the
// audio has played. Output satisfies it; tests substitute fakes.
type Sink interface {
	PlayPCM(ctx context.Context, pcm []byte) error
	SampleRate() int
}

// Clips fetches supplied audio clips over HTTP and plays them through a
// Sink. A nil error means the clip played to its natural end.
type Clips struct {
	sink Sink
	http *http.Client
}

func NewClips(sink Sink) *Clips {
	return &Clips{
		sink: sink,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Clips) Play(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch clip: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("fetch clip: status=%d", resp.StatusCode)
	}

	clip, err := DecodeWAV(resp.Body)
	if err != nil {
		return fmt.Errorf("decode clip: %w", err)
	}
	clip = Resample(clip, c.sink.SampleRate())
	return c.sink.PlayPCM(ctx, clip.PCM)
}
