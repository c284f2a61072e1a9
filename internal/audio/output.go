package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const pollInterval = 10 * time.Millisecond

// Output is the shared speaker device: one oto context, mono PCM16 at a
// fixed rate. Playback calls block until the device drains.
type Output struct {
	ctx   *oto.Context
	ready chan struct{}
	rate  int

	mu     sync.Mutex
	primed bool
}

// NewOutput opens the platform audio device at sampleRate (mono,
// 16-bit). The device may not be ready until Prime returns.
func NewOutput(sampleRate int) (*Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	return &Output{ctx: ctx, ready: ready, rate: sampleRate}, nil
}

func (o *Output) SampleRate() int { return o.rate }

// Prime waits for the device and pushes a short run of silence through
// it, so the first real clip starts without a device-warmup glitch.
// Safe to call more than once; only the first call does work.
func (o *Output) Prime(ctx context.Context) error {
	select {
	case <-o.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	o.mu.Lock()
	if o.primed {
		o.mu.Unlock()
		return nil
	}
	o.primed = true
	o.mu.Unlock()

	silence := make([]byte, o.rate/10*2) // 100ms
	return o.PlayPCM(ctx, silence)
}

// PlayPCM plays mono PCM16 at the output rate and blocks until the
// device has consumed it or ctx ends.
func (o *Output) PlayPCM(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	select {
	case <-o.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	p := o.ctx.NewPlayer(bytes.NewReader(pcm))
	p.Play()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			_ = p.Close()
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return p.Close()
}
