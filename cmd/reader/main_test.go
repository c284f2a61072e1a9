package main

import (
	"context"
	"errors"
	"testing"
)

type warmupSynth struct {
	spoke   int
	cancels int
	err     error
}

func (s *warmupSynth) Speak(ctx context.Context, text string) (<-chan struct{}, error) {
	s.spoke++
	if s.err != nil {
		return nil, s.err
	}
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (s *warmupSynth) Cancel() { s.cancels++ }

func TestPrimePlaybackWarmsSynthesizer(t *testing.T) {
	s := &warmupSynth{}
	primePlayback(context.Background(), nil, s)
	if s.spoke != 1 {
		t.Fatalf("synthesizer not warmed: spoke=%d", s.spoke)
	}
	if s.cancels != 1 {
		t.Fatalf("warmup utterance not cancelled: cancels=%d", s.cancels)
	}
}

func TestPrimePlaybackSynthFailureStillCancels(t *testing.T) {
	s := &warmupSynth{err: errors.New("no quota")}
	primePlayback(context.Background(), nil, s)
	if s.cancels != 1 {
		t.Fatalf("cancel skipped on speak failure: cancels=%d", s.cancels)
	}
}

func TestPrimePlaybackWithoutCollaborators(t *testing.T) {
	// Nothing to warm must be a no-op, not a panic.
	primePlayback(context.Background(), nil, nil)
}
