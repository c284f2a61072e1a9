// Package main is the reader: it subscribes to the relay server's
// consumer channel and presents each read request in order, one at a
// time, with synthesized speech or a supplied clip.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lectern/relay/internal/audio"
	"lectern/relay/internal/config"
	"lectern/relay/internal/feed"
	"lectern/relay/internal/health"
	"lectern/relay/internal/present"
	"lectern/relay/internal/queue"
	"lectern/relay/internal/relay"
	"lectern/relay/internal/resolve"
	"lectern/relay/internal/speech"
)

const (
	outputSampleRate = 44100
	interItemGap     = time.Second
)

var (
	serverURL string
	voiceID   string

	rootCmd = &cobra.Command{
		Use:          "reader",
		Short:        "Subscribe to the relay channel and read passages aloud",
		SilenceUsage: true,
		RunE:         run,
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Probe the lookup and speech services and report status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			status := health.CheckAll(ctx, cfg)
			fmt.Print(status)
			if !status.OK {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
)

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "ws://localhost:8080/ws/consumer", "relay server consumer websocket URL")
	rootCmd.Flags().StringVar(&voiceID, "voice", "", "synthesis voice ID (overrides ELEVENLABS_VOICE_ID)")
	rootCmd.AddCommand(checkCmd)
}

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if voiceID != "" {
		cfg.Speech.VoiceID = voiceID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := present.NewGate()

	var (
		out   *audio.Output
		clips present.ClipPlayer
		synth present.Synthesizer
	)
	out, err := audio.NewOutput(outputSampleRate)
	if err != nil {
		log.Warn("audio device unavailable, presenting silently", "err", err)
		out = nil
	} else {
		clips = audio.NewClips(out)
		if cfg.Speech.APIKey != "" {
			engine, serr := speech.NewEngine(cfg.Speech.APIKey, cfg.Speech.VoiceID, out)
			if serr != nil {
				log.Warn("speech synthesis unavailable", "err", serr)
			} else {
				synth = engine
			}
		} else {
			log.Info("no ELEVENLABS_API_KEY, falling back to silent waits")
		}
	}

	var resolver resolve.Resolver = resolve.NewClient(cfg.Lookup.BaseURL)

	engine := present.NewEngine(present.DefaultConfig(), gate, clips, synth)
	engine.OnDisplay = func(current relay.ReadRequest, next *relay.ReadRequest) {
		if next != nil {
			log.Info("now reading", "reference", current.Reference, "next", next.Reference)
		} else {
			log.Info("now reading", "reference", current.Reference)
		}
	}

	q := queue.New(func(ctx context.Context, item relay.ReadRequest, next *relay.ReadRequest) {
		if item.Text == "" && item.AudioURL == "" {
			item.Text = resolver.Resolve(ctx, item.Reference)
		}
		engine.Present(ctx, item, next)
	}, interItemGap)

	// Audio output on most platforms must be unlocked by a user gesture.
	// Queued items wait at the gate until Enter is pressed.
	go waitForUnlock(ctx, gate, out, synth)

	conn := feed.New(serverURL)
	conn.Start()
	defer conn.Stop()

	log.Info("reader connected", "server", serverURL)
	log.Info("press Enter to unlock audio")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-conn.Messages():
			if !ok {
				return nil
			}
			switch msg.Type {
			case relay.TypeRead:
				q.Enqueue(ctx, msg.Request())
			case relay.TypeBulk:
				for _, item := range msg.Items {
					q.Enqueue(ctx, item)
				}
			case relay.TypeClear:
				q.Clear()
				log.Info("pending queue cleared", "remaining", q.Len())
			default:
				log.Debug("ignoring unknown frame", "type", msg.Type)
			}
		}
	}
}

// waitForUnlock blocks on stdin for the unlock gesture, then opens the
// gate and warms the playback paths.
func waitForUnlock(ctx context.Context, gate *present.Gate, out *audio.Output, synth present.Synthesizer) {
	reader := bufio.NewReader(os.Stdin)
	if _, err := reader.ReadString('\n'); err != nil {
		log.Warn("stdin closed before unlock, unlocking anyway", "err", err)
	}
	gate.Unlock()
	log.Info("audio unlocked")

	primeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	primePlayback(primeCtx, out, synth)
}

// primePlayback pushes silence through the device and spins the
// synthesizer up and straight back down, so the first real item does
// not absorb either warmup. Best effort; failures only log.
func primePlayback(ctx context.Context, out *audio.Output, synth present.Synthesizer) {
	if out != nil {
		if err := out.Prime(ctx); err != nil {
			log.Warn("audio prime failed", "err", err)
		}
	}
	if synth != nil {
		if _, err := synth.Speak(ctx, "."); err != nil {
			log.Debug("speech prime failed", "err", err)
		}
		synth.Cancel()
	}
}
