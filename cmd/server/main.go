package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lectern/relay/internal/admission"
	"lectern/relay/internal/api"
	"lectern/relay/internal/chat"
	"lectern/relay/internal/config"
	"lectern/relay/internal/hub"
	"lectern/relay/internal/ingest"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.Chat.Channel == "" {
		log.Fatalf("CHAT_CHANNEL is required")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.New()

	coord := ingest.New(ingest.Config{
		Admission:         admissionConfig(cfg),
		KeepaliveInterval: cfg.Keepalive.Interval,
		QuietGap:          cfg.Keepalive.QuietGap,
	}, h)

	source := chat.NewConn(rootCtx, chat.Config{
		URL:     cfg.Chat.URL,
		Nick:    cfg.Chat.Nick,
		Channel: cfg.Chat.Channel,
	})
	source.Start()
	go coord.Run(rootCtx, source.Events)

	handlers := api.NewHandlers(cfg.Inject.Token, coord)
	mux := http.NewServeMux()
	mux.Handle("/", api.NewRouter(handlers))
	mux.HandleFunc("/ws/consumer", h.HandleConsumerWS)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-rootCtx.Done()
		log.Printf("shutdown signal received; stopping server...")
		source.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.Printf("server starting on %s channel=%s", addr, cfg.Chat.Channel)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Println("server error:", err)
		os.Exit(1)
	}
}

func admissionConfig(cfg config.Config) admission.Config {
	return admission.Config{
		GlobalInterval: cfg.Admission.GlobalInterval,
		UserCooldown:   cfg.Admission.UserCooldown,
		MaxRangeSpan:   cfg.Admission.MaxRangeSpan,
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
