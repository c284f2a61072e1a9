package api

import (
	"encoding/json"
	"log"
	"net/http"

	"lectern/relay/internal/auth"
	"lectern/relay/internal/refparse"
	"lectern/relay/internal/relay"
)

// Broadcaster is implemented by the ingest coordinator; injected
// messages travel the same ordered broadcast path as admitted chat.
type Broadcaster interface {
	Inject(msg relay.Message)
}

type Handlers struct {
	secret string
	bc     Broadcaster
}

func NewHandlers(secret string, bc Broadcaster) *Handlers {
	return &Handlers{secret: secret, bc: bc}
}

type injectRequest struct {
	Reference  string              `json:"reference"`
	Text       string              `json:"text"`
	AudioURL   string              `json:"audioUrl"`
	SourceUser string              `json:"sourceUser"`
	Items      []relay.ReadRequest `json:"items"`
}

// HandleInject accepts a trusted read request (or a bulk items list),
// bypassing admission but not the broadcast primitive.
func (h *Handlers) HandleInject(w http.ResponseWriter, r *http.Request) {
	if err := auth.VerifyBearer(h.secret, r.Header.Get("Authorization")); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	var req injectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if len(req.Items) > 0 {
		items := make([]relay.ReadRequest, 0, len(req.Items))
		for _, it := range req.Items {
			if it.Reference == "" {
				http.Error(w, "missing reference in items", http.StatusBadRequest)
				return
			}
			it.Reference = refparse.Canonicalize(it.Reference)
			if it.SourceUser == "" {
				it.SourceUser = "manual"
			}
			items = append(items, it)
		}
		h.bc.Inject(relay.Message{Type: relay.TypeBulk, Items: items})
		writeOK(w, len(items))
		return
	}

	if req.Reference == "" {
		http.Error(w, "missing reference", http.StatusBadRequest)
		return
	}
	item := relay.ReadRequest{
		Reference:  refparse.Canonicalize(req.Reference),
		Text:       req.Text,
		AudioURL:   req.AudioURL,
		SourceUser: req.SourceUser,
	}
	if item.SourceUser == "" {
		item.SourceUser = "manual"
	}
	log.Printf("[api] injected %q", item.Reference)
	h.bc.Inject(relay.ReadMessage(item))
	writeOK(w, 1)
}

// HandleClear broadcasts a clear frame that empties every consumer's
// pending queue.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := auth.VerifyBearer(h.secret, r.Header.Get("Authorization")); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	h.bc.Inject(relay.Message{Type: relay.TypeClear})
	writeOK(w, 0)
}

func writeOK(w http.ResponseWriter, count int) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "count": count})
}
