package hub

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	ws "nhooyr.io/websocket"
)

// HandleConsumerWS upgrades a consumer connection and registers it with
// the hub. Consumers only receive; inbound frames are drained and
// dropped until the connection closes.
func (h *Hub) HandleConsumerWS(w http.ResponseWriter, r *http.Request) {
	c, err := ws.Accept(w, r, nil)
	if err != nil {
		log.Printf("[hub] ws accept: %v", err)
		return
	}
	id := uuid.New().String()
	h.Add(id, c)
	log.Printf("[hub] consumer %s connected (%d total)", id, h.Count())

	ctx := r.Context()
	for {
		if _, _, err := c.Read(ctx); err != nil {
			break
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	h.Remove(id)
	log.Printf("[hub] consumer %s disconnected (%d total)", id, h.Count())
}
