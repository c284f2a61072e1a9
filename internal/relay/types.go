package relay

// ReadRequest is one unit of work for a reader: a canonical reference,
// optionally pre-resolved text, optionally a supplied audio clip URL.
type ReadRequest struct {
	Reference  string `json:"reference"`
	Text       string `json:"text,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	SourceUser string `json:"sourceUser,omitempty"`
}

// Message is the single outbound frame type on the broadcast channel.
// "read" carries one request inline, "bulk" carries a list expanding to
// sequential enqueues, "clear" empties every consumer's pending queue.
type Message struct {
	Type       string        `json:"type"`
	Reference  string        `json:"reference,omitempty"`
	Text       string        `json:"text,omitempty"`
	AudioURL   string        `json:"audioUrl,omitempty"`
	SourceUser string        `json:"sourceUser,omitempty"`
	Items      []ReadRequest `json:"items,omitempty"`
}

const (
	TypeRead  = "read"
	TypeBulk  = "bulk"
	TypeClear = "clear"
)

// ReadMessage wraps a single request as a "read" frame.
func ReadMessage(req ReadRequest) Message {
	return Message{
		Type:       TypeRead,
		Reference:  req.Reference,
		Text:       req.Text,
		AudioURL:   req.AudioURL,
		SourceUser: req.SourceUser,
	}
}

// Request extracts the inline request from a "read" frame.
func (m Message) Request() ReadRequest {
	return ReadRequest{
		Reference:  m.Reference,
		Text:       m.Text,
		AudioURL:   m.AudioURL,
		SourceUser: m.SourceUser,
	}
}
