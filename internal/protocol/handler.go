package protocol

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/figconv/internal/auth"
	"github.com/inamate/figconv/internal/convert"
)

// Handler upgrades GET /ws and runs the message protocol on the
// connection.
type Handler struct {
	hub             *Hub
	converter       *convert.Converter
	originPatterns  []string
	remoteGradients bool
	gradientTimeout time.Duration
}

type HandlerOption func(*Handler)

func WithOriginPatterns(patterns []string) HandlerOption {
	return func(h *Handler) { h.originPatterns = patterns }
}

// WithClientGradients routes block mode gradients to the client.
func WithClientGradients(timeout time.Duration) HandlerOption {
	return func(h *Handler) {
		h.remoteGradients = true
		h.gradientTimeout = timeout
	}
}

func NewHandler(hub *Hub, converter *convert.Converter, opts ...HandlerOption) *Handler {
	h := &Handler{hub: hub, converter: converter}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	subject := auth.SubjectFromContext(r.Context())
	if subject == "" {
		subject = "anon-" + uuid.New().String()[:8]
	}

	client := NewClient(h.hub, conn, uuid.New().String(), subject)
	var sopts []SessionOption
	if h.remoteGradients {
		sopts = append(sopts, WithRemoteGradients(h.gradientTimeout))
	}
	NewSession(client, h.converter, sopts...)

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
