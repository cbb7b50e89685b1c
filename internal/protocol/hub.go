package protocol

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Hub tracks connected clients so the server can close them on shutdown.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client // clientID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		h.addClient(client)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.removeClient(client)
	}
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every connection and cancels their runs.
func (h *Hub) Stop() error {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.RLock()
	clients := lo.Values(h.clients)
	h.mu.RUnlock()

	var err error
	for _, c := range clients {
		c.session.Close()
		err = multierr.Append(err, c.conn.Close(websocket.StatusGoingAway, "server shutting down"))
	}
	return err
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ClientID] = client
	h.mu.Unlock()

	slog.Info("client joined", "client", client.ClientID, "session", client.session.ID, "subject", client.Subject)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.ClientID)
	h.mu.Unlock()

	client.session.Close()
	client.closeSend()

	slog.Info("client left", "client", client.ClientID, "session", client.session.ID)
}
