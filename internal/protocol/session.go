package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/typeid"
)

const defaultGradientTimeout = 30 * time.Second

var (
	ErrNoDocument      = errors.New("no document loaded")
	ErrGradientTimeout = errors.New("gradient not processed in time")
)

// Session is one connection's conversion state. A new selectionInit
// cancels the run already in flight.
type Session struct {
	ID string

	client    *Client
	converter *convert.Converter
	remote    bool
	timeout   time.Duration

	mu      sync.Mutex
	doc     *document.Document
	cancel  context.CancelFunc
	waiting map[string]chan string
	runs    sync.WaitGroup
	closed  bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRemoteGradients makes block mode runs ask the client to paint
// gradients instead of rasterizing them in-process.
func WithRemoteGradients(timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.remote = true
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func NewSession(client *Client, converter *convert.Converter, opts ...SessionOption) *Session {
	s := &Session{
		ID:        typeid.NewSessionID(),
		client:    client,
		converter: converter,
		timeout:   defaultGradientTimeout,
		waiting:   make(map[string]chan string),
	}
	for _, opt := range opts {
		opt(s)
	}
	client.session = s
	return s
}

// Handle dispatches one client message. ctx is the connection's context;
// runs started here end with it.
func (s *Session) Handle(ctx context.Context, msg *Message) {
	switch msg.Type {
	case TypeDocumentLoad:
		s.handleDocumentLoad(msg)
	case TypeSelectionInit:
		s.handleSelectionInit(ctx, msg)
	case TypeGradientProcessed:
		s.handleGradientProcessed(msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "session", s.ID)
	}
}

func (s *Session) handleDocumentLoad(msg *Message) {
	doc, err := document.Parse(msg.Data)
	if err != nil {
		s.sendError(fmt.Errorf("load document: %w", err))
		return
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	selection := doc.SelectedNodes()
	s.client.sendPayload(TypeSelectionChange, SelectionChangePayload{Selection: selection})
	s.client.sendPayload(TypeIsSelected, IsSelectedPayload{IsSelected: len(selection) > 0})
}

func (s *Session) handleSelectionInit(ctx context.Context, msg *Message) {
	var p SelectionInitPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			s.sendError(fmt.Errorf("invalid selectionInit: %w", err))
			return
		}
	}

	mode := convert.ModeBlocks
	if p.Mode != "" {
		m, err := convert.ParseMode(p.Mode)
		if err != nil {
			s.sendError(err)
			return
		}
		mode = m
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	doc := s.doc
	if doc == nil {
		s.mu.Unlock()
		s.sendError(ErrNoDocument)
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.runs.Add(1)
	s.mu.Unlock()

	req := convert.Request{Document: doc, RootID: p.Node.ID, Mode: mode}
	if s.remote {
		req.Gradients = convert.GradientFunc(s.requestGradient)
	}

	go func() {
		defer s.runs.Done()
		defer cancel()
		s.run(runCtx, req)
	}()
}

func (s *Session) run(ctx context.Context, req convert.Request) {
	res, err := s.converter.Convert(ctx, req)
	if ctx.Err() != nil {
		slog.Debug("run superseded", "session", s.ID, "root", req.RootID)
		return
	}
	if err != nil {
		s.sendError(err)
		return
	}

	if len(res.Warnings) > 0 {
		s.client.sendPayload(TypeWarning, WarningPayload{Messages: res.Warnings})
	}
	s.client.sendPayload(TypeConversionComplete, res.Payload())
}

// requestGradient sends one processGradient and waits for the matching
// gradientProcessed.
func (s *Session) requestGradient(ctx context.Context, req convert.GradientRequest) (string, error) {
	id := req.Asset.ID
	ch := make(chan string, 1)

	s.mu.Lock()
	s.waiting[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.waiting, id)
		s.mu.Unlock()
	}()

	s.client.sendPayload(TypeProcessGradient, ProcessGradientPayload{Gradient: req.Asset, Element: req.Element})

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case image := <-ch:
		return image, nil
	case <-timer.C:
		return "", fmt.Errorf("%w: %s", ErrGradientTimeout, id)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) handleGradientProcessed(msg *Message) {
	var p GradientProcessedPayload
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		slog.Warn("invalid gradientProcessed", "error", err, "session", s.ID)
		return
	}

	s.mu.Lock()
	ch, ok := s.waiting[p.Gradient.ID]
	s.mu.Unlock()
	if !ok {
		slog.Debug("gradient not awaited", "gradient", p.Gradient.ID, "session", s.ID)
		return
	}

	select {
	case ch <- imageURL(p.Image):
	default:
	}
}

// Close cancels the active run and waits for it to stop.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.runs.Wait()
}

func (s *Session) sendError(err error) {
	slog.Warn("session error", "session", s.ID, "error", err)
	s.client.sendPayload(TypeError, ErrorPayload{Message: err.Error()})
}

func imageURL(image string) string {
	image = strings.TrimSpace(image)
	if image == "" || strings.HasPrefix(image, "data:") {
		return image
	}
	return "data:image/png;base64," + image
}
