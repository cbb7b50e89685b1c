package protocol

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/document"
)

func converter() *convert.Converter {
	return convert.New(convert.WithExportDelay(0))
}

func sampleData(t *testing.T) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(document.NewSampleDocument())
	require.NoError(t, err)
	return b
}

func testClient() *Client {
	return &Client{send: make(chan []byte, 64), ClientID: "test"}
}

func next(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case b := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(b, &msg))
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message")
		return Message{}
	}
}

func mustMessage(t *testing.T, typ string, data any) *Message {
	t.Helper()
	msg, err := newMessage(typ, data)
	require.NoError(t, err)
	return msg
}

func TestDocumentLoadReportsSelection(t *testing.T) {
	c := testClient()
	s := NewSession(c, converter())
	defer s.Close()

	s.Handle(context.Background(), &Message{Type: TypeDocumentLoad, Data: sampleData(t)})

	msg := next(t, c)
	require.Equal(t, TypeSelectionChange, msg.Type)
	var sel SelectionChangePayload
	require.NoError(t, json.Unmarshal(msg.Data, &sel))
	require.Len(t, sel.Selection, 1)
	assert.Equal(t, "1:2", sel.Selection[0].ID)

	msg = next(t, c)
	require.Equal(t, TypeIsSelected, msg.Type)
	assert.JSONEq(t, `{"isSelected":true}`, string(msg.Data))
}

func TestSessionErrors(t *testing.T) {
	tests := []struct {
		name    string
		load    bool
		msg     *Message
		message string
	}{
		{"no document", false, &Message{Type: TypeSelectionInit, Data: json.RawMessage(`{"node":{"id":"1:2"}}`)}, "no document loaded"},
		{"bad mode", true, &Message{Type: TypeSelectionInit, Data: json.RawMessage(`{"node":{"id":"1:2"},"mode":"pdf"}`)}, "unknown conversion mode"},
		{"bad document", false, &Message{Type: TypeDocumentLoad, Data: json.RawMessage(`{"nope":`)}, "load document"},
		{"missing node", true, &Message{Type: TypeSelectionInit, Data: json.RawMessage(`{"node":{"id":"9:9"}}`)}, "9:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient()
			s := NewSession(c, converter())
			defer s.Close()

			if tt.load {
				s.Handle(context.Background(), &Message{Type: TypeDocumentLoad, Data: sampleData(t)})
				next(t, c)
				next(t, c)
			}
			s.Handle(context.Background(), tt.msg)

			msg := next(t, c)
			require.Equal(t, TypeError, msg.Type)
			var p ErrorPayload
			require.NoError(t, json.Unmarshal(msg.Data, &p))
			assert.Contains(t, p.Message, tt.message)
		})
	}
}

func TestSelectionInitConvertsBlocks(t *testing.T) {
	c := testClient()
	s := NewSession(c, converter())
	defer s.Close()

	ctx := context.Background()
	s.Handle(ctx, &Message{Type: TypeDocumentLoad, Data: sampleData(t)})
	next(t, c)
	next(t, c)

	s.Handle(ctx, mustMessage(t, TypeSelectionInit, SelectionInitPayload{Node: NodeRef{ID: "1:2"}}))

	msg := next(t, c)
	for msg.Type == TypeWarning {
		msg = next(t, c)
	}
	require.Equal(t, TypeConversionComplete, msg.Type)

	var page map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &page))
	assert.Contains(t, page, "block")
	assert.Contains(t, page, "elements")
	assert.Equal(t, []any{}, page["styles"])
	assert.Equal(t, map[string]any{}, page["icons"])
	assert.Contains(t, string(msg.Data), "url(data:image/png;base64,")
}

func TestRemoteGradientRoundTrip(t *testing.T) {
	c := testClient()
	s := NewSession(c, converter(), WithRemoteGradients(5*time.Second))
	defer s.Close()

	ctx := context.Background()
	s.Handle(ctx, &Message{Type: TypeDocumentLoad, Data: sampleData(t)})
	next(t, c)
	next(t, c)

	s.Handle(ctx, mustMessage(t, TypeSelectionInit, SelectionInitPayload{Node: NodeRef{ID: "1:2"}, Mode: "blocks"}))

	var complete Message
	for complete.Type == "" {
		msg := next(t, c)
		switch msg.Type {
		case TypeProcessGradient:
			var p ProcessGradientPayload
			require.NoError(t, json.Unmarshal(msg.Data, &p))
			require.NotNil(t, p.Gradient)
			assert.Contains(t, p.Gradient.Gradient, "linear-gradient(")
			s.Handle(ctx, mustMessage(t, TypeGradientProcessed, GradientProcessedPayload{
				Gradient: NodeRef{ID: p.Gradient.ID},
				Image:    "iVBORw0KGgo=",
			}))
		case TypeConversionComplete:
			complete = msg
		case TypeWarning:
		default:
			t.Fatalf("unexpected message %s", msg.Type)
		}
	}
	assert.Contains(t, string(complete.Data), "url(data:image/png;base64,iVBORw0KGgo=)")
}

func TestSelectionInitCancelsPreviousRun(t *testing.T) {
	c := testClient()
	s := NewSession(c, converter(), WithRemoteGradients(5*time.Second))

	ctx := context.Background()
	s.Handle(ctx, &Message{Type: TypeDocumentLoad, Data: sampleData(t)})
	next(t, c)
	next(t, c)

	init := mustMessage(t, TypeSelectionInit, SelectionInitPayload{Node: NodeRef{ID: "1:2"}})
	s.Handle(ctx, init)
	first := next(t, c)
	require.Equal(t, TypeProcessGradient, first.Type)

	s.Handle(ctx, init)

	completed := 0
	for completed == 0 {
		msg := next(t, c)
		switch msg.Type {
		case TypeProcessGradient:
			var p ProcessGradientPayload
			require.NoError(t, json.Unmarshal(msg.Data, &p))
			s.Handle(ctx, mustMessage(t, TypeGradientProcessed, GradientProcessedPayload{Gradient: NodeRef{ID: p.Gradient.ID}}))
		case TypeConversionComplete:
			completed++
		}
	}

	s.Close()
	select {
	case b := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(b, &msg))
		assert.NotEqual(t, TypeConversionComplete, msg.Type, "cancelled run must not complete")
	default:
	}
}

func TestRemoteGradientTimeoutResolvesNone(t *testing.T) {
	c := testClient()
	s := NewSession(c, converter(), WithRemoteGradients(20*time.Millisecond))
	defer s.Close()

	ctx := context.Background()
	s.Handle(ctx, &Message{Type: TypeDocumentLoad, Data: sampleData(t)})
	next(t, c)
	next(t, c)
	s.Handle(ctx, mustMessage(t, TypeSelectionInit, SelectionInitPayload{Node: NodeRef{ID: "1:2"}}))

	var complete Message
	for complete.Type != TypeConversionComplete {
		complete = next(t, c)
	}
	assert.NotContains(t, string(complete.Data), "url(data:")
	assert.Contains(t, string(complete.Data), "background-image: none")
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", imageURL("  "))
	assert.Equal(t, "data:image/png;base64,abc", imageURL("abc"))
	assert.Equal(t, "data:image/png;base64,abc", imageURL("data:image/png;base64,abc"))
}

func TestWebsocketEndToEnd(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	srv := httptest.NewServer(NewHandler(hub, converter()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, wsjson.Write(ctx, conn, Message{Type: TypeDocumentLoad, Data: sampleData(t)}))

	var msg Message
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, TypeSelectionChange, msg.Type)
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, TypeIsSelected, msg.Type)

	require.NoError(t, wsjson.Write(ctx, conn, Message{Type: TypeSelectionInit, Data: json.RawMessage(`{"node":{"id":"1:2"},"mode":"html"}`)}))
	for {
		msg = Message{}
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == TypeConversionComplete {
			break
		}
		require.Equal(t, TypeWarning, msg.Type)
	}
	var out map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &out))
	assert.Contains(t, out["html"], "Design to markup")

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubStopClosesConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(NewHandler(hub, converter()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- hub.Stop() }()

	_, _, err = conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	<-stopped
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
