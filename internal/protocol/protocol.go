// Package protocol runs the converter behind a websocket. Each connection
// gets a session that holds the loaded document and at most one active
// conversion run.
package protocol

import (
	"encoding/json"

	"github.com/inamate/figconv/internal/blocks"
	"github.com/inamate/figconv/internal/document"
)

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	// client -> server
	TypeDocumentLoad      = "documentLoad"
	TypeSelectionInit     = "selectionInit"
	TypeGradientProcessed = "gradientProcessed"

	// server -> client
	TypeIsSelected         = "isSelected"
	TypeSelectionChange    = "selectionchange"
	TypeProcessGradient    = "processGradient"
	TypeConversionComplete = "conversionComplete"
	TypeWarning            = "warning"
	TypeError              = "error"
)

// documentLoad carries a full document export; its data is decoded with
// document.Parse.

type NodeRef struct {
	ID string `json:"id"`
}

type SelectionInitPayload struct {
	Node NodeRef `json:"node"`
	Mode string  `json:"mode,omitempty"`
}

type GradientProcessedPayload struct {
	Gradient NodeRef `json:"gradient"`
	// Image is a data URL or bare base64 PNG. Empty means the client could
	// not paint the gradient.
	Image string `json:"image"`
}

type IsSelectedPayload struct {
	IsSelected bool `json:"isSelected"`
}

type SelectionChangePayload struct {
	Selection []document.NodeSummary `json:"selection"`
}

// ProcessGradientPayload asks the client to paint one gradient. The reply
// is a gradientProcessed message carrying the same gradient id.
type ProcessGradientPayload struct {
	Gradient *blocks.PendingAsset `json:"gradient"`
	Element  *blocks.Element      `json:"element,omitempty"`
}

type WarningPayload struct {
	Messages []string `json:"messages"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, data any) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Data: raw}, nil
}
