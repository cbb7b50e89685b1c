package asset

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inamate/figconv/internal/typeid"
)

const (
	maxRequestSize = 1 << 20 // 1MB
	maxSide        = 4096
)

// GradientRequest is the body of POST /assets/gradient.
type GradientRequest struct {
	Gradient string `json:"gradient"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// GradientResponse is returned from the gradient endpoint.
type GradientResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Handler serves the gradient rasterization endpoint.
type Handler struct {
	width, height int
}

// NewHandler creates a handler whose images default to width×height.
func NewHandler(width, height int) *Handler {
	if width <= 0 {
		width = DefaultGradientWidth
	}
	if height <= 0 {
		height = DefaultGradientHeight
	}
	return &Handler{width: width, height: height}
}

// Gradient handles POST /assets/gradient.
func (h *Handler) Gradient(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	var req GradientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Gradient == "" {
		http.Error(w, "gradient is required", http.StatusBadRequest)
		return
	}

	width, height := req.Width, req.Height
	if width <= 0 {
		width = h.width
	}
	if height <= 0 {
		height = h.height
	}

	if width > maxSide || height > maxSide {
		http.Error(w, "gradient size too large", http.StatusBadRequest)
		return
	}

	url, err := GradientDataURL(req.Gradient, width, height)
	if err != nil {
		if errors.Is(err, ErrInvalidGradient) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("render gradient", "error", err, "gradient", req.Gradient)
		http.Error(w, "failed to render gradient", http.StatusInternalServerError)
		return
	}

	resp := GradientResponse{
		ID:     typeid.NewAssetID(),
		URL:    url,
		Width:  width,
		Height: height,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
