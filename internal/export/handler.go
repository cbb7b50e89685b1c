// Package export serves conversions over HTTP.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/figconv/internal/convert"
	"github.com/inamate/figconv/internal/document"
	"github.com/inamate/figconv/internal/normalize"
)

const defaultMaxSize = 10 << 20 // 10MB

type Handler struct {
	converter *convert.Converter
	maxSize   int64
}

func NewHandler(converter *convert.Converter, maxSize int64) *Handler {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	return &Handler{converter: converter, maxSize: maxSize}
}

// Convert handles POST /api/convert/{mode}. The body is a JSON or YAML
// document, or a multipart form with a "document" file. ?root= picks the
// node to convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	mode, err := convert.ParseMode(mux.Vars(r)["mode"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	data, err := h.readDocument(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	doc, err := document.Parse(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.converter.Convert(r.Context(), convert.Request{
		Document: doc,
		RootID:   r.URL.Query().Get("root"),
		Mode:     mode,
	})
	if err != nil {
		handleConvertError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) readDocument(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, errors.New("document too large or unreadable")
		}
		return data, nil
	}

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		return nil, errors.New("document too large or unreadable")
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("document")
	if err != nil {
		return nil, errors.New("missing document field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("document too large or unreadable")
	}
	return data, nil
}

func handleConvertError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrNodeNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, document.ErrEmptyDocument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, normalize.ErrNothingToRender):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Info("conversion cancelled", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "conversion cancelled"})
	default:
		slog.Error("conversion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
