// Package api exposes the clustering service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"doccluster/internal/domain"
	"doccluster/internal/ingest"
)

// ClusterPort is the handler-facing subset of the clustering service.
type ClusterPort interface {
	RunRaw(rawDocs []string, kRaw string) (*domain.Result, error)
}

// Handler serves clustering requests.
type Handler struct {
	service        ClusterPort
	maxUploadBytes int64
}

// NewHandler creates a handler; maxUploadMB <= 0 means 10 MB.
func NewHandler(service ClusterPort, maxUploadMB int) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &Handler{service: service, maxUploadBytes: int64(maxUploadMB) << 20}
}

// ClusterRequest is the JSON request body. K may be a string or a number.
type ClusterRequest struct {
	Documents  []string `json:"documents"`
	PastedText string   `json:"pasted_text"`
	K          any      `json:"k"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// HandleCluster handles POST /api/cluster.
func (h *Handler) HandleCluster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	docs, kRaw, err := h.parseRequest(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := h.service.RunRaw(docs, kRaw)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrValidation) {
			status = http.StatusBadRequest
		}
		respondJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) parseRequest(r *http.Request) ([]string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var req ClusterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, "", fmt.Errorf("invalid JSON: %w", err)
		}
		k := ""
		if req.K != nil {
			k = fmt.Sprint(req.K)
		}
		return ingest.Collect(req.Documents, req.PastedText), k, nil
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return h.parseForm(r)
	default:
		return nil, "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}

// parseForm reads uploaded .txt files and the pasted text field.
// Files with other extensions and empty files are ignored.
func (h *Handler) parseForm(r *http.Request) ([]string, string, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", fmt.Errorf("invalid form: %w", err)
	}
	var files []string
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			if !ingest.IsText(fh.Filename) {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				return nil, "", fmt.Errorf("open %s: %w", fh.Filename, err)
			}
			text, err := ingest.ReadUpload(f)
			f.Close()
			if err != nil {
				return nil, "", fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			files = append(files, text)
		}
	}
	return ingest.Collect(files, r.FormValue("pasted_text")), r.FormValue("k"), nil
}
