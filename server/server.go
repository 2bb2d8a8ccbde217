// Package server is the HTTP shell around the filter registry. It decodes
// requests into registry calls and encodes results back to callers; all
// filter semantics live below it.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probitech/bloomd/registry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxItemSize bounds the request body accepted as a filter item.
const maxItemSize = 1 << 20

// Server translates HTTP requests into registry operations.
type Server struct {
	reg     *registry.Registry
	log     *slog.Logger
	metrics *metrics
}

// New creates a Server over the given registry. A nil logger disables
// request logging.
func New(reg *registry.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		reg:     reg,
		log:     log,
		metrics: newMetrics(reg),
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /filters", s.handleCreate)
	mux.HandleFunc("GET /filters", s.handleList)
	mux.HandleFunc("DELETE /filters/{name}", s.handleDelete)
	mux.HandleFunc("POST /filters/{name}/items", s.handleInsert)
	mux.HandleFunc("GET /filters/{name}/items", s.handleLookup)
	mux.HandleFunc("PUT /filters/{name}/clear", s.handleClear)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return s.observe(mux)
}

// --- request/response shapes ---

type createRequest struct {
	Name              string   `json:"name"`
	ItemCount         uint64   `json:"item_count"`
	HashCount         *uint64  `json:"hash_count"`
	FalsePositiveRate *float64 `json:"false_positive_rate"`
}

type filterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type listItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount uint64 `json:"item_count"`
	Config    string `json:"config"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type lookupResponse struct {
	Contains bool   `json:"contains"`
	Message  string `json:"message"`
}

// --- handlers ---

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxItemSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
		return
	}

	// Exactly one sizing mode must be supplied.
	var mode registry.Mode
	switch {
	case req.FalsePositiveRate != nil && req.HashCount != nil:
		writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "Must provide either false_positive_rate or hash_count, not both"})
		return
	case req.FalsePositiveRate != nil:
		mode = registry.FalsePositiveRate(*req.FalsePositiveRate)
	case req.HashCount != nil:
		mode = registry.HashCount(*req.HashCount)
	default:
		writeJSON(w, http.StatusBadRequest,
			errorResponse{Error: "Must provide either false_positive_rate or hash_count"})
		return
	}

	id, err := s.reg.Create(req.Name, req.ItemCount, mode)
	if err != nil {
		if errors.Is(err, registry.ErrNameConflict) {
			writeJSON(w, http.StatusConflict, errorResponse{
				Error: fmt.Sprintf("Cannot create filter '%s', name is already in use", req.Name),
			})
			return
		}
		s.writeError(w, err, req.Name)
		return
	}

	writeJSON(w, http.StatusCreated, filterResponse{
		ID:      id,
		Name:    req.Name,
		Message: fmt.Sprintf("Filter '%s' created", req.Name),
	})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	infos := s.reg.List()
	items := make([]listItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, listItem{
			ID:        info.ID,
			Name:      info.Name,
			ItemCount: info.Capacity,
			Config:    info.Config,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	nameOrID := r.PathValue("name")
	name, err := s.reg.Delete(nameOrID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("Filter '%s' not found", nameOrID),
		})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Filter '%s' has been deleted", name),
	})
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	item, ok := s.readItem(w, r)
	if !ok {
		return
	}
	if err := s.reg.Insert(name, item); err != nil {
		s.writeError(w, err, name)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Response string `json:"response"`
	}{
		Response: fmt.Sprintf("Item '%s' inserted into filter '%s'", item, name),
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	item, ok := s.readItem(w, r)
	if !ok {
		return
	}
	contains, err := s.reg.Contains(name, item)
	if err != nil {
		s.writeError(w, err, name)
		return
	}

	msg := fmt.Sprintf("Item '%s' cannot have been seen by filter '%s'", item, name)
	if contains {
		msg = fmt.Sprintf("Item '%s' may have been seen by filter '%s'", item, name)
	}
	writeJSON(w, http.StatusOK, lookupResponse{Contains: contains, Message: msg})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.reg.Clear(name); err != nil {
		s.writeError(w, err, name)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Filter '%s' has been cleared", name),
	})
}

// --- helpers ---

// readItem reads the request body as the opaque item. The raw body is the
// item; no framing or encoding is applied.
func (s *Server) readItem(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	item, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxItemSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Unable to read item from request body"})
		return nil, false
	}
	return item, true
}

func (s *Server) writeError(w http.ResponseWriter, err error, name string) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("Filter '%s' not found", name),
		})
	case errors.Is(err, registry.ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: trimPackagePrefix(err)})
	case errors.Is(err, registry.ErrNameConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: trimPackagePrefix(err)})
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// trimPackagePrefix strips the registry package prefix from error text
// before it goes on the wire.
func trimPackagePrefix(err error) string {
	return strings.TrimPrefix(err.Error(), "registry: ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe wraps the mux with request logging and metrics.
func (s *Server) observe(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(sw, r)

		// The mux annotates a copy of the request, so the matched
		// pattern has to be looked up here.
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}
		s.metrics.requests.WithLabelValues(route, fmt.Sprint(sw.status)).Inc()
		s.log.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
