// Package httpapi exposes the note store over HTTP: the server side of
// the transport contract used by short-id deployments.
//
//	POST /api/notes      store an encrypted payload, returns its short id
//	GET  /api/notes/{id} consume a payload: found notes are returned once
//	                     and destroyed; 404 = unknown or already viewed,
//	                     410 = found but expired
package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/burnnote/burner/internal/common"
	"github.com/burnnote/burner/internal/logging"
	"github.com/burnnote/burner/internal/store"
)

// Limits bound what the API accepts.
type Limits struct {
	// MaxNoteBytes caps the decoded payload size.
	MaxNoteBytes int64
	// MaxTTL caps the requested time-to-live.
	MaxTTL time.Duration
}

// Handler serves the note API on top of a store.Store.
type Handler struct {
	store  store.Store
	log    logging.Logger
	limits Limits
	now    func() time.Time
}

func NewHandler(s store.Store, log logging.Logger, limits Limits) *Handler {
	return &Handler{
		store:  s,
		log:    log.With("module", "httpapi"),
		limits: limits,
		now:    time.Now,
	}
}

// Router builds the mux router with all routes and middleware attached.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(h.loggingMiddleware)
	r.HandleFunc("/api/notes", h.storeNote).Methods(http.MethodPost)
	r.HandleFunc("/api/notes/{id}", h.consumeNote).Methods(http.MethodGet)
	return r
}

// storeRequest mirrors the original web client's body: the payload blob
// travels base64-encoded, timestamps in unix milliseconds.
type storeRequest struct {
	Data      string `json:"data"`
	CreatedMS int64  `json:"created,omitempty"`
	TTLMS     int64  `json:"ttl_ms"`
}

type storeResponse struct {
	ShortID   string `json:"short_id"`
	ExpiresMS int64  `json:"expires_at"`
}

type fetchResponse struct {
	Data      string `json:"data"`
	CreatedMS int64  `json:"created"`
	TTLMS     int64  `json:"ttl_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) storeNote(w http.ResponseWriter, r *http.Request) {
	// the base64 wrapping inflates the payload by 4/3
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxNoteBytes*2+1024)

	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil || len(payload) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "invalid payload encoding")
		return
	}
	if int64(len(payload)) > h.limits.MaxNoteBytes {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, "note too large")
		return
	}

	ttl := time.Duration(req.TTLMS) * time.Millisecond
	if ttl <= 0 || ttl > h.limits.MaxTTL {
		h.writeError(w, r, http.StatusBadRequest, "ttl out of range")
		return
	}

	// the client may supply its own creation instant (the original web
	// client did); anything unset or in the future is clamped to now
	created := time.UnixMilli(req.CreatedMS)
	now := h.now()
	if req.CreatedMS <= 0 || created.After(now) {
		created = now
	}

	id, err := store.NewID()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "id generation failed")
		return
	}

	rec := &store.Record{ID: id, Payload: payload, Created: created, TTL: ttl}
	if err := h.store.Put(r.Context(), rec); err != nil {
		h.log.Error(r.Context(), "put failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "storage failure")
		return
	}

	h.writeJSON(w, http.StatusOK, storeResponse{
		ShortID:   id,
		ExpiresMS: rec.ExpiresAt().UnixMilli(),
	})
}

func (h *Handler) consumeNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.store.Consume(r.Context(), id, h.now())
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "not found")
		return
	case errors.Is(err, common.ErrExpired):
		h.writeError(w, r, http.StatusGone, "expired")
		return
	default:
		h.log.Error(r.Context(), "consume failed", "error", err)
		h.writeError(w, r, http.StatusInternalServerError, "storage failure")
		return
	}

	h.writeJSON(w, http.StatusOK, fetchResponse{
		Data:      base64.StdEncoding.EncodeToString(rec.Payload),
		CreatedMS: rec.Created.UnixMilli(),
		TTLMS:     rec.TTL.Milliseconds(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= 500 {
		h.log.Error(r.Context(), "request failed", "status", status, "error", msg)
	}
	h.writeJSON(w, status, errorResponse{Error: msg})
}
