package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/tablesort/internal/core"
	"github.com/JonMunkholm/tablesort/internal/sorter"
)

// maxJSONBody bounds API request bodies other than uploads.
const maxJSONBody = 64 << 10

// SortRequest is the body of POST /api/tables/{id}/sort. An empty
// Direction toggles.
type SortRequest struct {
	Column    int    `json:"column"`
	Direction string `json:"direction,omitempty"`
}

// SortResponse reports whether the sort happened and the resulting state.
type SortResponse struct {
	Sorted bool             `json:"sorted"`
	State  core.WidgetState `json:"state"`
}

func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.List())
}

// handleCreateWidget loads a multipart upload and returns the widget.
func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	info, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Location", "/api/tables/"+info.ID)
	writeJSONStatus(w, http.StatusCreated, info)
}

func (s *Server) handleWidgetState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.State(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, state)
}

func (s *Server) handleSortAPI(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	dir, err := parseDirection(req.Direction)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	state, sorted, err := s.service.Sort(chi.URLParam(r, "id"), req.Column, dir)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, SortResponse{Sorted: sorted, State: state})
}

// handleEvent delivers a click or keydown to a header.
//
//	POST /api/tables/{id}/events {"type":"keydown","key":"Enter","column":1}
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev core.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	switch ev.Type {
	case sorter.EventClick, sorter.EventKeyDown:
	default:
		s.respondError(w, r, fmt.Errorf("%w: event type %q must be click or keydown", errBadRequest, ev.Type), http.StatusBadRequest)
		return
	}

	out, err := s.service.Dispatch(chi.URLParam(r, "id"), ev)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, out)
}

func (s *Server) handleDeleteWidget(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Remove(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: body: %w", errBadRequest, err)
	}
	return nil
}
