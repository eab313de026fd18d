package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/launcherprefs/gesture"
)

type pointView struct {
	gesture.Point
	Selected bool `json:"selected"`
}

type addPointRequest struct {
	Circle int             `json:"circleNumber"`
	Action *gesture.Action `json:"action"`
}

type moveRequest struct {
	AngleDeg float64 `json:"angleDeg"`
}

type actionRequest struct {
	Action *gesture.Action `json:"action"`
}

func viewPoints(points []gesture.Point) []pointView {
	out := make([]pointView, len(points))
	for i, p := range points {
		out[i] = pointView{Point: p, Selected: p.Selected}
	}
	return out
}

// handleListPoints returns every dial point. ?selected={id} selects a point
// first; an empty value clears the selection.
func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("selected") {
		if err := s.launcher.Dial.Select(q.Get("selected")); err != nil {
			s.fail(w, r, "Point not found", err)
			return
		}
	}
	s.respondWithJSON(w, r, http.StatusOK, viewPoints(s.launcher.Dial.Points()))
}

func (s *Server) handleAddPoint(w http.ResponseWriter, r *http.Request) {
	var req addPointRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	p, sep, err := s.launcher.Dial.Add(r.Context(), req.Circle, req.Action)
	if err != nil {
		s.fail(w, r, "Failed to add point", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusCreated, map[string]any{"point": p, "separation": sep})
}

func (s *Server) handleMovePoint(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	sep, err := s.launcher.Dial.Move(r.Context(), chi.URLParam(r, "id"), req.AngleDeg)
	if err != nil {
		s.fail(w, r, "Failed to move point", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]any{"separation": sep})
}

func (s *Server) handleSetPointAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := s.launcher.Dial.SetAction(r.Context(), chi.URLParam(r, "id"), req.Action); err != nil {
		s.fail(w, r, "Failed to set action", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemovePoint(w http.ResponseWriter, r *http.Request) {
	if err := s.launcher.Dial.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "Failed to remove point", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetPoints(w http.ResponseWriter, r *http.Request) {
	if err := s.launcher.Dial.Reset(r.Context()); err != nil {
		s.fail(w, r, "Failed to reset points", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSeparate re-runs separation on one circle.
func (s *Server) handleSeparate(w http.ResponseWriter, r *http.Request) {
	circle, err := intParam(r, "circle")
	if err != nil {
		s.fail(w, r, "Invalid circle", err)
		return
	}
	sep, err := s.launcher.Dial.Separate(r.Context(), circle)
	if err != nil {
		s.fail(w, r, "Failed to separate points", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]any{"separation": sep})
}
