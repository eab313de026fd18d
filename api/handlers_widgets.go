package api

import (
	"context"
	"net/http"

	"github.com/CreativeUnicorns/launcherprefs/widgets"
)

type addWidgetRequest struct {
	ID          int     `json:"id"`
	Provider    string  `json:"provider"`
	MinWidthDp  float64 `json:"minWidthDp"`
	MinHeightDp float64 `json:"minHeightDp"`
}

type dragRequest struct {
	Corner string  `json:"corner,omitempty"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
}

func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	placements := s.launcher.Widgets.Placements()
	if placements == nil {
		placements = []widgets.Placement{}
	}
	s.respondWithJSON(w, r, http.StatusOK, placements)
}

func (s *Server) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var req addWidgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	provider, err := widgets.ParseProvider(req.Provider)
	if err != nil {
		s.fail(w, r, "Invalid provider", err)
		return
	}
	p, err := s.launcher.Widgets.Add(r.Context(), req.ID, provider, req.MinWidthDp, req.MinHeightDp)
	if err != nil {
		s.fail(w, r, "Failed to add widget", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusCreated, p)
}

func (s *Server) handleMoveWidget(w http.ResponseWriter, r *http.Request) {
	id, req, ok := s.dragInput(w, r)
	if !ok {
		return
	}
	p, err := s.launcher.Widgets.Move(r.Context(), id, req.DX, req.DY)
	if err != nil {
		s.fail(w, r, "Failed to move widget", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleResizeWidget(w http.ResponseWriter, r *http.Request) {
	id, req, ok := s.dragInput(w, r)
	if !ok {
		return
	}
	corner, err := widgets.ParseCorner(req.Corner)
	if err != nil {
		s.fail(w, r, "Invalid corner", err)
		return
	}
	p, err := s.launcher.Widgets.Resize(r.Context(), id, corner, req.DX, req.DY)
	if err != nil {
		s.fail(w, r, "Failed to resize widget", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleRaiseWidget(w http.ResponseWriter, r *http.Request) {
	s.reorderWidget(w, r, s.launcher.Widgets.MoveUp)
}

func (s *Server) handleLowerWidget(w http.ResponseWriter, r *http.Request) {
	s.reorderWidget(w, r, s.launcher.Widgets.MoveDown)
}

func (s *Server) handleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, "Invalid widget id", err)
		return
	}
	if err := s.launcher.Widgets.Remove(r.Context(), id); err != nil {
		s.fail(w, r, "Failed to remove widget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetWidgets(w http.ResponseWriter, r *http.Request) {
	if err := s.launcher.Widgets.Reset(r.Context()); err != nil {
		s.fail(w, r, "Failed to reset widgets", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dragInput(w http.ResponseWriter, r *http.Request) (int, dragRequest, bool) {
	var req dragRequest
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, "Invalid widget id", err)
		return 0, req, false
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return 0, req, false
	}
	return id, req, true
}

func (s *Server) reorderWidget(w http.ResponseWriter, r *http.Request, fn func(context.Context, int) error) {
	id, err := intParam(r, "id")
	if err != nil {
		s.fail(w, r, "Invalid widget id", err)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		s.fail(w, r, "Failed to reorder widget", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
