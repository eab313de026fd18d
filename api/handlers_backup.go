package api

import (
	"net/http"
	"strings"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/backupfile"
)

type outcomeView struct {
	Store  launcherprefs.StoreID `json:"store"`
	Status string                `json:"status"`
	Keys   int                   `json:"keys"`
	Legacy bool                  `json:"legacy,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func selection(r *http.Request) []launcherprefs.StoreID {
	var ids []launcherprefs.StoreID
	for _, name := range strings.Split(r.URL.Query().Get("stores"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			ids = append(ids, launcherprefs.StoreID(name))
		}
	}
	return ids
}

// handleExport returns the backup document of the selected stores.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.launcher.Backups.Export(r.Context(), selection(r)...)
	if err != nil {
		s.fail(w, r, "Export failed", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, doc)
}

// handleImport merges a backup document into the selected stores. Stores
// that fail to decode are reported per store with 200; only an aborted
// import is an error response.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	doc, err := backupfile.Decode(r.Body)
	if err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid backup document", err)
		return
	}

	result, err := s.launcher.Backups.Import(r.Context(), doc, selection(r)...)
	if err != nil {
		s.fail(w, r, "Import failed", err)
		return
	}

	out := make([]outcomeView, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		v := outcomeView{Store: o.Store, Status: o.Status.String(), Keys: o.Keys, Legacy: o.Legacy}
		if o.Status == launcherprefs.StatusFailed && o.Err != nil {
			v.Error = o.Err.Error()
		}
		out = append(out, v)
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]any{"outcomes": out})
}
