package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/launcherprefs"
)

type storeInfo struct {
	ID       launcherprefs.StoreID         `json:"id"`
	NoBackup bool                          `json:"noBackup"`
	Keys     []launcherprefs.PreferenceKey `json:"keys"`
}

type storeValues struct {
	ID     launcherprefs.StoreID `json:"id"`
	Values map[string]any        `json:"values"`
}

func (s *Server) store(w http.ResponseWriter, r *http.Request) (*launcherprefs.Store, bool) {
	st, err := s.launcher.Registry.Store(launcherprefs.StoreID(chi.URLParam(r, "store")))
	if err != nil {
		s.fail(w, r, "Store not found", err)
		return nil, false
	}
	return st, true
}

// handleListStores lists every registered store with its schema.
func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores := s.launcher.Registry.Stores()
	out := make([]storeInfo, 0, len(stores))
	for _, st := range stores {
		def := st.Definition()
		out = append(out, storeInfo{ID: def.ID, NoBackup: def.NoBackup, Keys: def.Keys()})
	}
	s.respondWithJSON(w, r, http.StatusOK, out)
}

// handleGetStore returns the effective value of every key, defaults included.
func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	values := make(map[string]any)
	for _, key := range st.Definition().Keys() {
		v, err := st.Value(key.Name)
		if err != nil {
			s.fail(w, r, "Failed to read store", err)
			return
		}
		values[key.Name] = v
	}
	s.respondWithJSON(w, r, http.StatusOK, storeValues{ID: st.ID(), Values: values})
}

// handleSetKey strictly decodes the body as a backup value and writes it.
func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "key")
	key, found := st.Definition().Lookup(name)
	if !found {
		s.respondWithError(w, r, http.StatusNotFound, "Preference not defined", launcherprefs.ErrUnknownKey)
		return
	}

	var raw launcherprefs.BackupValue
	if err := decodeBody(w, r, &raw); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if raw.IsNull() {
		s.respondWithError(w, r, http.StatusBadRequest, "Value must not be null", launcherprefs.ErrInvalidValue)
		return
	}
	native, err := launcherprefs.FromBackupValue(key, raw)
	if err != nil {
		s.fail(w, r, "Value does not match preference kind", err)
		return
	}

	err = st.Update(r.Context(), func(tx *launcherprefs.Tx) error {
		return tx.Set(name, native)
	})
	if err != nil {
		s.fail(w, r, "Failed to set preference", err)
		return
	}
	v, _ := st.Value(name)
	s.respondWithJSON(w, r, http.StatusOK, map[string]any{"key": name, "value": v})
}

// handleRemoveKey reverts a key to its default.
func (s *Server) handleRemoveKey(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "key")
	err := st.Update(r.Context(), func(tx *launcherprefs.Tx) error {
		return tx.Remove(name)
	})
	if err != nil {
		s.fail(w, r, "Failed to reset preference", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResetStore reverts every key of the store to its default.
func (s *Server) handleResetStore(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	if err := st.ResetAll(r.Context()); err != nil {
		s.fail(w, r, "Failed to reset store", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
