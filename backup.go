package launcherprefs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// LegacyActionsField is the reserved top-level name of the flat gesture
// action array written by the old single-file backup format.
const LegacyActionsField = "actions"

// Document is one full backup: the sparse export of every selected store,
// keyed by StoreID.
type Document struct {
	Stores map[StoreID]map[string]BackupValue
	// LegacyActions holds the raw legacy action array, if the document has one.
	LegacyActions json.RawMessage
	// Malformed holds top-level entries that are not objects. They are not
	// exported again; importing a registered store with such an entry fails.
	Malformed map[StoreID]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Stores: make(map[StoreID]map[string]BackupValue)}
}

// StoreIDs returns the identifiers present in the document, sorted.
func (d *Document) StoreIDs() []StoreID {
	ids := make([]StoreID, 0, len(d.Stores))
	for id := range d.Stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Stores)+1)
	for id, values := range d.Stores {
		out[string(id)] = values
	}
	if len(d.LegacyActions) > 0 {
		out[LegacyActionsField] = d.LegacyActions
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Top-level entries that are not
// objects are ignored so that newer documents stay readable.
func (d *Document) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("%w: backup document is not a JSON object: %v", ErrInvalidInput, err)
	}

	d.Stores = make(map[StoreID]map[string]BackupValue, len(top))
	d.LegacyActions = nil
	d.Malformed = nil
	for name, raw := range top {
		if name == LegacyActionsField {
			d.LegacyActions = raw
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var values map[string]BackupValue
		if err := json.Unmarshal(raw, &values); err != nil {
			if d.Malformed == nil {
				d.Malformed = make(map[StoreID]json.RawMessage)
			}
			d.Malformed[StoreID(name)] = raw
			continue
		}
		d.Stores[StoreID(name)] = values
	}
	return nil
}

// malformedEntry describes a store entry that is not an object.
func malformedEntry(id StoreID, raw json.RawMessage) *DecodeError {
	var v BackupValue
	actual := "invalid JSON"
	if err := json.Unmarshal(raw, &v); err == nil {
		actual = v.Kind().String()
	}
	return &DecodeError{
		Key:      string(id),
		Expected: "Object of preference values",
		Actual:   actual,
		Raw:      string(raw),
	}
}

// LegacyImporter decodes the legacy action array into the store it owns.
type LegacyImporter interface {
	StoreID() StoreID
	ImportLegacy(ctx context.Context, raw json.RawMessage) (int, error)
}

// ImportStatus is the outcome of importing one store.
type ImportStatus int

const (
	StatusImported ImportStatus = iota + 1
	StatusFailed
	StatusSkipped
)

func (s ImportStatus) String() string {
	switch s {
	case StatusImported:
		return "imported"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// StoreOutcome reports what happened to one selected store.
type StoreOutcome struct {
	Store  StoreID
	Status ImportStatus
	// Keys is the number of keys (or legacy records) applied.
	Keys int
	// Legacy is set when the store was restored from the legacy action array.
	Legacy bool
	// Err explains a failed or skipped store.
	Err error
}

// ImportResult aggregates per-store outcomes in registration order.
type ImportResult struct {
	Outcomes []StoreOutcome
}

// Imported returns the stores that were applied.
func (r *ImportResult) Imported() []StoreID {
	var ids []StoreID
	for _, o := range r.Outcomes {
		if o.Status == StatusImported {
			ids = append(ids, o.Store)
		}
	}
	return ids
}

// Failed returns the outcomes of stores that rolled back.
func (r *ImportResult) Failed() []StoreOutcome {
	var failed []StoreOutcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err joins the failures, or returns nil when every selected store imported
// or was skipped.
func (r *ImportResult) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("store %s: %w", o.Store, o.Err))
	}
	return errors.Join(errs...)
}

var errNotInDocument = errors.New("store not present in document")
var errNotBackedUp = errors.New("store is excluded from backups")

// BackupManager exports and imports registry stores as one Document.
type BackupManager struct {
	reg    *Registry
	logger Logger
	legacy LegacyImporter
}

// BackupOption configures a BackupManager.
type BackupOption func(*BackupManager)

// WithLegacyImporter installs the fallback used when a document carries the
// legacy action array but no entry for the importer's store.
func WithLegacyImporter(li LegacyImporter) BackupOption {
	return func(m *BackupManager) {
		m.legacy = li
	}
}

// NewBackupManager returns a manager over reg. It logs through the
// registry's logger.
func NewBackupManager(reg *Registry, opts ...BackupOption) *BackupManager {
	m := &BackupManager{reg: reg, logger: reg.Logger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Export assembles the sparse export of the selected stores. An empty
// selection selects every registered store. Stores excluded from backups and
// stores holding only defaults are omitted.
func (m *BackupManager) Export(ctx context.Context, selection ...StoreID) (*Document, error) {
	stores, err := m.resolve(selection)
	if err != nil {
		return nil, err
	}

	doc := NewDocument()
	for _, s := range stores {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.def.NoBackup {
			continue
		}
		values, err := s.ExportBackup()
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", s.def.ID, err)
		}
		if len(values) == 0 {
			continue
		}
		doc.Stores[s.def.ID] = values
	}

	m.logger.Info("Exported settings", "stores", len(doc.Stores))
	return doc, nil
}

// Import merges doc into the selected stores, one transaction per store.
// A decode failure rolls back only its own store and is reported in the
// result. A storage failure aborts the import and is returned as the error.
func (m *BackupManager) Import(ctx context.Context, doc *Document, selection ...StoreID) (*ImportResult, error) {
	if doc == nil {
		return nil, ErrInvalidInput
	}
	stores, err := m.resolve(selection)
	if err != nil {
		return nil, err
	}

	outcomes := make([]StoreOutcome, len(stores))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range stores {
		g.Go(func() error {
			o, err := m.importStore(gctx, doc, s)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		m.logger.Error("Settings import aborted", "error", err)
		return nil, err
	}

	result := &ImportResult{Outcomes: outcomes}
	for _, o := range result.Failed() {
		m.logger.Warn("Store import rolled back", "store", o.Store, "error", o.Err)
	}
	m.logger.Info("Imported settings", "imported", len(result.Imported()), "failed", len(result.Failed()))
	return result, nil
}

func (m *BackupManager) importStore(ctx context.Context, doc *Document, s *Store) (StoreOutcome, error) {
	id := s.def.ID
	if s.def.NoBackup {
		return StoreOutcome{Store: id, Status: StatusSkipped, Err: errNotBackedUp}, nil
	}

	if raw, bad := doc.Malformed[id]; bad {
		return outcomeOf(id, 0, false, malformedEntry(id, raw))
	}
	values, ok := doc.Stores[id]
	if !ok {
		if m.legacy != nil && m.legacy.StoreID() == id && len(doc.LegacyActions) > 0 {
			n, err := m.legacy.ImportLegacy(ctx, doc.LegacyActions)
			return outcomeOf(id, n, true, err)
		}
		return StoreOutcome{Store: id, Status: StatusSkipped, Err: errNotInDocument}, nil
	}

	n, err := s.ImportBackup(ctx, values)
	return outcomeOf(id, n, false, err)
}

func outcomeOf(id StoreID, n int, legacy bool, err error) (StoreOutcome, error) {
	switch {
	case err == nil:
		return StoreOutcome{Store: id, Status: StatusImported, Keys: n, Legacy: legacy}, nil
	case errors.Is(err, ErrStorageUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StoreOutcome{}, err
	default:
		return StoreOutcome{Store: id, Status: StatusFailed, Legacy: legacy, Err: err}, nil
	}
}

func (m *BackupManager) resolve(selection []StoreID) ([]*Store, error) {
	all := m.reg.Stores()
	if len(selection) == 0 {
		return all, nil
	}

	want := make(map[StoreID]bool, len(selection))
	for _, id := range selection {
		if _, err := m.reg.Store(id); err != nil {
			return nil, err
		}
		want[id] = true
	}

	out := make([]*Store, 0, len(want))
	for _, s := range all {
		if want[s.def.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}
