package backupfile

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/settings"
)

// Run describes one automatic backup attempt.
type Run struct {
	ID      string
	Path    string
	Stores  []launcherprefs.StoreID
	At      time.Time
	Skipped bool
}

// AutoBackup exports the stores chosen in the Backup store to its
// configured target.
type AutoBackup struct {
	reg     *launcherprefs.Registry
	backups *launcherprefs.BackupManager
	logger  launcherprefs.Logger
	now     func() time.Time
}

// NewAutoBackup returns an AutoBackup logging through the registry's logger.
func NewAutoBackup(reg *launcherprefs.Registry, backups *launcherprefs.BackupManager) *AutoBackup {
	return &AutoBackup{reg: reg, backups: backups, logger: reg.Logger(), now: time.Now}
}

// Run performs a backup if it is enabled and a target is set; otherwise it
// returns a skipped Run and no error. Stores named in backup_stores that are
// not registered are ignored; an empty list backs up every store. On success
// last_backup_time is set to the run time.
func (a *AutoBackup) Run(ctx context.Context) (Run, error) {
	run := Run{ID: uuid.NewString(), At: a.now()}

	cfg, err := a.reg.Store(settings.Backup)
	if err != nil {
		return run, err
	}
	enabled, err := launcherprefs.Get(cfg, settings.AutoBackupEnabled)
	if err != nil {
		return run, err
	}
	if !enabled {
		run.Skipped = true
		return run, nil
	}

	target, err := launcherprefs.Get(cfg, settings.AutoBackupURI)
	if err != nil {
		return run, err
	}
	if strings.TrimSpace(target) == "" {
		a.logger.Warn("No backup URI set", "run", run.ID)
		run.Skipped = true
		return run, nil
	}
	run.Path, err = targetPath(target)
	if err != nil {
		return run, err
	}

	names, err := launcherprefs.Get(cfg, settings.BackupStores)
	if err != nil {
		return run, err
	}
	for _, name := range names {
		id := launcherprefs.StoreID(name)
		if _, err := a.reg.Store(id); err != nil {
			a.logger.Warn("Ignoring unknown backup store", "run", run.ID, "store", name)
			continue
		}
		run.Stores = append(run.Stores, id)
	}
	if len(names) > 0 && len(run.Stores) == 0 {
		a.logger.Warn("No known stores selected for backup", "run", run.ID)
		run.Skipped = true
		return run, nil
	}

	doc, err := a.backups.Export(ctx, run.Stores...)
	if err != nil {
		return run, err
	}
	if err := Write(run.Path, doc); err != nil {
		a.logger.Error("Auto-backup failed", "run", run.ID, "path", run.Path, "error", err)
		return run, err
	}
	if err := launcherprefs.Set(ctx, cfg, settings.LastBackupTime, run.At.UnixMilli()); err != nil {
		return run, err
	}

	a.logger.Info("Auto-backup completed", "run", run.ID, "path", run.Path, "stores", len(doc.Stores))
	return run, nil
}

// targetPath accepts a plain path or a file:// URI.
func targetPath(target string) (string, error) {
	if !strings.Contains(target, "://") {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: backup target %q: %v", launcherprefs.ErrInvalidInput, target, err)
	}
	if u.Scheme != "file" || u.Path == "" {
		return "", fmt.Errorf("%w: unsupported backup target %q", launcherprefs.ErrInvalidInput, target)
	}
	return u.Path, nil
}
