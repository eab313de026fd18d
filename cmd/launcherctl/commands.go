package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/backupfile"
	"github.com/CreativeUnicorns/launcherprefs/internal/config"
	"github.com/CreativeUnicorns/launcherprefs/settings"
)

type options struct {
	storage  string
	dsn      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "launcherctl",
		Short:         "Inspect, back up and restore launcher settings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.storage, "storage", "", "storage driver: memory, sqlite or postgres (default from LAUNCHERPREFS_STORAGE)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "SQLite file or PostgreSQL DSN (default from LAUNCHERPREFS_STORAGE_DSN)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "error", "log level")

	root.AddCommand(
		newStoresCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newResetCmd(opts),
		newSeparateCmd(opts),
		newAutoBackupCmd(opts),
	)
	return root
}

// open loads the environment configuration, applies flag overrides and opens
// the launcher.
func (o *options) open(ctx context.Context) (*settings.Launcher, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.storage != "" {
		cfg.StorageDriver = o.storage
	}
	if o.dsn != "" {
		cfg.StorageDSN = o.dsn
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	cfg.CacheDriver = "none"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.Open(ctx, cfg.Logger())
}

func withLauncher(o *options, fn func(cmd *cobra.Command, args []string, l *settings.Launcher) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		l, err := o.open(cmd.Context())
		if err != nil {
			return err
		}
		defer l.Close()
		return fn(cmd, args, l)
	}
}

func parseStores(s string) []launcherprefs.StoreID {
	var ids []launcherprefs.StoreID
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			ids = append(ids, launcherprefs.StoreID(name))
		}
	}
	return ids
}

func newStoresCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List stores and how many keys differ from their defaults",
		Args:  cobra.NoArgs,
		RunE: withLauncher(o, func(cmd *cobra.Command, _ []string, l *settings.Launcher) error {
			w := cmd.OutOrStdout()
			for _, s := range l.Registry.Stores() {
				def := s.Definition()
				cyan.Fprintf(w, "%-12s", def.ID)
				fmt.Fprintf(w, " %d/%d set", len(s.Snapshot()), len(def.Keys()))
				if def.NoBackup {
					fmt.Fprint(w, " (not backed up)")
				}
				fmt.Fprintln(w)
			}
			return nil
		}),
	}
}

func newExportCmd(o *options) *cobra.Command {
	var stores, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup document",
		Long: `Write a backup document of the selected stores.

Examples:
  launcherctl export --out backup.json
  launcherctl export --stores Debug,Widgets`,
		Args: cobra.NoArgs,
		RunE: withLauncher(o, func(cmd *cobra.Command, _ []string, l *settings.Launcher) error {
			doc, err := l.Backups.Export(cmd.Context(), parseStores(stores)...)
			if err != nil {
				return err
			}
			if out == "" {
				return backupfile.Encode(cmd.OutOrStdout(), doc)
			}
			if err := backupfile.Write(out, doc); err != nil {
				return err
			}
			printSuccess(cmd.ErrOrStderr(), "Exported %d stores to %s", len(doc.Stores), out)
			return nil
		}),
	}
	cmd.Flags().StringVar(&stores, "stores", "", "comma-separated store ids (default all)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(o *options) *cobra.Command {
	var stores string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a backup document into the settings",
		Args:  cobra.ExactArgs(1),
		RunE: withLauncher(o, func(cmd *cobra.Command, args []string, l *settings.Launcher) error {
			doc, err := backupfile.Read(args[0])
			if err != nil {
				return err
			}
			result, err := l.Backups.Import(cmd.Context(), doc, parseStores(stores)...)
			if err != nil {
				return err
			}
			for _, outcome := range result.Outcomes {
				printOutcome(cmd.OutOrStdout(), outcome)
			}
			if failed := result.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d stores failed to import", len(failed), len(result.Outcomes))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&stores, "stores", "", "comma-separated store ids (default all)")
	return cmd
}

func newResetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset STORE...",
		Short: "Revert every key of the given stores to its default",
		Args:  cobra.MinimumNArgs(1),
		RunE: withLauncher(o, func(cmd *cobra.Command, args []string, l *settings.Launcher) error {
			for _, id := range args {
				s, err := l.Registry.Store(launcherprefs.StoreID(id))
				if err != nil {
					return err
				}
				if err := s.ResetAll(cmd.Context()); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Reset %s", id)
			}
			return nil
		}),
	}
}

func newSeparateCmd(o *options) *cobra.Command {
	var circle int
	cmd := &cobra.Command{
		Use:   "separate",
		Short: "Re-run gesture point separation on one dial",
		Args:  cobra.NoArgs,
		RunE: withLauncher(o, func(cmd *cobra.Command, _ []string, l *settings.Launcher) error {
			sep, err := l.Dial.Separate(cmd.Context(), circle)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !sep.Stable {
				printWarning(w, "Circle %d holds more points than fit %g° apart", circle, l.Dial.MinGap())
				return nil
			}
			printSuccess(w, "Circle %d separated in %d passes (%d adjustments)", circle, sep.Passes, sep.Adjustments)
			return nil
		}),
	}
	cmd.Flags().IntVar(&circle, "circle", 0, "dial index")
	return cmd
}

func newAutoBackupCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "auto-backup",
		Short: "Run the automatic backup configured in the Backup store",
		Args:  cobra.NoArgs,
		RunE: withLauncher(o, func(cmd *cobra.Command, _ []string, l *settings.Launcher) error {
			run, err := backupfile.NewAutoBackup(l.Registry, l.Backups).Run(cmd.Context())
			if err != nil {
				return err
			}
			if run.Skipped {
				printWarning(cmd.OutOrStdout(), "Auto-backup is disabled or has no target")
				return nil
			}
			printSuccess(cmd.OutOrStdout(), "Backed up to %s (run %s)", run.Path, run.ID)
			return nil
		}),
	}
}
