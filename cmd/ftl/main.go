package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ftl-go/internal/app"
	"ftl-go/internal/config"
	"ftl-go/internal/ftl"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an FTLApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Build", "Collect");
// opts carries the command's own flags.
func newApp(cmd *cobra.Command, operation string, opts app.Options) (*app.FTLApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}
	a, err := app.NewFTLApp(cfg, operation, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on the terminal without echoing input.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func printRevision(info *ftl.RevisionInfo) {
	rev := info.Revision
	flags := ""
	if info.Current {
		flags += "  [current]"
	}
	if rev.Pinned {
		flags += "  [pinned]"
	}
	if !rev.Stable {
		flags += "  [unstable]"
	}
	name := rev.Name
	if name == "" {
		name = "-"
	}
	fmt.Printf("%s  %-20s  %s%s\n", ftl.ShortID(rev.ID), name, rev.CreatedAt.Local().Format("2006-01-02 15:04:05"), flags)
}

var rootCmd = &cobra.Command{
	Use:          "ftl",
	Short:        "Incremental site builder",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		siteID := uuid.New().String()
		cfg := config.NewConfig(siteID, defaults["base_dir"], defaults["source_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Site ID:    %s\n", siteID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Source Dir: %s\n", cfg.SourceDir)
		fmt.Println("Run `ftl db migrate` to create the database.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Site ID:    %s\n", cfg.SiteID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Source Dir: %s\n", cfg.SourceDir)
		fmt.Printf("Root URL:   %s\n", cfg.RootURL)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Blobs:      %s\n", cfg.Blobs.Type)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Workers:    %d\n", cfg.Build.Workers)
		fmt.Printf("Serve:      %s:%d\n", cfg.Serve.Address, cfg.Serve.Port)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.SetupKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s\n", filepath.Dir(cfg.Encryption.PublicKeyPath))
		return nil
	},
}

// build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a revision from the source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}
		drafts, err := cmd.Flags().GetBool("drafts")
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "Build", app.Options{Drafts: drafts})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Build(cmd.Context(), name)
		if ftl.IsFatal(err) {
			return fmt.Errorf("build failed: %w", err)
		}
		for _, w := range res.Warnings {
			fmt.Printf("warning: %s\n", w)
		}

		if res.Reused {
			fmt.Printf("Revision %s unchanged\n", ftl.ShortID(res.Revision.ID))
			return nil
		}
		fmt.Printf("Revision %s: rendered %d, carried %d\n",
			ftl.ShortID(res.Revision.ID), res.Rendered, res.Carried)
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the source tree with the current revision",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Status", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Status(cmd.Context())
		if ftl.IsFatal(err) {
			return err
		}

		if st.Revision == nil {
			fmt.Println("No revision built yet.")
		} else {
			fmt.Printf("Current revision: %s\n", ftl.ShortID(st.Revision.ID))
		}
		for _, m := range st.Changes.Modified {
			fmt.Printf("M  %s\n", m.New.Path)
		}
		for _, f := range st.Changes.Added {
			fmt.Printf("A  %s\n", f.Path)
		}
		for _, f := range st.Changes.Removed {
			fmt.Printf("D  %s\n", f.Path)
		}
		if st.Changes.Empty() {
			fmt.Println("Nothing changed.")
		}
		for _, w := range st.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		return nil
	},
}

// revision command
var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "Manage revisions",
}

var revisionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List revisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListRevisions", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.ListRevisions()
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No revisions.")
			return nil
		}
		for _, info := range infos {
			printRevision(info)
		}
		return nil
	},
}

var revisionInspectCmd = &cobra.Command{
	Use:   "inspect REF",
	Short: "Show a revision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "InspectRevision", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.InspectRevision(args[0])
		if err != nil {
			return err
		}
		rev := info.Revision
		fmt.Printf("ID:         %s\n", rev.ID)
		fmt.Printf("Name:       %s\n", rev.Name)
		fmt.Printf("Created:    %s\n", formatTime(&rev.CreatedAt))
		fmt.Printf("Stabilized: %s\n", formatTime(rev.StabilizedAt))
		fmt.Printf("Pinned:     %t\n", rev.Pinned)
		fmt.Printf("Current:    %t\n", info.Current)
		fmt.Printf("Files:      %d\n", info.Stats.Files)
		fmt.Printf("Pages:      %d\n", info.Stats.Pages)
		fmt.Printf("Routes:     %d\n", info.Stats.Routes)
		fmt.Printf("Outputs:    %d\n", info.Stats.Outputs)
		return nil
	},
}

var revisionNameCmd = &cobra.Command{
	Use:   "name REF NAME",
	Short: "Name a revision",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "NameRevision", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		rev, err := a.NameRevision(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Named %s %q\n", ftl.ShortID(rev.ID), rev.Name)
		return nil
	},
}

var revisionPinCmd = &cobra.Command{
	Use:   "pin REF",
	Short: "Protect a revision from garbage collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Pin", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		rev, err := a.Pin(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Pinned %s\n", ftl.ShortID(rev.ID))
		return nil
	},
}

var revisionUnpinCmd = &cobra.Command{
	Use:   "unpin REF",
	Short: "Allow a revision to be garbage collected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Unpin", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		rev, err := a.Unpin(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Unpinned %s\n", ftl.ShortID(rev.ID))
		return nil
	},
}

var revisionRollbackCmd = &cobra.Command{
	Use:   "rollback REF",
	Short: "Make a stable revision current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Rollback", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		rev, err := a.Rollback(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Current revision: %s\n", ftl.ShortID(rev.ID))
		return nil
	},
}

var revisionDumpCmd = &cobra.Command{
	Use:   "dump REF DIR",
	Short: "Write a revision's outputs to a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Dump", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Dump(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d file(s) to %s\n", n, args[1])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View build history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "History", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		builds, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(builds) == 0 {
			fmt.Println("No builds recorded.")
			return nil
		}

		for _, b := range builds {
			duration := ""
			if b.FinishedAt != nil {
				duration = b.FinishedAt.Sub(b.StartedAt).Truncate(time.Millisecond).String()
			}
			reused := ""
			if b.Reused {
				reused = "  [reused]"
			}
			fmt.Printf("%s  %s  %-8s  %s  rendered:%d  warnings:%d  %s%s\n",
				ftl.ShortID(b.ID),
				b.StartedAt.Local().Format("2006-01-02 15:04:05"),
				b.Status,
				ftl.ShortID(b.Revision),
				b.Rendered,
				b.Warnings,
				duration,
				reused,
			)
		}
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log PATH",
	Short: "View the stored versions of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "FileLog", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.FileLog(args[0])
		if err != nil {
			return err
		}

		for _, v := range versions {
			fmt.Printf("%s  %s  %d  revisions:%d\n",
				ftl.ShortID(v.Input.Hash),
				v.Input.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				v.Input.Size,
				len(v.Revisions),
			)
		}
		return nil
	},
}

// cat command
var catCmd = &cobra.Command{
	Use:   "cat ROUTE",
	Short: "Print the output served at a route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, _ := cmd.Flags().GetString("revision")

		a, err := newApp(cmd, "Cat", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		art, err := a.Cat(cmd.Context(), args[0], ref)
		if err != nil {
			return err
		}
		if art.Redirect != "" {
			fmt.Fprintf(os.Stderr, "%s redirects to %s\n", art.Route, art.Redirect)
		}
		_, err = os.Stdout.Write(art.Content)
		return err
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve revisions over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Serve", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Serving on http://%s\n", a.Addr())
		return a.Serve(ctx)
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
}

var dbStatCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Stats", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Stats()
		if err != nil {
			return err
		}
		db := stats.Database
		fmt.Printf("Database:    %s (%d bytes)\n", stats.DatabasePath, db.SizeBytes)
		fmt.Printf("Inputs:      %d\n", db.InputFiles)
		fmt.Printf("Revisions:   %d (%d pinned)\n", db.Revisions, db.Pinned)
		fmt.Printf("Pages:       %d\n", db.Pages)
		fmt.Printf("Routes:      %d\n", db.Routes)
		fmt.Printf("Outputs:     %d (%d bytes)\n", db.Outputs, db.OutputBytes)
		if stats.BlobStoreErr != nil {
			fmt.Printf("Blob store:  %v\n", stats.BlobStoreErr)
		} else {
			fmt.Println("Blob store:  ok")
		}
		return nil
	},
}

var dbGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete unpinned revisions other than the current one",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Collect", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Collect(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Collected %d revision(s), %d input(s), %d blob(s)\n",
			len(stats.Revisions), stats.InputFiles, stats.Blobs)
		return nil
	},
}

var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete everything in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			return fmt.Errorf("refusing to clear without --force")
		}

		a, err := newApp(cmd, "Clear", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Database cleared.")
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.Migrate(cfg); err != nil {
			return err
		}
		fmt.Println("Database is up to date.")
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store an encrypted database snapshot in the blob store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Backup", app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Stored snapshot version %d\n", version)
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the database with the stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var passphrase string
		if app.NeedsPassphrase(cfg) {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		version, err := app.Restore(cfg, passphrase)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored snapshot version %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	rootCmd.SetContext(context.Background())

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	keysCmd.AddCommand(keysInitCmd)

	// revision subcommands
	revisionCmd.AddCommand(revisionListCmd)
	revisionCmd.AddCommand(revisionInspectCmd)
	revisionCmd.AddCommand(revisionNameCmd)
	revisionCmd.AddCommand(revisionPinCmd)
	revisionCmd.AddCommand(revisionUnpinCmd)
	revisionCmd.AddCommand(revisionRollbackCmd)
	revisionCmd.AddCommand(revisionDumpCmd)

	// db subcommands
	dbCmd.AddCommand(dbStatCmd)
	dbCmd.AddCommand(dbGCCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbClearCmd.Flags().Bool("force", false, "Confirm deleting all revisions")
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbRestoreCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("name", "", "Name the resulting revision")
	buildCmd.Flags().Bool("drafts", false, "Include drafts and unpublished pages")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(revisionCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of builds to show")
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().StringP("revision", "r", "", "Revision reference (default current)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}
