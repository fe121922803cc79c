package app

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ftl-go/internal/blobstore"
	"ftl-go/internal/config"
	"ftl-go/internal/database"
	"ftl-go/internal/encryption"
	"ftl-go/internal/fs"
	"ftl-go/internal/ftl"
	"ftl-go/internal/model"
	"ftl-go/internal/parse"
	"ftl-go/internal/render"
	"ftl-go/internal/server"
)

// snapshotName is the blob store metadata item holding database snapshots.
const snapshotName = "db"

// Options are per-invocation overrides of the config.
type Options struct {
	// Verbose sends debug logs to stderr as well as the log file.
	Verbose bool
	// Drafts routes draft and unpublished pages for this run.
	Drafts bool
}

// FTLApp is the application layer between the CLI and the engine.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw paths and references, and closes the database and log
// file on Close.
type FTLApp struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	blobs     ftl.BlobStore
	encryptor ftl.Encryptor
	tree      *fs.OSSourceTree
	engine    *ftl.Engine
	logger    ftl.Logger
	clock     ftl.Clock
	op        *Operation
	logFile   *os.File
}

// NewFTLApp creates a fully wired FTLApp from the given config.
// operation identifies the CLI command being run (e.g. "Build", "Collect").
// The caller must call Close when done.
func NewFTLApp(cfg *config.Config, operation string, opts Options) (*FTLApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tree, err := fs.NewOSSourceTree(cfg.SourceDir, cfg.Filesystem.Ignore)
	if err != nil {
		return nil, fmt.Errorf("opening source tree: %w", err)
	}

	blobs, err := blobstore.NewBlobStoreFromConfig(cfg.Blobs)
	if err != nil {
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	clock := ftl.RealClock{}
	op := NewOperation(operation, ftl.UUIDGenerator{}, clock)
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, opts.Verbose)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	renderer := render.New(render.Options{
		DefaultTemplate: cfg.Render.DefaultTemplate,
		RootURL:         cfg.RootURL,
		UnsafeHTML:      cfg.Render.UnsafeHTML,
	})
	engine := ftl.NewEngine(db, blobs, parse.Parser{}, renderer, log, clock, ftl.UUIDGenerator{}, ftl.Options{
		Workers:         cfg.Build.Workers,
		DefaultTemplate: cfg.Render.DefaultTemplate,
		Drafts:          cfg.Build.Drafts || opts.Drafts,
	})

	a := &FTLApp{
		cfg:       cfg,
		db:        db,
		blobs:     blobs,
		encryptor: enc,
		tree:      tree,
		engine:    engine,
		logger:    log,
		clock:     clock,
		op:        op,
		logFile:   logFile,
	}
	a.checkSnapshot()
	return a, nil
}

// checkSnapshot warns when the blob store holds a snapshot newer than the
// local database, which usually means the database should be restored.
func (a *FTLApp) checkSnapshot() {
	remote, err := a.blobs.GetMetadataVersion(a.cfg.SiteID, snapshotName)
	if err != nil {
		a.logger.Warn("checking snapshot version", "error", err)
		return
	}
	local, err := a.snapshotVersion()
	if err != nil {
		a.logger.Warn("checking local version", "error", err)
		return
	}
	if remote > local {
		a.logger.Warn("local database is behind the stored snapshot; run `ftl db restore`",
			"local", local, "snapshot", remote)
	}
}

// snapshotVersion is the number of stable revisions in the database.
func (a *FTLApp) snapshotVersion() (int64, error) {
	infos, err := a.engine.ListRevisions()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, info := range infos {
		if info.Revision.Stable {
			n++
		}
	}
	return n, nil
}

// track marks the operation failed when err aborted it.
func (a *FTLApp) track(err error) error {
	if ftl.IsFatal(err) {
		a.op.Fail()
	}
	return err
}

// Config returns the loaded configuration.
func (a *FTLApp) Config() *config.Config {
	return a.cfg
}

// Build ingests the source tree and builds a revision from it.
func (a *FTLApp) Build(ctx context.Context, name string) (*ftl.BuildResult, error) {
	res, err := a.engine.Build(ctx, a.tree, ftl.BuildOptions{Name: name})
	return res, a.track(err)
}

// Status compares the source tree with the current revision.
func (a *FTLApp) Status(ctx context.Context) (*ftl.TreeStatus, error) {
	st, err := a.engine.Status(ctx, a.tree)
	return st, a.track(err)
}

func (a *FTLApp) ListRevisions() ([]*ftl.RevisionInfo, error) {
	infos, err := a.engine.ListRevisions()
	return infos, a.track(err)
}

func (a *FTLApp) InspectRevision(ref string) (*ftl.RevisionInfo, error) {
	info, err := a.engine.InspectRevision(ref)
	return info, a.track(err)
}

func (a *FTLApp) NameRevision(ref, name string) (*model.Revision, error) {
	rev, err := a.engine.Name(ref, name)
	return rev, a.track(err)
}

func (a *FTLApp) Pin(ref string) (*model.Revision, error) {
	rev, err := a.engine.Pin(ref)
	return rev, a.track(err)
}

func (a *FTLApp) Unpin(ref string) (*model.Revision, error) {
	rev, err := a.engine.Unpin(ref)
	return rev, a.track(err)
}

func (a *FTLApp) Rollback(ref string) (*model.Revision, error) {
	rev, err := a.engine.Rollback(ref)
	return rev, a.track(err)
}

// Dump exports a stable revision into dir and returns the number of files written.
func (a *FTLApp) Dump(ctx context.Context, ref, dir string) (int, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, a.track(fmt.Errorf("resolving path: %w", err))
	}
	n, err := a.engine.Export(ctx, ref, abs)
	return n, a.track(err)
}

// History returns the most recent builds.
func (a *FTLApp) History(limit int) ([]*model.Build, error) {
	builds, err := a.engine.History(limit)
	return builds, a.track(err)
}

// FileLog returns the stored versions of a source file. rawPath may be a
// filesystem path or a path relative to the source root.
func (a *FTLApp) FileLog(rawPath string) ([]*ftl.FileVersion, error) {
	versions, err := a.engine.FileLog(a.sourcePath(rawPath))
	return versions, a.track(err)
}

// sourcePath maps rawPath to the slash separated path the engine stores.
func (a *FTLApp) sourcePath(rawPath string) string {
	abs, err := filepath.Abs(rawPath)
	if err == nil {
		if rel, err := filepath.Rel(a.tree.Root(), abs); err == nil && !strings.HasPrefix(rel, "..") {
			if _, err := os.Stat(abs); err == nil {
				return filepath.ToSlash(rel)
			}
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(rawPath)), "./")
}

// Cat returns the artifact served at route in the referenced revision.
func (a *FTLApp) Cat(ctx context.Context, route, ref string) (*ftl.Artifact, error) {
	art, err := a.engine.Resolve(ctx, route, ref)
	return art, a.track(err)
}

// Addr is the listen address of the configured server.
func (a *FTLApp) Addr() string {
	return net.JoinHostPort(a.cfg.Serve.Address, strconv.Itoa(a.cfg.Serve.Port))
}

// Serve runs the HTTP server until ctx is cancelled.
func (a *FTLApp) Serve(ctx context.Context) error {
	srv := server.New(a.engine, a.logger)
	return a.track(srv.Start(ctx, a.Addr()))
}

// StoreStats describes the database and the blob store.
type StoreStats struct {
	Database     *ftl.DatabaseStats
	DatabasePath string
	// BlobStoreErr is nil when the blob store is reachable.
	BlobStoreErr error
}

func (a *FTLApp) Stats() (*StoreStats, error) {
	stats, err := a.engine.Stats()
	if err != nil {
		return nil, a.track(err)
	}
	return &StoreStats{
		Database:     stats,
		DatabasePath: a.db.Path(),
		BlobStoreErr: a.blobs.ValidateSetup(),
	}, nil
}

func (a *FTLApp) Collect(ctx context.Context) (*ftl.CollectStats, error) {
	stats, err := a.engine.Collect(ctx)
	return stats, a.track(err)
}

func (a *FTLApp) Clear(ctx context.Context) error {
	return a.track(a.engine.Clear(ctx))
}

// Backup snapshots the database, seals it with the configured encryptor and
// stores it in the blob store. The snapshot version is the number of stable
// revisions, so a later snapshot never has a lower version.
func (a *FTLApp) Backup(ctx context.Context) (int64, error) {
	version, err := a.backup(ctx)
	return version, a.track(err)
}

func (a *FTLApp) backup(ctx context.Context) (int64, error) {
	if !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not found: run `ftl keys init`")
	}
	version, err := a.snapshotVersion()
	if err != nil {
		return 0, fmt.Errorf("counting stable revisions: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("nothing to back up: no stable revisions")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmpFile, err := os.CreateTemp("", "ftl-db-backup-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file for db backup: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := a.db.BackupTo(tmpPath); err != nil {
		return 0, fmt.Errorf("backing up database: %w", err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("opening db backup: %w", err)
	}
	defer f.Close()

	var sealed bytes.Buffer
	if err := encryption.Seal(a.encryptor, f, &sealed); err != nil {
		return 0, fmt.Errorf("sealing db backup: %w", err)
	}
	size := int64(sealed.Len())
	if err := a.blobs.PutMetadata(a.cfg.SiteID, snapshotName, &sealed, size, version); err != nil {
		return 0, fmt.Errorf("uploading db backup: %w", err)
	}
	a.logger.Info("database backed up", "version", version, "bytes", size)
	return version, nil
}

// Close finishes the operation and closes all resources.
func (a *FTLApp) Close() error {
	var firstErr error

	a.logger.Info("operation finished",
		"operation", a.op.Name,
		"status", a.op.Status,
		"duration", a.clock.Now().Sub(a.op.StartedAt),
	)

	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Migrate applies pending schema migrations to the configured database.
func Migrate(cfg *config.Config) error {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// SetupKeys creates the snapshot key pair protected by passphrase.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up keys: %w", err)
	}
	return nil
}

// NeedsPassphrase reports whether restoring a snapshot requires a passphrase.
func NeedsPassphrase(cfg *config.Config) bool {
	return cfg.Encryption.Type == "" || cfg.Encryption.Type == "age"
}

// Restore replaces the configured database file with the latest snapshot
// in the blob store and returns its version. The database must not be open.
func Restore(cfg *config.Config, passphrase string) (int64, error) {
	path, err := database.PathFromConfig(cfg.Database)
	if err != nil {
		return 0, err
	}

	blobs, err := blobstore.NewBlobStoreFromConfig(cfg.Blobs)
	if err != nil {
		return 0, fmt.Errorf("creating blob store: %w", err)
	}
	version, err := blobs.GetMetadataVersion(cfg.SiteID, snapshotName)
	if err != nil {
		return 0, fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no snapshot stored for site %s: %w", cfg.SiteID, ftl.ErrNotFound)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking keys: %w", err)
	}

	var sealed bytes.Buffer
	if err := blobs.GetMetadata(cfg.SiteID, snapshotName, &sealed); err != nil {
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".restore-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := encryption.Open(dc, &sealed, tmp); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("opening snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing temp file: %w", err)
	}

	// Stale WAL files would be replayed over the restored database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("removing %s: %w", path+suffix, err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("replacing database: %w", err)
	}
	return version, nil
}
