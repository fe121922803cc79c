package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ftl.
type Config struct {
	SiteID     string           `toml:"site_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	SourceDir  string           `toml:"source_dir"`
	RootURL    string           `toml:"root_url"`
	Database   DatabaseConfig   `toml:"database"`
	Blobs      BlobStoreConfig  `toml:"blobs"`
	Encryption EncryptionConfig `toml:"encryption"`
	Build      BuildConfig      `toml:"build"`
	Render     RenderConfig     `toml:"render"`
	Serve      ServeConfig      `toml:"serve"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// EncryptionConfig holds paths to the age key pair used for database snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FilesystemConfig holds source walking settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// BlobStoreConfig represents configuration for the blob store holding
// binary inputs and snapshots.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobStoreConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
	// S3Endpoint points at an S3-compatible service and enables path-style addressing.
	S3Endpoint string `toml:"s3_endpoint,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// BuildConfig tunes builds.
type BuildConfig struct {
	Workers int  `toml:"workers"` // parallel ingestion and rendering, defaults to 4
	Drafts  bool `toml:"drafts"`  // route drafts and unpublished pages
}

// RenderConfig configures the default renderer.
type RenderConfig struct {
	DefaultTemplate string `toml:"default_template"`
	// UnsafeHTML lets raw HTML in markdown through to the output.
	UnsafeHTML bool `toml:"unsafe_html"`
}

// ServeConfig configures `ftl serve`.
type ServeConfig struct {
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(siteID, baseDir, sourceDir string) *Config {
	return &Config{
		SiteID:    siteID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		SourceDir: sourceDir,
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Blobs: BlobStoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "blobs"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "ftl.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "ftl.key"),
		},
		Build: BuildConfig{
			Workers: 4,
		},
		Render: RenderConfig{
			DefaultTemplate: "page.html",
		},
		Serve: ServeConfig{
			Address: "127.0.0.1",
			Port:    2180,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	if c.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	if c.SourceDir == "" {
		return fmt.Errorf("source_dir is required")
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers must not be negative")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d out of range", c.Serve.Port)
	}
	return nil
}
