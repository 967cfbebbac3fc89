package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"time"

	"github.com/openmined/dsmanager/internal/blob"
	"github.com/openmined/dsmanager/internal/catalog"
	"github.com/openmined/dsmanager/internal/utils"
	"github.com/ulule/limiter/v3"
)

const (
	DefaultAddr        = "127.0.0.1:5001"
	DefaultDatasetsDir = "./Datasets"
	DefaultLockTimeout = 5 * time.Second
	DefaultRateLimit   = "20-S"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Datasets DatasetsConfig `mapstructure:"datasets"`
	Catalog  catalog.Config `mapstructure:"catalog"`
	S3       blob.S3Config  `mapstructure:"s3"`
	LogDir   string         `mapstructure:"log_dir"`
}

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	CertFile  string `mapstructure:"cert_file"`
	KeyFile   string `mapstructure:"key_file"`
	StaticDir string `mapstructure:"static_dir"`
	RateLimit string `mapstructure:"rate_limit"`
	APIToken  string `mapstructure:"api_token"`
}

type DatasetsConfig struct {
	Root        string        `mapstructure:"root"`
	LockEnabled bool          `mapstructure:"lock_enabled"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	// Workers bounds compress and export concurrency; zero uses NumCPU.
	Workers int `mapstructure:"workers"`
}

// DefaultCatalogPath is where the catalog lives when none is configured.
func DefaultCatalogPath(datasetsRoot string) string {
	return filepath.Join(datasetsRoot, ".dsmanager", "catalog.db")
}

func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if err := c.Datasets.Validate(); err != nil {
		return err
	}
	if c.Catalog.DBPath == "" {
		c.Catalog.DBPath = DefaultCatalogPath(c.Datasets.Root)
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.S3.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *HTTPConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("http addr required")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid http addr %q: %w", c.Addr, err)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return errors.New("http cert_file and key_file must be set together")
	}
	if c.CertFile != "" && !utils.FileExists(c.CertFile) {
		return fmt.Errorf("http cert_file %q not found", c.CertFile)
	}
	if c.KeyFile != "" && !utils.FileExists(c.KeyFile) {
		return fmt.Errorf("http key_file %q not found", c.KeyFile)
	}
	if c.StaticDir != "" && !utils.DirExists(c.StaticDir) {
		return fmt.Errorf("http static_dir %q not found", c.StaticDir)
	}
	if c.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
			return fmt.Errorf("invalid http rate_limit %q: %w", c.RateLimit, err)
		}
	}
	return nil
}

// TLS reports whether the server terminates TLS itself.
func (c *HTTPConfig) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

func (c *HTTPConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("cert_file", c.CertFile),
		slog.String("key_file", c.KeyFile),
		slog.String("static_dir", c.StaticDir),
		slog.String("rate_limit", c.RateLimit),
		slog.String("api_token", utils.MaskSecret(c.APIToken)),
	)
}

func (c *DatasetsConfig) Validate() error {
	if c.Root == "" {
		return errors.New("datasets root required")
	}
	if c.LockTimeout < 0 {
		return errors.New("datasets lock_timeout must not be negative")
	}
	if c.Workers < 0 {
		return errors.New("datasets workers must not be negative")
	}
	return nil
}
