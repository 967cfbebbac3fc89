package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jmoiron/sqlx"
	"github.com/openmined/dsmanager/internal/dataset"
	"github.com/openmined/dsmanager/internal/db"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS datasets (
		path TEXT PRIMARY KEY,
		img_mtime INTEGER NOT NULL,
		scanned_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		dataset TEXT NOT NULL,
		filename TEXT NOT NULL,
		PRIMARY KEY (dataset, filename)
	)`,
}

const (
	DefaultCacheSize = 64
	DefaultCacheTTL  = 10 * time.Minute
)

// Entry is the persisted state of one dataset manifest.
type Entry struct {
	Path      string `db:"path" json:"path" yaml:"path"`
	ImgMtime  int64  `db:"img_mtime" json:"imgMtime" yaml:"imgMtime"`
	ScannedAt string `db:"scanned_at" json:"scannedAt" yaml:"scannedAt"`
	Images    int    `db:"images" json:"images" yaml:"images"`
}

type manifest struct {
	mtime  int64
	images []string
}

// Catalog remembers the image listing of every dataset it has served. The
// filesystem stays the source of truth: a manifest is reused only while the
// img directory mtime is unchanged.
type Catalog struct {
	db    *sqlx.DB
	cache *expirable.LRU[string, *manifest]
}

type Config struct {
	DBPath    string        `mapstructure:"db_path"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("catalog db_path required")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("catalog cache_size must not be negative")
	}
	return nil
}

// Open creates the catalog database at cfg.DBPath.
func Open(ctx context.Context, cfg *Config) (*Catalog, error) {
	sqlDB, err := db.NewSqliteDB(db.WithPath(cfg.DBPath), db.WithMaxOpenConns(1))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c, err := New(ctx, sqlDB, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return c, nil
}

// New builds a catalog on an existing handle and applies the schema.
func New(ctx context.Context, sqlDB *sqlx.DB, cacheSize int, ttl time.Duration) (*Catalog, error) {
	if err := db.Migrate(ctx, sqlDB, schema...); err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Catalog{
		db:    sqlDB,
		cache: expirable.NewLRU[string, *manifest](cacheSize, nil, ttl),
	}, nil
}

// Images returns the sorted image filenames of ds's img folder.
func (c *Catalog) Images(ctx context.Context, ds *dataset.Dataset) ([]string, error) {
	info, err := os.Stat(ds.FolderDir(dataset.DirImg))
	if errors.Is(err, fs.ErrNotExist) {
		c.Invalidate(ds.Path)
		return nil, dataset.ErrImageDirNotFound
	} else if err != nil {
		return nil, fmt.Errorf("stat image directory: %w", err)
	}
	mtime := info.ModTime().UnixNano()

	if m, ok := c.cache.Get(ds.Path); ok && m.mtime == mtime {
		return slices.Clone(m.images), nil
	}

	images, ok, err := c.load(ctx, ds.Path, mtime)
	if err != nil {
		slog.Warn("catalog load", "dataset", ds.Path, "error", err)
	}
	if !ok {
		images, err = dataset.ListImages(ds)
		if err != nil {
			return nil, err
		}
		if err := c.store(ctx, ds.Path, mtime, images); err != nil {
			slog.Warn("catalog store", "dataset", ds.Path, "error", err)
		}
	}

	c.cache.Add(ds.Path, &manifest{mtime: mtime, images: images})
	return slices.Clone(images), nil
}

// Invalidate forgets the manifest of the dataset at path.
func (c *Catalog) Invalidate(path string) {
	c.cache.Remove(path)
	for _, stmt := range []string{"DELETE FROM images WHERE dataset = ?", "DELETE FROM datasets WHERE path = ?"} {
		if _, err := c.db.Exec(stmt, path); err != nil {
			slog.Warn("catalog invalidate", "dataset", path, "error", err)
		}
	}
}

// Entries lists every persisted manifest with its image count.
func (c *Catalog) Entries(ctx context.Context) ([]Entry, error) {
	entries := []Entry{}
	err := c.db.SelectContext(ctx, &entries, `
		SELECT d.path, d.img_mtime, d.scanned_at, COUNT(i.filename) AS images
		FROM datasets d LEFT JOIN images i ON i.dataset = d.path
		GROUP BY d.path ORDER BY d.path`)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return entries, nil
}

func (c *Catalog) Close() error {
	c.cache.Purge()
	return c.db.Close()
}

func (c *Catalog) load(ctx context.Context, path string, mtime int64) ([]string, bool, error) {
	var stored int64
	err := c.db.GetContext(ctx, &stored, "SELECT img_mtime FROM datasets WHERE path = ?", path)
	if err != nil || stored != mtime {
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
		}
		return nil, false, err
	}

	images := []string{}
	if err := c.db.SelectContext(ctx, &images, "SELECT filename FROM images WHERE dataset = ? ORDER BY filename", path); err != nil {
		return nil, false, err
	}
	return images, true, nil
}

func (c *Catalog) store(ctx context.Context, path string, mtime int64, images []string) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM images WHERE dataset = ?", path); err != nil {
		return err
	}
	stmt, err := tx.PreparexContext(ctx, "INSERT INTO images (dataset, filename) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range images {
		if _, err := stmt.ExecContext(ctx, path, name); err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (path, img_mtime, scanned_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET img_mtime = excluded.img_mtime, scanned_at = excluded.scanned_at`,
		path, mtime, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	return tx.Commit()
}
