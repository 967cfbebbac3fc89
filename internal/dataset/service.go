package dataset

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/openmined/dsmanager/internal/utils"
)

var ErrNoUploader = errors.New("remote export is not configured")

// ObjectUploader stores a local file under bucket/key on a remote object store.
type ObjectUploader interface {
	PutFile(ctx context.Context, bucket, key, path string) error
}

// ChangeHook runs after an operation mutated a dataset.
type ChangeHook func(ds *Dataset)

type options struct {
	names    *NameGenerator
	locks    *LockManager
	uploader ObjectUploader
	workers  int
}

type Option func(*options)

// WithNameGenerator replaces the entropy-seeded generator, mostly for tests.
func WithNameGenerator(g *NameGenerator) Option {
	return func(o *options) {
		o.names = g
	}
}

func WithLockManager(m *LockManager) Option {
	return func(o *options) {
		o.locks = m
	}
}

func WithUploader(u ObjectUploader) Option {
	return func(o *options) {
		o.uploader = u
	}
}

// WithWorkers bounds the concurrency of compress and export.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// DatasetService owns every operation that touches a dataset's folders.
type DatasetService struct {
	root     string
	names    *NameGenerator
	locks    *LockManager
	uploader ObjectUploader
	workers  int

	hooksMu sync.RWMutex
	hooks   []ChangeHook
}

func NewDatasetService(root string, opts ...Option) (*DatasetService, error) {
	absRoot, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve datasets root: %w", err)
	}
	if err := utils.EnsureDir(absRoot); err != nil {
		return nil, fmt.Errorf("create datasets root: %w", err)
	}

	o := &options{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.names == nil {
		o.names = DefaultNameGenerator()
	}
	if o.workers < 1 {
		o.workers = 1
	}

	return &DatasetService{
		root:     absRoot,
		names:    o.names,
		locks:    o.locks,
		uploader: o.uploader,
		workers:  o.workers,
	}, nil
}

func (s *DatasetService) Root() string {
	return s.root
}

// OnChange registers a hook called after every mutating operation.
func (s *DatasetService) OnChange(hook ChangeHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func (s *DatasetService) notify(datasets ...*Dataset) {
	s.hooksMu.RLock()
	defer s.hooksMu.RUnlock()
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		for _, hook := range s.hooks {
			hook(ds)
		}
	}
}

// Resolve maps a root-relative dataset path to an existing directory.
func (s *DatasetService) Resolve(rel string) (*Dataset, error) {
	if rel == "" {
		return nil, fmt.Errorf("%w: folder is required", ErrInvalidPath)
	}

	dir, err := utils.JoinWithin(s.root, rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, rel)
	}
	if dir == s.root {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, rel)
	}
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, rel)
	}

	return s.datasetAt(dir), nil
}

func (s *DatasetService) datasetAt(dir string) *Dataset {
	ds := &Dataset{Dir: dir}
	if rel, err := relSlash(s.root, dir); err == nil {
		ds.Path = rel
	}
	ds.Name = baseSlash(ds.Path)
	return ds
}

func (s *DatasetService) lock(ctx context.Context, datasets ...*Dataset) (func(), error) {
	return s.locks.Lock(ctx, datasets...)
}
