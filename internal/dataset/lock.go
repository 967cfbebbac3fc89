package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// LockManager serializes mutating operations per dataset with advisory file
// locks, so separate processes sharing a datasets root also exclude each other.
type LockManager struct {
	enabled bool
	timeout time.Duration
}

func NewLockManager(enabled bool, timeout time.Duration) *LockManager {
	return &LockManager{enabled: enabled, timeout: timeout}
}

// Lock acquires every dataset lock in path order and returns the release func.
func (m *LockManager) Lock(ctx context.Context, datasets ...*Dataset) (func(), error) {
	if m == nil || !m.enabled {
		return func() {}, nil
	}

	seen := make(map[string]bool, len(datasets))
	ordered := make([]*Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if ds == nil || seen[ds.Dir] {
			continue
		}
		seen[ds.Dir] = true
		ordered = append(ordered, ds)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Dir < ordered[j].Dir })

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	held := make([]*flock.Flock, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(); err != nil {
				slog.Warn("dataset unlock", "path", held[i].Path(), "error", err)
			}
		}
	}

	for _, ds := range ordered {
		fl := flock.New(ds.lockPath())
		locked, err := fl.TryLockContext(ctx, lockRetryDelay)
		if err != nil || !locked {
			release()
			if err == nil || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrDatasetLocked, ds.Path)
			}
			return nil, fmt.Errorf("lock dataset %s: %w", ds.Path, err)
		}
		held = append(held, fl)
	}

	return release, nil
}
