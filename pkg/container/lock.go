package container

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/plotkit/plotkit/pkg/errors"
)

// Same-path opens are serialized at two levels: a per-path mutex group within
// the process, and an advisory file lock on a sidecar file across processes.
// The sidecar (<path>.lock) is used instead of the container itself so the
// lock survives ModeRecreate deleting the container file.

// lockGroup hands out one mutex per cleaned path.
type lockGroup struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var pathLocks = &lockGroup{locks: make(map[string]*sync.Mutex)}

func (g *lockGroup) get(path string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[path]
	if !ok {
		l = &sync.Mutex{}
		g.locks[path] = l
	}
	return l
}

// lockPath acquires both lock levels for path. It returns a release function
// for the in-process lock and the held file lock. With nonblock set, it fails
// with a LOCKED error instead of waiting on either level.
func lockPath(ctx context.Context, path string, nonblock bool) (func(), *flock.Flock, error) {
	l := pathLocks.get(path)
	if nonblock {
		if !l.TryLock() {
			return nil, nil, errors.New(errors.ErrCodeLocked, "container %s is open elsewhere in this process", path)
		}
	} else {
		l.Lock()
	}
	release := l.Unlock

	fl := flock.New(path + ".lock")
	if nonblock {
		ok, err := fl.TryLock()
		if err != nil {
			release()
			return nil, nil, errors.Wrap(errors.ErrCodeStorage, err, "lock container %s", path)
		}
		if !ok {
			release()
			return nil, nil, errors.New(errors.ErrCodeLocked, "container %s is locked by another process", path)
		}
		return release, fl, nil
	}

	ok, err := fl.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		release()
		return nil, nil, errors.Wrap(errors.ErrCodeStorage, err, "lock container %s", path)
	}
	if !ok {
		release()
		return nil, nil, errors.New(errors.ErrCodeLocked, "container %s is locked by another process", path)
	}
	return release, fl, nil
}

// unlockPath releases both lock levels.
func unlockPath(release func(), fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
	if release != nil {
		release()
	}
}
