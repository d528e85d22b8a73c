// Package container implements a single-file store of named, typed objects.
//
// A container is the unit of persistence in PlotKit: drawables and other
// session objects are written into it under a name and read back later, the
// way a plotting session keeps its histograms and annotations in one file.
// Containers are backed by SQLite, so a container is an ordinary file on disk
// that can be copied, inspected, and removed with standard tools.
//
// # Lifecycle and ownership
//
// A container is opened with an explicit mode (read, open-existing, recreate)
// and must be closed exactly once. Handles returned by Get are owned by the
// container that produced them: once the container closes, decoding through a
// non-detached handle fails with a use-after-release error. Handles can be
// promoted to independent ownership either per handle with Detach, or for the
// whole container with the WithDetachedHandles open option. There is no
// ambient process-wide ownership flag.
//
// # Same-path serialization
//
// Opens of the same path are serialized: within a process by a per-path lock
// group, across processes by an advisory file lock on a sidecar next to the
// container. TryOpen is the non-blocking variant and fails with a LOCKED error
// when another holder has the path.
package container

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/observability"
)

// Mode selects how a container file is opened.
type Mode int

const (
	// ModeRead opens an existing container for reading only.
	ModeRead Mode = iota + 1

	// ModeUpdate opens an existing container for reading and writing.
	ModeUpdate

	// ModeRecreate creates the container, discarding any previous contents.
	ModeRecreate
)

// String returns the canonical mode keyword.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeUpdate:
		return "update"
	case ModeRecreate:
		return "recreate"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode keyword into a Mode.
// Accepted keywords: "read", "open" or "update" (open-existing), "recreate".
// Anything else is an INVALID_MODE error.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "read":
		return ModeRead, nil
	case "open", "update":
		return ModeUpdate, nil
	case "recreate":
		return ModeRecreate, nil
	default:
		return 0, errors.New(errors.ErrCodeInvalidMode, "unknown open mode: %q", s)
	}
}

// Info describes a stored object without loading its payload.
type Info struct {
	Name      string
	Kind      string
	Size      int
	UpdatedAt time.Time
}

// Container is an open handle to a container file.
// A Container is not safe for concurrent use by multiple goroutines.
type Container struct {
	path string
	mode Mode

	db       *sql.DB
	fileLock *flock.Flock
	release  func() // in-process path lock release

	mu            sync.Mutex
	closed        bool
	openedAt      time.Time
	handles       []*Handle
	detachDefault bool
}

// OpenOption configures how a container is opened.
type OpenOption func(*openConfig)

type openConfig struct {
	detachHandles bool
}

// WithDetachedHandles makes every handle issued by Get default to independent
// ownership, so objects read from this container stay usable after it closes.
func WithDetachedHandles() OpenOption {
	return func(c *openConfig) { c.detachHandles = true }
}

// Open opens the container at path with the given mode, blocking until any
// concurrent holder of the same path has released it.
//
// ModeRead and ModeUpdate require the file to exist; ModeRecreate truncates
// or creates it. On failure nothing is left open and no close is required.
func Open(ctx context.Context, path string, mode Mode, opts ...OpenOption) (*Container, error) {
	return open(ctx, path, mode, false, opts...)
}

// TryOpen is like Open but does not wait for the path to become free.
// It returns a LOCKED error if another container currently holds the path.
func TryOpen(ctx context.Context, path string, mode Mode, opts ...OpenOption) (*Container, error) {
	return open(ctx, path, mode, true, opts...)
}

func open(ctx context.Context, path string, mode Mode, nonblock bool, opts ...OpenOption) (*Container, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "container path cannot be empty")
	}
	switch mode {
	case ModeRead, ModeUpdate, ModeRecreate:
	default:
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown open mode: %d", mode)
	}

	var cfg openConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	path = filepath.Clean(path)

	if mode == ModeRead || mode == ModeUpdate {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeFileNotFound, "container %s does not exist", path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat container %s", path)
		}
	}

	release, fileLock, err := lockPath(ctx, path, nonblock)
	if err != nil {
		return nil, err
	}

	if mode == ModeRecreate {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			unlockPath(release, fileLock)
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "recreate container %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		unlockPath(release, fileLock)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open container %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		unlockPath(release, fileLock)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open container %s", path)
	}

	if mode != ModeRead {
		if err := ensureSchema(ctx, db); err != nil {
			_ = db.Close()
			unlockPath(release, fileLock)
			return nil, err
		}
	}

	c := &Container{
		path:          path,
		mode:          mode,
		db:            db,
		fileLock:      fileLock,
		release:       release,
		openedAt:      time.Now(),
		detachDefault: cfg.detachHandles,
	}

	observability.Store().OnOpen(ctx, path, mode.String())
	return c, nil
}

// Path returns the container's file path.
func (c *Container) Path() string { return c.path }

// Mode returns the mode the container was opened with.
func (c *Container) Mode() Mode { return c.mode }

// Close closes the container, releases the path locks, and invalidates every
// non-detached handle issued by Get. Closing an already-closed container
// returns a CLOSED error.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New(errors.ErrCodeClosed, "container %s already closed", c.path)
	}
	c.closed = true
	handles := c.handles
	c.handles = nil
	c.mu.Unlock()

	for _, h := range handles {
		h.invalidate()
	}

	err := c.db.Close()
	unlockPath(c.release, c.fileLock)

	held := time.Since(c.openedAt)
	if err != nil {
		werr := errors.Wrap(errors.ErrCodeStorage, err, "close container %s", c.path)
		observability.Store().OnClose(context.Background(), c.path, held, werr)
		return werr
	}
	observability.Store().OnClose(context.Background(), c.path, held, nil)
	return nil
}

// Put stores v under name, replacing any previous object with that name.
// The payload is encoded as JSON; the stored kind is derived from v's type.
func (c *Container) Put(ctx context.Context, name string, v any) error {
	if err := errors.ValidateObjectName(name); err != nil {
		return err
	}
	if err := c.writable(); err != nil {
		return err
	}

	kind, data, err := encodeObject(v)
	if err != nil {
		return err
	}
	return c.putRaw(ctx, name, kind, data)
}

// Get loads the object stored under name and returns a handle to it.
// The handle is owned by this container unless the container was opened with
// WithDetachedHandles; see Handle.Detach for per-handle promotion.
func (c *Container) Get(ctx context.Context, name string) (*Handle, error) {
	if err := c.open(); err != nil {
		return nil, err
	}

	kind, data, err := c.getRaw(ctx, name)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		owner:    c,
		name:     name,
		kind:     kind,
		data:     data,
		detached: c.detachDefault,
	}
	if !h.detached {
		c.mu.Lock()
		c.handles = append(c.handles, h)
		c.mu.Unlock()
	}
	return h, nil
}

// Delete removes the object stored under name.
// Deleting a name that does not exist is not an error.
func (c *Container) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateObjectName(name); err != nil {
		return err
	}
	if err := c.writable(); err != nil {
		return err
	}
	return c.deleteRaw(ctx, name)
}

// List returns metadata for every stored object, ordered by name.
func (c *Container) List(ctx context.Context) ([]Info, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	return c.listRaw(ctx)
}

// open reports an error if the container has been closed.
func (c *Container) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New(errors.ErrCodeClosed, "container %s is closed", c.path)
	}
	return nil
}

// writable reports an error if the container is closed or read-only.
func (c *Container) writable() error {
	if err := c.open(); err != nil {
		return err
	}
	if c.mode == ModeRead {
		return errors.New(errors.ErrCodeUnsupported, "container %s is opened read-only", c.path)
	}
	return nil
}

// forget removes a detached handle from the invalidation list.
func (c *Container) forget(h *Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, reg := range c.handles {
		if reg == h {
			c.handles = append(c.handles[:i], c.handles[i+1:]...)
			return
		}
	}
}
