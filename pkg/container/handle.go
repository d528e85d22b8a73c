package container

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/observability"
)

// Handle is a reference to an object loaded from a container.
//
// A handle carries its payload in memory, but access to the payload is gated
// by ownership: a handle owned by its container becomes invalid when the
// container closes, and Decode / Bytes then fail with a RELEASED error.
// Detach promotes the handle to independent ownership so it survives the
// container.
type Handle struct {
	owner *Container
	name  string
	kind  string
	data  []byte

	mu       sync.Mutex
	detached bool
	released bool
}

// Name returns the name the object is stored under.
// Identity metadata stays readable after release.
func (h *Handle) Name() string { return h.name }

// Kind returns the stored type label of the object.
func (h *Handle) Kind() string { return h.kind }

// Detached reports whether the handle owns its payload independently of the
// container that produced it.
func (h *Handle) Detached() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.detached
}

// Detach promotes the handle to independent ownership. After Detach the
// payload stays accessible for the life of the handle, regardless of the
// owning container. Detaching an already-released handle is an error: the
// payload was invalidated when the container closed.
func (h *Handle) Detach() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return errors.New(errors.ErrCodeReleased, "object %q already released by container close", h.name)
	}
	if h.detached {
		h.mu.Unlock()
		return nil
	}
	h.detached = true
	h.mu.Unlock()

	h.owner.forget(h)
	observability.Store().OnDetach(context.Background(), h.owner.path, h.name)
	return nil
}

// Decode unmarshals the object payload into v.
func (h *Handle) Decode(v any) error {
	data, err := h.payload()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode object %q as %s", h.name, h.kind)
	}
	return nil
}

// Bytes returns the raw encoded payload.
func (h *Handle) Bytes() ([]byte, error) {
	return h.payload()
}

func (h *Handle) payload() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released && !h.detached {
		return nil, errors.New(errors.ErrCodeReleased,
			"object %q used after container %s was closed (detach the handle to keep it alive)",
			h.name, h.owner.path)
	}
	return h.data, nil
}

// invalidate marks the handle released. Called by Container.Close for every
// handle that was not detached.
func (h *Handle) invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released = true
}

// encodeObject serializes v and derives its kind label from the Go type.
func encodeObject(v any) (kind string, data []byte, err error) {
	data, err = json.Marshal(v)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "encode object")
	}
	return kindOf(v), data, nil
}

// kindOf returns a stable type label for a stored value, e.g. "plot.Histogram".
func kindOf(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "nil"
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.String()
}
