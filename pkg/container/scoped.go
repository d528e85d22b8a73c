package container

import "context"

// With opens the container at path, invokes fn with it, and closes it exactly
// once on every exit path, including a panic inside fn (the panic is
// propagated after the container is closed). If the open itself fails, the
// error is returned and no close is attempted.
//
// fn's error is returned as-is; a close failure is only surfaced when fn
// succeeded, so the original failure is never masked.
//
//	err := container.With(ctx, "run.plot", container.ModeRecreate,
//	    func(ctx context.Context, c *container.Container) error {
//	        return c.Put(ctx, "hits", hist)
//	    })
func With(ctx context.Context, path string, mode Mode, fn func(ctx context.Context, c *Container) error, opts ...OpenOption) (err error) {
	c, err := Open(ctx, path, mode, opts...)
	if err != nil {
		return err
	}
	defer func() {
		cerr := c.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(ctx, c)
}

// TryWith is the non-blocking variant of With: it fails with a LOCKED error
// instead of waiting when another holder has the path.
func TryWith(ctx context.Context, path string, mode Mode, fn func(ctx context.Context, c *Container) error, opts ...OpenOption) (err error) {
	c, err := TryOpen(ctx, path, mode, opts...)
	if err != nil {
		return err
	}
	defer func() {
		cerr := c.Close()
		if err == nil {
			err = cerr
		}
	}()
	return fn(ctx, c)
}
