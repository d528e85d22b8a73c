package container

import (
	"context"
	"database/sql"
	"time"

	"github.com/plotkit/plotkit/pkg/errors"
)

// Containers are SQLite files with a single objects table. The schema is
// versioned through user_version so future layouts can migrate in place.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS objects (
	name       TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create objects table")
	}

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "read schema version")
	}
	if version == 0 {
		if _, err := db.ExecContext(ctx, "PRAGMA user_version = 1"); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "set schema version")
		}
		version = 1
	}
	if version != schemaVersion {
		return errors.New(errors.ErrCodeStorage, "unsupported container schema version %d", version)
	}
	return nil
}

func (c *Container) putRaw(ctx context.Context, name, kind string, data []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO objects (name, kind, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, data = excluded.data, updated_at = excluded.updated_at`,
		name, kind, data, time.Now().UTC().UnixMilli())
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store object %q in %s", name, c.path)
	}
	return nil
}

func (c *Container) getRaw(ctx context.Context, name string) (kind string, data []byte, err error) {
	row := c.db.QueryRowContext(ctx, "SELECT kind, data FROM objects WHERE name = ?", name)
	if err := row.Scan(&kind, &data); err != nil {
		if err == sql.ErrNoRows {
			return "", nil, errors.New(errors.ErrCodeObjectNotFound, "object %q not found in %s", name, c.path)
		}
		return "", nil, errors.Wrap(errors.ErrCodeStorage, err, "load object %q from %s", name, c.path)
	}
	return kind, data, nil
}

func (c *Container) deleteRaw(ctx context.Context, name string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM objects WHERE name = ?", name); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete object %q from %s", name, c.path)
	}
	return nil
}

func (c *Container) listRaw(ctx context.Context) ([]Info, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT name, kind, length(data), updated_at FROM objects ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list objects in %s", c.path)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var updated int64
		if err := rows.Scan(&info.Name, &info.Kind, &info.Size, &updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan object row")
		}
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list objects in %s", c.path)
	}
	return infos, nil
}
