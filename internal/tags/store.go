// Package tags stores named tag records (name, content, owner) in SQLite.
package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scubot/tagbot/internal/sqlutil"
)

var (
	// ErrTagNotFound indicates no tag has the requested name.
	ErrTagNotFound = errors.New("tags: tag not found")
	// ErrTagExists indicates a tag with the name already exists.
	ErrTagExists = errors.New("tags: tag already exists")
)

// Tag is one stored record.
type Tag struct {
	Name      string    `yaml:"name" json:"name"`
	Content   string    `yaml:"content" json:"content"`
	OwnerID   string    `yaml:"owner_id" json:"owner_id"`
	OwnerName string    `yaml:"owner_name,omitempty" json:"owner_name,omitempty"`
	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty" json:"updated_at"`
}

// Store is the SQLite handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	name       TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	owner_id   TEXT NOT NULL,
	owner_name TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_owner ON tags(owner_id);
`

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT name, content, owner_id, owner_name, created_at, updated_at FROM tags`

func scanTag(row interface{ Scan(...any) error }) (Tag, error) {
	var t Tag
	var created, updated int64
	if err := row.Scan(&t.Name, &t.Content, &t.OwnerID, &t.OwnerName, &created, &updated); err != nil {
		return Tag{}, err
	}
	t.CreatedAt = time.Unix(created, 0).UTC()
	t.UpdatedAt = time.Unix(updated, 0).UTC()
	return t, nil
}

func scanRows(rows *sql.Rows) (Tag, error) {
	return scanTag(rows)
}

// Get returns the tag called name.
func (s *Store) Get(ctx context.Context, name string) (Tag, error) {
	t, err := scanTag(s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Tag{}, fmt.Errorf("%w: %s", ErrTagNotFound, name)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("failed to get tag %s: %w", name, err)
	}
	return t, nil
}

// GetMany returns the tags among names that exist, keyed by name.
func (s *Store) GetMany(ctx context.Context, names []string) (map[string]Tag, error) {
	placeholders, args := sqlutil.InClauseArgs(names)
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE name IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	found, err := sqlutil.ScanRows(rows, scanRows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}

	out := make(map[string]Tag, len(found))
	for _, t := range found {
		out[t.Name] = t
	}
	return out, nil
}

// Create inserts a new tag. Timestamps are set by the store.
func (s *Store) Create(ctx context.Context, t Tag) error {
	now := s.now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (name, content, owner_id, owner_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Content, t.OwnerID, t.OwnerName, now, now)
	if err != nil {
		if sqlutil.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrTagExists, t.Name)
		}
		return fmt.Errorf("failed to create tag %s: %w", t.Name, err)
	}
	return nil
}

// UpdateContent replaces the content of an existing tag.
func (s *Store) UpdateContent(ctx context.Context, name, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tags SET content = ?, updated_at = ? WHERE name = ?`,
		content, s.now().Unix(), name)
	if err != nil {
		return fmt.Errorf("failed to update tag %s: %w", name, err)
	}
	return requireAffected(res, name)
}

// Remove deletes a tag.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to remove tag %s: %w", name, err)
	}
	return requireAffected(res, name)
}

// List returns up to limit tags ordered by name, skipping offset. A
// non-positive limit returns every tag after offset.
func (s *Store) List(ctx context.Context, offset, limit int) ([]Tag, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return sqlutil.ScanRows(rows, scanRows)
}

// Count returns the number of stored tags.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return n, nil
}

// Import inserts tags in one transaction. Existing tags are skipped unless
// overwrite is set, in which case their content and owner are replaced.
// It returns the number of tags written.
func (s *Store) Import(ctx context.Context, tags []Tag, overwrite bool) (int, error) {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	existing, err := s.GetMany(ctx, names)
	if err != nil {
		return 0, err
	}

	now := s.now().Unix()
	written := 0
	err = sqlutil.InTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, t := range tags {
			if strings.TrimSpace(t.Name) == "" {
				return fmt.Errorf("import: tag with empty name")
			}
			created := now
			if !t.CreatedAt.IsZero() {
				created = t.CreatedAt.Unix()
			}

			var err error
			if _, ok := existing[t.Name]; ok {
				if !overwrite {
					continue
				}
				_, err = tx.ExecContext(ctx,
					`UPDATE tags SET content = ?, owner_id = ?, owner_name = ?, updated_at = ? WHERE name = ?`,
					t.Content, t.OwnerID, t.OwnerName, now, t.Name)
			} else {
				_, err = tx.ExecContext(ctx,
					`INSERT INTO tags (name, content, owner_id, owner_name, created_at, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					t.Name, t.Content, t.OwnerID, t.OwnerName, created, now)
				existing[t.Name] = t
			}
			if err != nil {
				return fmt.Errorf("failed to import tag %s: %w", t.Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func requireAffected(res sql.Result, name string) error {
	err := sqlutil.RequireAffected(res)
	if errors.Is(err, sqlutil.ErrNoRowsAffected) {
		return fmt.Errorf("%w: %s", ErrTagNotFound, name)
	}
	return err
}
