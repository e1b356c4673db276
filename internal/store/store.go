// Package store implements durable, deduplicated persistence of clipboard
// entries in a local SQLite database, with derived tag and metadata index
// tables, retention cleanup, statistics and import/export.
//
// The engine serialises writers internally (one committing transaction at
// a time) while permitting concurrent readers. Every write that touches
// more than one table runs in a transaction; a failed commit leaves prior
// state unchanged.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Ukiyograin/clipboard-master/internal/entry"
)

// ErrStorage marks engine-level failures: open, transaction or disk I/O
// errors. The in-flight operation is aborted; prior state is unchanged.
var ErrStorage = errors.New("storage error")

// ErrDataIntegrity marks a stored row that fails to deserialise. It is
// scoped to that row: bulk reads log and skip such rows.
var ErrDataIntegrity = errors.New("data integrity error")

// ErrNotFound is returned when the requested entry does not exist.
var ErrNotFound = errors.New("entry not found")

// DedupWindow is the near-duplicate interval: two saves sharing a preview
// text within this window fold into one stored entry. OS clipboard APIs
// frequently fire several change notifications for one user action.
const DedupWindow = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	content_json TEXT NOT NULL,
	captured_at INTEGER NOT NULL,
	tags_json TEXT NOT NULL DEFAULT '[]',
	favorite INTEGER NOT NULL DEFAULT 0,
	pinned INTEGER NOT NULL DEFAULT 0,
	source_app TEXT,
	source_window TEXT,
	preview_text TEXT NOT NULL,
	preview_image BLOB,
	metadata_json TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	access_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS entry_tags (
	entry_id TEXT NOT NULL,
	tag TEXT NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	PRIMARY KEY (entry_id, tag),
	FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS entry_metadata (
	entry_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (entry_id, key),
	FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	searched_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
	result_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_captured_at ON entries(captured_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_favorite ON entries(favorite) WHERE favorite = 1;
CREATE INDEX IF NOT EXISTS idx_entries_pinned ON entries(pinned) WHERE pinned = 1;
CREATE INDEX IF NOT EXISTS idx_entries_content_type ON entries(content_type);
CREATE INDEX IF NOT EXISTS idx_entries_preview ON entries(preview_text);
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_app);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON entry_tags(tag);
CREATE INDEX IF NOT EXISTS idx_metadata_key ON entry_metadata(key, value);
CREATE INDEX IF NOT EXISTS idx_search_history ON search_history(searched_at DESC);
`

// Store wraps the SQLite database holding all clipboard entries.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed, applies
// pragmas and the schema, and returns a ready Store.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating db directory: %v", ErrStorage, err)
		}
	}

	// Pragmas go in the DSN so the driver applies them to every pooled
	// connection. foreign_keys in particular is per-connection state;
	// a one-off PRAGMA statement would leave cascade deletes broken on
	// any connection the pool opens later.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorage, path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", ErrStorage, err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists e unless a near-duplicate exists: an entry with the same
// preview text captured within DedupWindow of now. It reports whether a
// row was actually inserted; a folded duplicate is a successful no-op.
func (s *Store) Save(ctx context.Context, e *entry.Entry) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%w: begin save: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	cutoff := time.Now().Add(-DedupWindow).Unix()
	var dup int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM entries WHERE preview_text = ? AND captured_at > ? LIMIT 1`,
		e.PreviewText, cutoff,
	).Scan(&dup)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("%w: dedup check: %v", ErrStorage, err)
	}

	if err := insertEntry(ctx, tx, e); err != nil {
		return false, err
	}
	if err := replaceDerivedRows(ctx, tx, e); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%w: commit save: %v", ErrStorage, err)
	}
	return true, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e *entry.Entry) error {
	contentJSON, tagsJSON, metaJSON, err := encodeEntry(e)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries
		(id, content_type, content_json, captured_at, tags_json, favorite, pinned,
		 source_app, source_window, preview_text, preview_image, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), string(e.Content.Type), contentJSON, e.CapturedAt.Unix(),
		tagsJSON, boolInt(e.Favorite), boolInt(e.Pinned),
		nullable(e.SourceApp), nullable(e.SourceWindow),
		e.PreviewText, e.PreviewImage, metaJSON,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting entry: %v", ErrStorage, err)
	}
	return nil
}

// replaceDerivedRows rewrites the tag and metadata index rows for e.
func replaceDerivedRows(ctx context.Context, tx *sql.Tx, e *entry.Entry) error {
	id := e.ID.String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("%w: clearing tags: %v", ErrStorage, err)
	}
	for _, tag := range e.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag) VALUES (?, ?)`, id, tag); err != nil {
			return fmt.Errorf("%w: inserting tag: %v", ErrStorage, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_metadata WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("%w: clearing metadata: %v", ErrStorage, err)
	}
	for key, value := range e.Metadata {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entry_metadata (entry_id, key, value) VALUES (?, ?, ?)`, id, key, value); err != nil {
			return fmt.Errorf("%w: inserting metadata: %v", ErrStorage, err)
		}
	}
	return nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM entries WHERE id = ?`, id.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// GetRecent returns up to limit entries, newest first.
func (s *Store) GetRecent(ctx context.Context, limit int) ([]*entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` FROM entries ORDER BY captured_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent query: %v", ErrStorage, err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Update rewrites e's row and its derived index rows.
func (s *Store) Update(ctx context.Context, e *entry.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin update: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	contentJSON, tagsJSON, metaJSON, err := encodeEntry(e)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE entries SET
			content_type = ?, content_json = ?, captured_at = ?, tags_json = ?,
			favorite = ?, pinned = ?, source_app = ?, source_window = ?,
			preview_text = ?, preview_image = ?, metadata_json = ?,
			updated_at = strftime('%s', 'now')
		WHERE id = ?`,
		string(e.Content.Type), contentJSON, e.CapturedAt.Unix(), tagsJSON,
		boolInt(e.Favorite), boolInt(e.Pinned),
		nullable(e.SourceApp), nullable(e.SourceWindow),
		e.PreviewText, e.PreviewImage, metaJSON, e.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("%w: updating entry: %v", ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := replaceDerivedRows(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit update: %v", ErrStorage, err)
	}
	return nil
}

// Delete removes the entry; tag and metadata rows cascade.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: deleting entry: %v", ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFavorite flips the favorite flag on one entry.
func (s *Store) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	return s.setFlag(ctx, id, "favorite", favorite)
}

// SetPinned flips the pinned flag on one entry.
func (s *Store) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return s.setFlag(ctx, id, "pinned", pinned)
}

func (s *Store) setFlag(ctx context.Context, id uuid.UUID, column string, value bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET `+column+` = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		boolInt(value), id.String())
	if err != nil {
		return fmt.Errorf("%w: setting %s: %v", ErrStorage, column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddTags attaches tags to an entry. Adding a tag it already has is a
// no-op; order of existing tags is preserved.
func (s *Store) AddTags(ctx context.Context, id uuid.UUID, tags ...string) error {
	return s.mutateTags(ctx, id, func(e *entry.Entry) { e.AddTags(tags...) })
}

// RemoveTags detaches tags from an entry. Removing an absent tag is a
// no-op.
func (s *Store) RemoveTags(ctx context.Context, id uuid.UUID, tags ...string) error {
	return s.mutateTags(ctx, id, func(e *entry.Entry) { e.RemoveTags(tags...) })
}

func (s *Store) mutateTags(ctx context.Context, id uuid.UUID, mutate func(*entry.Entry)) error {
	e, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(e)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tag update: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("%w: encoding tags: %v", ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE entries SET tags_json = ?, updated_at = strftime('%s', 'now') WHERE id = ?`,
		string(tagsJSON), id.String()); err != nil {
		return fmt.Errorf("%w: updating tags: %v", ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, id.String()); err != nil {
		return fmt.Errorf("%w: clearing tags: %v", ErrStorage, err)
	}
	for _, tag := range e.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entry_tags (entry_id, tag) VALUES (?, ?)`, id.String(), tag); err != nil {
			return fmt.Errorf("%w: inserting tag: %v", ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tag update: %v", ErrStorage, err)
	}
	return nil
}

// Touch increments an entry's access counter.
func (s *Store) Touch(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET access_count = access_count + 1 WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: touching entry: %v", ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectColumns = `SELECT id, content_json, captured_at, tags_json, favorite, pinned,
	source_app, source_window, preview_text, preview_image, metadata_json`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*entry.Entry, error) {
	var (
		idStr, contentJSON, tagsJSON, metaJSON string
		capturedAt                             int64
		favorite, pinned                       int
		sourceApp, sourceWindow                sql.NullString
		preview                                string
		previewImage                           []byte
	)
	if err := row.Scan(&idStr, &contentJSON, &capturedAt, &tagsJSON, &favorite, &pinned,
		&sourceApp, &sourceWindow, &preview, &previewImage, &metaJSON); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s: bad id: %v", ErrDataIntegrity, idStr, err)
	}
	var e entry.Entry
	e.ID = id
	if err := json.Unmarshal([]byte(contentJSON), &e.Content); err != nil {
		return nil, fmt.Errorf("%w: entry %s: content: %v", ErrDataIntegrity, idStr, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("%w: entry %s: tags: %v", ErrDataIntegrity, idStr, err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &e.Metadata); err != nil {
		return nil, fmt.Errorf("%w: entry %s: metadata: %v", ErrDataIntegrity, idStr, err)
	}
	e.CapturedAt = time.Unix(capturedAt, 0).UTC()
	e.Favorite = favorite != 0
	e.Pinned = pinned != 0
	e.SourceApp = sourceApp.String
	e.SourceWindow = sourceWindow.String
	e.PreviewText = preview
	e.PreviewImage = previewImage
	return &e, nil
}

// collectEntries drains rows, skipping rows that fail to deserialise. A
// bad row is a per-row integrity problem, not a reason to fail the query.
func collectEntries(rows *sql.Rows) ([]*entry.Entry, error) {
	var out []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			if errors.Is(err, ErrDataIntegrity) {
				slog.Warn("skipping undecodable entry", "err", err)
				continue
			}
			return nil, fmt.Errorf("%w: scanning entry: %v", ErrStorage, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %v", ErrStorage, err)
	}
	return out, nil
}

func encodeEntry(e *entry.Entry) (contentJSON, tagsJSON, metaJSON string, err error) {
	c, err := json.Marshal(e.Content)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: encoding content: %v", ErrStorage, err)
	}
	t, err := json.Marshal(e.Tags)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: encoding tags: %v", ErrStorage, err)
	}
	meta := e.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	m, err := json.Marshal(meta)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: encoding metadata: %v", ErrStorage, err)
	}
	return string(c), string(t), string(m), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
