// Package database persists clipboard history in SQLite. It owns the
// dedup upsert path, retention, and the full-text search surface.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/classify"
)

var (
	// ErrNotFound reports a lookup for an entry id that does not exist.
	ErrNotFound = errors.New("entry not found")
	// ErrStorage wraps database-level failures so callers can tell them
	// apart from not-found conditions.
	ErrStorage = errors.New("storage failure")
)

// Repository stores clipboard entries. Mutations are serialized through a
// single writer lock; reads run concurrently against the WAL.
type Repository struct {
	db         *bun.DB
	artifacts  *artifact.Store
	logger     *slog.Logger
	maxEntries int

	// mu serializes mutations: the dedup check and the following write
	// must observe the store atomically.
	mu sync.Mutex
}

func NewRepository(dbPath string, artifacts *artifact.Store, maxEntries int, logger *slog.Logger) (*Repository, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	repo := &Repository{
		db:         db,
		artifacts:  artifacts,
		logger:     logger,
		maxEntries: maxEntries,
	}

	if err := repo.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	ctx := context.Background()

	if _, err := r.db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create entries table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_entries_last_seen ON entries(last_seen_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_entries_hash ON entries(hash)",
		"CREATE INDEX IF NOT EXISTS idx_entries_pinned ON entries(pinned)",
		"CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind)",
	}
	for _, idx := range indexes {
		if _, err := r.db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	// External-content FTS index over the display fields. The triggers
	// keep it in step with inserts and deletes; indexed columns are never
	// updated in place, so no update trigger is needed.
	ftsDDL := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			preview, content,
			content='entries', content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS entries_ai AFTER INSERT ON entries BEGIN
			INSERT INTO entries_fts(rowid, preview, content)
			VALUES (new.id, new.preview, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS entries_ad AFTER DELETE ON entries BEGIN
			INSERT INTO entries_fts(entries_fts, rowid, preview, content)
			VALUES ('delete', old.id, old.preview, old.content);
		END`,
	}
	for _, ddl := range ftsDDL {
		if _, err := r.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create fts index: %w", err)
		}
	}

	return nil
}

// evictedRow carries the fields needed to cascade an entry deletion to
// the artifact store.
type evictedRow struct {
	ID   int64         `bun:"id"`
	Hash string        `bun:"hash"`
	Kind classify.Kind `bun:"kind"`
}

// Upsert inserts a new entry or, when an entry with the same hash already
// exists, bumps its recency instead. CreatedAt is preserved on a bump.
// The returned id addresses the surviving row; created reports whether a
// new row was inserted. Inserting may evict the oldest unpinned entries
// to hold the history cap.
func (r *Repository) Upsert(ctx context.Context, entry *Entry) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		id      int64
		created bool
		evicted []evictedRow
	)

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing Entry
		err := tx.NewSelect().
			Model(&existing).
			Column("id").
			Where("hash = ?", entry.Hash).
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			if _, err := tx.NewUpdate().
				Model((*Entry)(nil)).
				Set("last_seen_at = ?", time.Now()).
				Where("id = ?", existing.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("bump entry: %w", err)
			}
			id = existing.ID
			return nil
		case errors.Is(err, sql.ErrNoRows):
			// No duplicate, fall through to insert.
		default:
			return fmt.Errorf("check existing entry: %w", err)
		}

		now := time.Now()
		entry.CreatedAt = now
		entry.LastSeenAt = now
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		id = entry.ID
		created = true

		victims, err := r.evictExcess(ctx, tx)
		if err != nil {
			return err
		}
		evicted = victims
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: upsert: %v", ErrStorage, err)
	}

	r.removeArtifacts(evicted)
	return id, created, nil
}

// evictExcess deletes every unpinned entry beyond the newest maxEntries,
// oldest last. It returns the deleted rows so the caller can cascade to
// the artifact store after commit.
func (r *Repository) evictExcess(ctx context.Context, tx bun.Tx) ([]evictedRow, error) {
	var victims []evictedRow
	err := tx.NewRaw(
		`SELECT id, hash, kind FROM entries
		 WHERE pinned = 0
		 ORDER BY last_seen_at DESC, id DESC
		 LIMIT -1 OFFSET ?`,
		r.maxEntries,
	).Scan(ctx, &victims)
	if err != nil {
		return nil, fmt.Errorf("select eviction window: %w", err)
	}
	if len(victims) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(victims))
	for i, v := range victims {
		ids[i] = v.ID
	}
	if _, err := tx.NewDelete().
		Model((*Entry)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("evict entries: %w", err)
	}
	return victims, nil
}

// removeArtifacts deletes the image files behind evicted rows. Failures
// are logged, not returned: the rows are already gone and the gc sweep
// collects any stragglers.
func (r *Repository) removeArtifacts(rows []evictedRow) {
	for _, row := range rows {
		if row.Kind != classify.KindImage {
			continue
		}
		if err := r.artifacts.Delete(row.Hash); err != nil {
			r.logger.Warn("failed to delete artifact", "hash", row.Hash, "error", err)
		}
	}
}

// Recent returns the newest entries by last seen time.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.NewSelect().
		Model(&entries).
		Order("last_seen_at DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: recent: %v", ErrStorage, err)
	}
	return entries, nil
}

// Search runs a full-text query over previews and content, ranked by
// relevance then recency. An empty query falls back to Recent.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	match := sanitizeMatch(query)
	if match == "" {
		return r.Recent(ctx, limit)
	}

	var entries []*Entry
	err := r.db.NewRaw(
		`SELECT e.* FROM entries e
		 JOIN entries_fts ON entries_fts.rowid = e.id
		 WHERE entries_fts MATCH ?
		 ORDER BY entries_fts.rank, e.last_seen_at DESC, e.id DESC
		 LIMIT ?`,
		match, limit,
	).Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrStorage, err)
	}
	return entries, nil
}

// sanitizeMatch rewrites user input into an FTS5 query that cannot hit
// operator syntax: each token is quoted, embedded quotes doubled.
func sanitizeMatch(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, tok := range fields {
		quoted[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

// Get returns the entry with the given id.
func (r *Repository) Get(ctx context.Context, id int64) (*Entry, error) {
	var entry Entry
	err := r.db.NewSelect().
		Model(&entry).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get entry: %v", ErrStorage, err)
	}
	return &entry, nil
}

// Delete removes an entry and its artifact. Deleting an id that does not
// exist is a no-op.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victims []evictedRow
	err := r.db.NewRaw(
		"SELECT id, hash, kind FROM entries WHERE id = ?", id,
	).Scan(ctx, &victims)
	if err != nil {
		return fmt.Errorf("%w: delete entry: %v", ErrStorage, err)
	}
	if len(victims) == 0 {
		return nil
	}

	if _, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: delete entry: %v", ErrStorage, err)
	}

	r.removeArtifacts(victims)
	return nil
}

// TogglePin flips the pinned flag of an entry. Pinned entries are exempt
// from every retention path.
func (r *Repository) TogglePin(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.NewUpdate().
		Model((*Entry)(nil)).
		Set("pinned = NOT pinned").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: toggle pin: %v", ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneOlderThan deletes unpinned entries last seen before the cutoff and
// returns how many were removed.
func (r *Repository) PruneOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var victims []evictedRow

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewRaw(
			"SELECT id, hash, kind FROM entries WHERE pinned = 0 AND last_seen_at < ?", cutoff,
		).Scan(ctx, &victims)
		if err != nil {
			return fmt.Errorf("select expired entries: %w", err)
		}
		if len(victims) == 0 {
			return nil
		}
		ids := make([]int64, len(victims))
		for i, v := range victims {
			ids[i] = v.ID
		}
		_, err = tx.NewDelete().
			Model((*Entry)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete expired entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: prune: %v", ErrStorage, err)
	}

	r.removeArtifacts(victims)
	return len(victims), nil
}

// ClearAll wipes the history, pinned entries included, and removes every
// image artifact referenced by it.
func (r *Repository) ClearAll(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victims []evictedRow
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewRaw("SELECT id, hash, kind FROM entries").Scan(ctx, &victims)
		if err != nil {
			return fmt.Errorf("select entries: %w", err)
		}
		if len(victims) == 0 {
			return nil
		}
		if _, err := tx.NewDelete().Model((*Entry)(nil)).Where("1=1").Exec(ctx); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: clear: %v", ErrStorage, err)
	}

	r.removeArtifacts(victims)
	return len(victims), nil
}

// Count returns the number of stored entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*Entry)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStorage, err)
	}
	return n, nil
}

// ImageHashes returns the artifact hashes referenced by image entries,
// keyed for membership checks by the gc sweep.
func (r *Repository) ImageHashes(ctx context.Context) (map[string]bool, error) {
	var hashes []string
	err := r.db.NewSelect().
		Model((*Entry)(nil)).
		Column("hash").
		Where("kind = ?", classify.KindImage).
		Scan(ctx, &hashes)
	if err != nil {
		return nil, fmt.Errorf("%w: image hashes: %v", ErrStorage, err)
	}
	referenced := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		referenced[h] = true
	}
	return referenced, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
