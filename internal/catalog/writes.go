package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Batch is a write transaction used by the indexer. Reads issued through the
// Store are not blocked by an open batch.
type Batch struct {
	tx    *sql.Tx
	store *Store
	start time.Time
}

// BeginBatch starts a write transaction. Only one batch runs at a time; the
// caller must finish it with End.
func (s *Store) BeginBatch(ctx context.Context) (*Batch, error) {
	s.mu.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to begin batch: %w", err)
	}
	return &Batch{tx: tx, store: s, start: time.Now()}, nil
}

// End commits the batch, or rolls it back when err is non-nil.
func (b *Batch) End(err error) error {
	defer b.store.mu.Unlock()

	if err != nil {
		if rbErr := b.tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return b.tx.Commit()
}

// Upsert inserts rec or updates the row with the same path. DateAddedSeconds
// is only written on insert so that re-indexing keeps the listing order
// stable; seenAt marks the row as present for DeleteMissing.
func (b *Batch) Upsert(ctx context.Context, rec Record, seenAt time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert", start, err) }()

	dateAdded := rec.DateAddedSeconds
	if dateAdded <= 0 {
		dateAdded = seenAt.Unix()
	}

	query := `
	INSERT INTO media (path, kind, mime_type, display_name, size, width, height,
		duration_ms, date_taken_ms, date_added, date_modified, album_id, album_title, seen_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		kind = excluded.kind,
		mime_type = excluded.mime_type,
		display_name = excluded.display_name,
		size = excluded.size,
		width = excluded.width,
		height = excluded.height,
		duration_ms = excluded.duration_ms,
		date_taken_ms = excluded.date_taken_ms,
		date_modified = excluded.date_modified,
		album_id = excluded.album_id,
		album_title = excluded.album_title,
		seen_at = excluded.seen_at
	`

	_, err = b.tx.ExecContext(ctx, query,
		rec.Path,
		string(rec.Kind),
		nullString(rec.MimeType),
		nullString(rec.DisplayName),
		rec.ByteSize,
		rec.Width,
		rec.Height,
		rec.DurationMillis,
		rec.DateTakenMillis,
		dateAdded,
		rec.DateModifiedSeconds,
		nullString(rec.AlbumID),
		nullString(rec.AlbumTitle),
		seenAt.UnixNano(),
	)
	if err != nil {
		err = fmt.Errorf("upsert %s failed: %w", rec.Path, err)
		return 0, err
	}

	var id int64
	err = b.tx.QueryRowContext(ctx, "SELECT id FROM media WHERE path = ?", rec.Path).Scan(&id)
	if err != nil {
		err = fmt.Errorf("id lookup for %s failed: %w", rec.Path, err)
		return 0, err
	}
	return id, nil
}

// DeleteMissing removes records that were not seen since cutoff.
func (b *Batch) DeleteMissing(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_missing", start, err) }()

	result, err := b.tx.ExecContext(ctx, "DELETE FROM media WHERE seen_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
