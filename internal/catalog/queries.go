package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, kind, path, mime_type, display_name, size, width, height,
	duration_ms, date_taken_ms, date_added, date_modified, album_id, album_title`

// kindFilter builds the WHERE clause selecting any of kinds. An empty slice
// matches nothing.
func kindFilter(kinds []Kind) (string, []interface{}) {
	if len(kinds) == 0 {
		return "0", nil
	}
	placeholders := make([]string, len(kinds))
	args := make([]interface{}, len(kinds))
	for i, k := range kinds {
		placeholders[i] = "kind = ?"
		args[i] = string(k)
	}
	return "(" + strings.Join(placeholders, " OR ") + ")", args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var kind string
	var mimeType, displayName, albumID, albumTitle sql.NullString

	err := row.Scan(
		&rec.ID, &kind, &rec.Path, &mimeType, &displayName,
		&rec.ByteSize, &rec.Width, &rec.Height,
		&rec.DurationMillis, &rec.DateTakenMillis, &rec.DateAddedSeconds, &rec.DateModifiedSeconds,
		&albumID, &albumTitle,
	)
	if err != nil {
		return Record{}, err
	}

	rec.Kind = Kind(kind)
	rec.MimeType = mimeType.String
	rec.DisplayName = displayName.String
	rec.AlbumID = albumID.String
	rec.AlbumTitle = albumTitle.String
	return rec, nil
}

// Count returns the number of records whose kind is in kinds.
func (s *Store) Count(ctx context.Context, kinds []Kind) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count", start, err) }()

	where, args := kindFilter(kinds)

	var count int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return count, nil
}

// Query streams records whose kind is in kinds, newest added first, to fn.
// When page is non-nil its offset and limit are applied by SQLite. An error
// from fn stops the iteration and is returned as is.
func (s *Store) Query(ctx context.Context, kinds []Kind, page *Page, fn func(Record) error) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("query", start, err) }()

	where, args := kindFilter(kinds)
	query := "SELECT " + recordColumns + " FROM media WHERE " + where + " ORDER BY date_added DESC, id DESC"
	if page != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, page.Limit, page.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("select query failed: %w", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		rec, err = scanRecord(rows)
		if err != nil {
			err = fmt.Errorf("scan failed: %w", err)
			return err
		}
		if err = fn(rec); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		err = fmt.Errorf("rows error: %w", err)
		return err
	}
	return nil
}

// FindByID returns the record with the given native id and kind, or nil if
// there is none.
func (s *Store) FindByID(ctx context.Context, kind Kind, id int64) (*Record, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("find_by_id", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM media WHERE id = ? AND kind = ?", id, string(kind))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		err = fmt.Errorf("lookup of %s:%d failed: %w", kind, id, err)
		return nil, err
	}
	return &rec, nil
}

// AlbumBuckets returns the album membership of every record of the given
// kind that belongs to an album, one entry per record.
func (s *Store) AlbumBuckets(ctx context.Context, kind Kind) ([]Bucket, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("album_buckets", start, err) }()

	rows, err := s.db.QueryContext(ctx,
		"SELECT album_id, album_title FROM media WHERE kind = ? AND album_id IS NOT NULL", string(kind))
	if err != nil {
		err = fmt.Errorf("album query failed: %w", err)
		return nil, err
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var id string
		var title sql.NullString
		if err = rows.Scan(&id, &title); err != nil {
			err = fmt.Errorf("album scan failed: %w", err)
			return nil, err
		}
		buckets = append(buckets, Bucket{ID: id, Title: title.String})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Stats returns per-kind and album counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("stats", start, err) }()

	var st Stats
	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'image' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'video' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT album_id)
		FROM media
	`).Scan(&st.Images, &st.Videos, &st.Albums)
	if err != nil {
		return Stats{}, fmt.Errorf("stats query failed: %w", err)
	}
	return st, nil
}
