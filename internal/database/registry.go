package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhony-23/WebVideoA/internal/mediatypes"
)

// Registry operation errors.
var (
	// ErrNotFound indicates no media item exists with the given ID.
	ErrNotFound = errors.New("media item not found")
	// ErrConflict indicates a conditional transition did not apply
	// because the item was not in the required status.
	ErrConflict = errors.New("media item not in required status")
)

const itemColumns = `id, title, source_path, media_type, status, output_dir,
	qualities, duration, width, height, error_message, uploaded_at, updated_at`

// Create inserts a new media item with status pending.
func (d *Database) Create(ctx context.Context, item *MediaItem) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_item", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	qualities, err := json.Marshal(item.Qualities)
	if err != nil {
		return fmt.Errorf("failed to encode qualities: %w", err)
	}

	now := time.Now()
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO media_items (id, title, source_path, media_type, status,
			output_dir, qualities, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.SourcePath, string(item.MediaType),
		string(StatusPending), item.OutputDir, string(qualities),
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create media item: %w", err)
	}

	item.Status = StatusPending
	item.UploadedAt = now
	item.UpdatedAt = now
	return nil
}

// Get retrieves a media item by ID.
func (d *Database) Get(ctx context.Context, id string) (*MediaItem, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_item", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM media_items WHERE id = ?`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return nil, err
	}
	return item, err
}

// List returns all media items, oldest upload first.
func (d *Database) List(ctx context.Context) ([]*MediaItem, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_items", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM media_items ORDER BY uploaded_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*MediaItem{}
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		items = append(items, item)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ClaimNextPending atomically claims the oldest pending item by
// flipping it to processing. The claim is a conditional update verified
// by rows affected, so concurrent workers never claim the same item.
// Returns (nil, nil) when no pending item exists.
func (d *Database) ClaimNextPending(ctx context.Context) (*MediaItem, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("claim_next_pending", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Bounded retries: losing a claim race means another worker took
	// the row, so look for the next candidate.
	for attempt := 0; attempt < 3; attempt++ {
		var id string
		err = d.db.QueryRowContext(ctx, `
			SELECT id FROM media_items
			WHERE status = ?
			ORDER BY uploaded_at ASC, id ASC
			LIMIT 1`, string(StatusPending)).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		result, execErr := d.db.ExecContext(ctx, `
			UPDATE media_items
			SET status = ?, updated_at = ?
			WHERE id = ? AND status = ?`,
			string(StatusProcessing), time.Now().Unix(), id, string(StatusPending))
		if execErr != nil {
			err = execErr
			return nil, err
		}

		rows, raErr := result.RowsAffected()
		if raErr != nil {
			err = raErr
			return nil, err
		}
		if rows == 1 {
			return d.Get(ctx, id)
		}
		// Lost the race; try the next pending item.
	}

	return nil, nil
}

// UpdateResult writes the outcome of a processing run in a single
// statement.
func (d *Database) UpdateResult(ctx context.Context, id string, upd ResultUpdate) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_result", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	qualities, err := json.Marshal(upd.Qualities)
	if err != nil {
		return fmt.Errorf("failed to encode qualities: %w", err)
	}

	result, err := d.db.ExecContext(ctx, `
		UPDATE media_items
		SET status = ?, qualities = ?, output_dir = ?, duration = ?,
			width = ?, height = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		string(upd.Status), string(qualities), upd.OutputDir, upd.Duration,
		upd.Width, upd.Height, upd.ErrorMessage, time.Now().Unix(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// Requeue transitions a failed item back to pending. Returns
// ErrConflict if the item is not failed.
func (d *Database) Requeue(ctx context.Context, id string) error {
	return d.conditionalTransition(ctx, "requeue", id, StatusFailed, StatusPending)
}

// Reprocess forces a ready item back to pending so the scheduler picks
// it up again. Returns ErrConflict if the item is not ready.
func (d *Database) Reprocess(ctx context.Context, id string) error {
	return d.conditionalTransition(ctx, "reprocess", id, StatusReady, StatusPending)
}

func (d *Database) conditionalTransition(ctx context.Context, op, id string, from, to Status) error {
	start := time.Now()
	var err error
	defer func() { recordQuery(op, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx, `
		UPDATE media_items
		SET status = ?, error_message = '', updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), time.Now().Unix(), id, string(from))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing item from a wrong-status item.
		if _, getErr := d.Get(ctx, id); errors.Is(getErr, ErrNotFound) {
			err = ErrNotFound
		} else {
			err = ErrConflict
		}
		return err
	}
	return nil
}

// Delete removes a media item and returns the deleted record so the
// caller can purge its source file and output directory.
func (d *Database) Delete(ctx context.Context, id string) (*MediaItem, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_item", start, err) }()

	item, err := d.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CountPending returns the number of items waiting to be processed.
func (d *Database) CountPending(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("count_pending", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_items WHERE status = ?`,
		string(StatusPending)).Scan(&count)
	return count, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(s scanner) (*MediaItem, error) {
	var item MediaItem
	var mediaType, status, qualities string
	var uploadedAt, updatedAt int64

	err := s.Scan(
		&item.ID, &item.Title, &item.SourcePath, &mediaType, &status,
		&item.OutputDir, &qualities, &item.Duration, &item.Width,
		&item.Height, &item.ErrorMessage, &uploadedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.MediaType = mediatypes.MediaType(mediaType)
	item.Status = Status(status)
	item.UploadedAt = time.Unix(uploadedAt, 0)
	item.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(qualities), &item.Qualities); err != nil {
		return nil, fmt.Errorf("failed to decode qualities for %s: %w", item.ID, err)
	}
	return &item, nil
}
