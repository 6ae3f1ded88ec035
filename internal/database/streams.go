package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"media-converter/internal/media"
)

// GetOrCreateStream returns the stream record for (assetID, formatID),
// creating it in the preparation state when none exists. The second
// return value reports whether the record was created by this call.
// Concurrent callers racing on the same pair both get the same row;
// the unique constraint guarantees only one insert wins.
func (d *Database) GetOrCreateStream(ctx context.Context, assetID, formatID int64) (*media.StreamRecord, bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_or_create_stream", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.db.ExecContext(ctx, `
		INSERT INTO streams (asset_id, format_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(asset_id, format_id) DO NOTHING`,
		assetID, formatID, time.Now().Unix(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert stream: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	row := d.db.QueryRowContext(ctx, streamSelect+` WHERE asset_id = ? AND format_id = ?`,
		assetID, formatID)
	rec, err := scanStream(row)
	if err != nil {
		return nil, false, err
	}
	return rec, inserted > 0, nil
}

// GetStream fetches a stream record by ID.
func (d *Database) GetStream(ctx context.Context, id int64) (*media.StreamRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_stream", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRowContext(ctx, streamSelect+` WHERE id = ?`, id)
	rec, err := scanStream(row)
	return rec, err
}

// StreamsForAsset returns all stream records for an asset.
func (d *Database) StreamsForAsset(ctx context.Context, assetID int64) ([]*media.StreamRecord, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("streams_for_asset", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.QueryContext(ctx, streamSelect+` WHERE asset_id = ? ORDER BY id`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams for asset %d: %w", assetID, err)
	}
	defer rows.Close()

	var recs []*media.StreamRecord
	for rows.Next() {
		rec, scanErr := scanStream(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		recs = append(recs, rec)
	}
	err = rows.Err()
	return recs, err
}

// UpdateStream persists the mutable lifecycle fields of a stream
// record. Returns ErrNotFound when the record no longer exists, which
// job completion paths treat as "the work was cancelled underneath us".
func (d *Database) UpdateStream(ctx context.Context, rec *media.StreamRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_stream", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	args := []any{
		int(rec.Status), rec.JobHandle, rec.File,
		rec.Bitrate, rec.Duration, rec.Size,
	}
	args = append(args, audioCols(rec.Audio)...)
	args = append(args, videoCols(rec.Video)...)
	args = append(args, rec.ID)

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE streams SET
			status = ?, job_handle = ?, file = ?,
			bitrate = ?, duration = ?, size = ?,
			audio_codec = ?, audio_bitrate = ?, audio_channels = ?,
			video_codec = ?, video_bitrate = ?, video_width = ?, video_height = ?
		WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update stream %d: %w", rec.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// SetStreamJobHandle updates only the job handle column, and only
// while the record is still pre-terminal. A job that already finished
// cleared its handle; the guard keeps a slow dispatcher from writing
// a stale handle onto a successful or failed record. ErrNotFound
// covers both a vanished record and a record already terminal, and
// callers treat either as the job being out of their hands.
func (d *Database) SetStreamJobHandle(ctx context.Context, id int64, handle string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_stream_job_handle", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var res sql.Result
	res, err = d.db.ExecContext(ctx,
		`UPDATE streams SET job_handle = ? WHERE id = ? AND status IN (?, ?)`,
		handle, id, int(media.StatusPreparation), int(media.StatusInProgress))
	if err != nil {
		return fmt.Errorf("failed to set job handle on stream %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// DeleteStream removes a stream record.
func (d *Database) DeleteStream(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_stream", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `DELETE FROM streams WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stream %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// DeleteStreamsForAsset removes every stream record for an asset.
func (d *Database) DeleteStreamsForAsset(ctx context.Context, assetID int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_streams_for_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	_, err = d.db.ExecContext(ctx, `DELETE FROM streams WHERE asset_id = ?`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete streams for asset %d: %w", assetID, err)
	}
	return nil
}

const streamSelect = `
	SELECT id, asset_id, format_id, status, job_handle, file,
		bitrate, duration, size,
		audio_codec, audio_bitrate, audio_channels,
		video_codec, video_bitrate, video_width, video_height,
		created_at
	FROM streams`

func scanStream(row scanner) (*media.StreamRecord, error) {
	var (
		rec     media.StreamRecord
		status  int
		created int64
		ac      audioColumns
		vc      videoColumns
	)

	err := row.Scan(
		&rec.ID, &rec.AssetID, &rec.FormatID, &status, &rec.JobHandle, &rec.File,
		&rec.Bitrate, &rec.Duration, &rec.Size,
		&ac.codec, &ac.bitrate, &ac.channels,
		&vc.codec, &vc.bitrate, &vc.width, &vc.height,
		&created,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stream: %w", err)
	}

	rec.Status = media.Status(status)
	rec.Created = time.Unix(created, 0)
	rec.Audio = ac.track()
	rec.Video = vc.track()
	return &rec, nil
}
