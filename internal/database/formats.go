package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"media-converter/internal/media"
)

// CreateFormat inserts a new target format and fills in its ID.
func (d *Database) CreateFormat(ctx context.Context, f *media.Format) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_format", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		INSERT INTO formats (
			name, kind, container,
			audio_codec, audio_bitrate, audio_channels, audio_codec_params,
			video_codec, video_bitrate, video_width, video_height,
			video_codec_params, video_aspect_mode
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, string(f.Kind), f.Container,
		f.AudioCodec, f.AudioBitrate, f.AudioChannels, f.AudioCodecParams,
		f.VideoCodec, f.VideoBitrate, f.VideoWidth, f.VideoHeight,
		f.VideoCodecParams, string(f.AspectMode),
	)
	if err != nil {
		return fmt.Errorf("failed to insert format: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get format id: %w", err)
	}
	f.ID = id
	return nil
}

// GetFormat fetches a format by ID.
func (d *Database) GetFormat(ctx context.Context, id int64) (*media.Format, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_format", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRowContext(ctx, formatSelect+` WHERE id = ?`, id)
	f, err := scanFormat(row)
	return f, err
}

// GetFormatByName fetches a format by its unique name.
func (d *Database) GetFormatByName(ctx context.Context, name string) (*media.Format, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_format_by_name", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRowContext(ctx, formatSelect+` WHERE name = ?`, name)
	f, err := scanFormat(row)
	return f, err
}

// ListFormats returns all formats ordered by name. kind narrows the
// list when non-empty.
func (d *Database) ListFormats(ctx context.Context, kind media.Kind) ([]*media.Format, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_formats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	query := formatSelect
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list formats: %w", err)
	}
	defer rows.Close()

	var formats []*media.Format
	for rows.Next() {
		f, scanErr := scanFormat(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		formats = append(formats, f)
	}
	err = rows.Err()
	return formats, err
}

// DeleteFormat removes a format; set memberships and stream rows
// cascade.
func (d *Database) DeleteFormat(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_format", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `DELETE FROM formats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete format %d: %w", id, err)
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

// CreateFormatSet inserts a format set and its memberships.
func (d *Database) CreateFormatSet(ctx context.Context, set *media.FormatSet) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_format_set", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO format_sets (name, kind) VALUES (?, ?)`,
		set.Name, string(set.Kind),
	)
	if err != nil {
		return fmt.Errorf("failed to insert format set: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get format set id: %w", err)
	}

	for i := range set.Formats {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO format_set_members (set_id, format_id) VALUES (?, ?)`,
			id, set.Formats[i].ID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert format set member: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit format set: %w", err)
	}
	set.ID = id
	return nil
}

// GetFormatSet fetches a set by ID, including its member formats.
func (d *Database) GetFormatSet(ctx context.Context, id int64) (*media.FormatSet, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_format_set", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	var (
		set  media.FormatSet
		kind string
	)
	err = d.db.QueryRowContext(ctx,
		`SELECT id, name, kind FROM format_sets WHERE id = ?`, id,
	).Scan(&set.ID, &set.Name, &kind)
	if err == sql.ErrNoRows {
		err = ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get format set %d: %w", id, err)
	}
	set.Kind = media.Kind(kind)

	rows, err := d.db.QueryContext(ctx, formatSelect+`
		JOIN format_set_members m ON m.format_id = formats.id
		WHERE m.set_id = ?
		ORDER BY formats.name`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list format set members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, scanErr := scanFormat(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		set.Formats = append(set.Formats, *f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &set, nil
}

// ListFormatSets returns all format sets with their members.
func (d *Database) ListFormatSets(ctx context.Context) ([]*media.FormatSet, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_format_sets", start, err) }()

	var ids []int64
	func() {
		d.mu.RLock()
		defer d.mu.RUnlock()

		rows, qErr := d.db.QueryContext(ctx, `SELECT id FROM format_sets ORDER BY name`)
		if qErr != nil {
			err = fmt.Errorf("failed to list format sets: %w", qErr)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var id int64
			if scanErr := rows.Scan(&id); scanErr != nil {
				err = scanErr
				return
			}
			ids = append(ids, id)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	sets := make([]*media.FormatSet, 0, len(ids))
	for _, id := range ids {
		set, getErr := d.GetFormatSet(ctx, id)
		if getErr != nil {
			err = getErr
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

const formatSelect = `
	SELECT formats.id, formats.name, formats.kind, formats.container,
		formats.audio_codec, formats.audio_bitrate, formats.audio_channels,
		formats.audio_codec_params,
		formats.video_codec, formats.video_bitrate, formats.video_width,
		formats.video_height, formats.video_codec_params,
		formats.video_aspect_mode
	FROM formats`

func scanFormat(row scanner) (*media.Format, error) {
	var (
		f      media.Format
		kind   string
		aspect string
	)

	err := row.Scan(
		&f.ID, &f.Name, &kind, &f.Container,
		&f.AudioCodec, &f.AudioBitrate, &f.AudioChannels, &f.AudioCodecParams,
		&f.VideoCodec, &f.VideoBitrate, &f.VideoWidth, &f.VideoHeight,
		&f.VideoCodecParams, &aspect,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan format: %w", err)
	}

	f.Kind = media.Kind(kind)
	f.AspectMode = media.AspectMode(aspect)
	return &f, nil
}
