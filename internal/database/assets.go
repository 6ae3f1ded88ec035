package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"media-converter/internal/media"
)

// CreateAsset inserts a new asset and fills in its ID and DateAdded.
func (d *Database) CreateAsset(ctx context.Context, a *media.Asset) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	args := []any{
		a.Title, a.Slug, string(a.Kind), a.File, a.Preview,
		a.Bitrate, a.Duration, a.Size,
	}
	args = append(args, audioCols(a.Audio)...)
	args = append(args, videoCols(a.Video)...)
	args = append(args, now.Unix())

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		INSERT INTO assets (
			title, slug, kind, file, preview,
			bitrate, duration, size,
			audio_codec, audio_bitrate, audio_channels,
			video_codec, video_bitrate, video_width, video_height,
			date_added
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get asset id: %w", err)
	}
	a.ID = id
	a.DateAdded = now
	return nil
}

// UpdateAsset persists every mutable field of an existing asset.
func (d *Database) UpdateAsset(ctx context.Context, a *media.Asset) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	args := []any{
		a.Title, a.Slug, string(a.Kind), a.File, a.Preview,
		a.Bitrate, a.Duration, a.Size,
	}
	args = append(args, audioCols(a.Audio)...)
	args = append(args, videoCols(a.Video)...)
	args = append(args, a.ID)

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `
		UPDATE assets SET
			title = ?, slug = ?, kind = ?, file = ?, preview = ?,
			bitrate = ?, duration = ?, size = ?,
			audio_codec = ?, audio_bitrate = ?, audio_channels = ?,
			video_codec = ?, video_bitrate = ?, video_width = ?, video_height = ?
		WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset %d: %w", a.ID, err)
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

// GetAsset fetches an asset by ID.
func (d *Database) GetAsset(ctx context.Context, id int64) (*media.Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_asset", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRowContext(ctx, assetSelect+` WHERE id = ?`, id)
	a, err := scanAsset(row)
	return a, err
}

// GetAssetBySlug fetches an asset by its URL slug.
func (d *Database) GetAssetBySlug(ctx context.Context, slug string) (*media.Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_asset_by_slug", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	row := d.db.QueryRowContext(ctx, assetSelect+` WHERE slug = ?`, slug)
	a, err := scanAsset(row)
	return a, err
}

// ListAssets returns all assets, newest first. kind narrows the list
// when non-empty.
func (d *Database) ListAssets(ctx context.Context, kind media.Kind) ([]*media.Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_assets", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	query := assetSelect
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY date_added DESC, id DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []*media.Asset
	for rows.Next() {
		a, scanErr := scanAsset(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		assets = append(assets, a)
	}
	err = rows.Err()
	return assets, err
}

// DeleteAsset removes an asset; stream rows cascade.
func (d *Database) DeleteAsset(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_asset", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var res sql.Result
	res, err = d.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset %d: %w", id, err)
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

const assetSelect = `
	SELECT id, title, slug, kind, file, preview,
		bitrate, duration, size,
		audio_codec, audio_bitrate, audio_channels,
		video_codec, video_bitrate, video_width, video_height,
		date_added
	FROM assets`

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(row scanner) (*media.Asset, error) {
	var (
		a         media.Asset
		kind      string
		dateAdded int64
		ac        audioColumns
		vc        videoColumns
	)

	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &kind, &a.File, &a.Preview,
		&a.Bitrate, &a.Duration, &a.Size,
		&ac.codec, &ac.bitrate, &ac.channels,
		&vc.codec, &vc.bitrate, &vc.width, &vc.height,
		&dateAdded,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}

	a.Kind = media.Kind(kind)
	a.DateAdded = time.Unix(dateAdded, 0)
	a.Audio = ac.track()
	a.Video = vc.track()
	return &a, nil
}

// audioColumns holds the nullable audio track columns shared by the
// assets and streams tables.
type audioColumns struct {
	codec    sql.NullString
	bitrate  sql.NullInt64
	channels sql.NullInt64
}

func (c *audioColumns) track() *media.AudioTrack {
	if !c.codec.Valid {
		return nil
	}
	return &media.AudioTrack{
		Codec:    c.codec.String,
		Bitrate:  c.bitrate.Int64,
		Channels: int(c.channels.Int64),
	}
}

type videoColumns struct {
	codec   sql.NullString
	bitrate sql.NullInt64
	width   sql.NullInt64
	height  sql.NullInt64
}

func (c *videoColumns) track() *media.VideoTrack {
	if !c.codec.Valid {
		return nil
	}
	return &media.VideoTrack{
		Codec:   c.codec.String,
		Bitrate: c.bitrate.Int64,
		Width:   int(c.width.Int64),
		Height:  int(c.height.Int64),
	}
}

// audioCols expands an optional audio track into the three insert
// arguments for its nullable columns.
func audioCols(t *media.AudioTrack) []any {
	if t == nil {
		return []any{nil, nil, nil}
	}
	return []any{t.Codec, t.Bitrate, t.Channels}
}

func videoCols(t *media.VideoTrack) []any {
	if t == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{t.Codec, t.Bitrate, t.Width, t.Height}
}
