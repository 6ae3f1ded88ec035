package converter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/mediatypes"
	"media-converter/internal/queue"
)

// ErrUnsupportedMedia is returned by Ingest for files whose extension
// is neither a known audio nor video type.
var ErrUnsupportedMedia = errors.New("unsupported media file type")

// probeRestrict limits probing to the audio stream for audio assets
// so embedded cover art is not mistaken for a video track. Video
// files probe both tracks; the gate compares their audio bitrate too.
func probeRestrict(kind media.Kind) media.Kind {
	if kind == media.KindAudio {
		return kind
	}
	return ""
}

// Ingest stores an uploaded file as a new asset: the file is saved
// into the media store, probed for technical metadata and registered
// in the database. Video assets additionally get a preview frame
// extracted from the middle of the file; preview failure is logged
// but does not fail the ingest.
func (c *Converter) Ingest(ctx context.Context, title, filename string, r io.Reader) (*media.Asset, error) {
	kind, ok := mediatypes.DetectKind(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filename)
	}

	rel := c.media.UniqueRel(string(kind), filename)
	if _, err := c.media.Save(rel, r); err != nil {
		return nil, err
	}

	result, err := c.prober.Probe(ctx, c.media.Path(rel), probeRestrict(kind))
	if err != nil {
		if delErr := c.media.Delete(rel); delErr != nil {
			logging.Warn("failed to clean up unprobeable upload %s: %v", rel, delErr)
		}
		return nil, err
	}

	asset := &media.Asset{
		Title:    title,
		Slug:     media.Slugify(title),
		Kind:     kind,
		File:     rel,
		Metadata: result.Metadata,
		Audio:    result.Audio,
		Video:    result.Video,
	}

	if err := c.db.CreateAsset(ctx, asset); err != nil {
		if delErr := c.media.Delete(rel); delErr != nil {
			logging.Warn("failed to clean up upload %s: %v", rel, delErr)
		}
		return nil, err
	}

	if kind == media.KindVideo {
		c.generatePreview(ctx, asset)
	}

	logging.Info("Ingested %s asset %d: %s (%d bytes)", kind, asset.ID, asset.Title, asset.Size)
	return asset, nil
}

// generatePreview extracts a frame from the middle of a video asset
// and stores it next to the source. Best effort.
func (c *Converter) generatePreview(ctx context.Context, asset *media.Asset) {
	rel := fmt.Sprintf("previews/%s.png", asset.Slug)
	if err := c.encoder.Preview(ctx, c.media.Path(asset.File), c.media.Path(rel), asset.Duration); err != nil {
		logging.Warn("preview extraction for asset %d failed: %v", asset.ID, err)
		return
	}

	asset.Preview = rel
	if err := c.db.UpdateAsset(ctx, asset); err != nil {
		logging.Warn("failed to store preview path for asset %d: %v", asset.ID, err)
	}
}

// ReplaceFile swaps the source file of an existing asset. The old file
// is removed, metadata is re-measured from the new file, and every
// stream record is reconciled against the quality gate.
func (c *Converter) ReplaceFile(ctx context.Context, assetID int64, filename string, r io.Reader) (*media.Asset, error) {
	asset, err := c.db.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	kind, ok := mediatypes.DetectKind(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filename)
	}
	if kind != asset.Kind {
		return nil, fmt.Errorf("%w: asset %d is %s, replacement is %s",
			ErrKindMismatch, assetID, asset.Kind, kind)
	}

	rel := c.media.UniqueRel(string(kind), filename)
	if _, err := c.media.Save(rel, r); err != nil {
		return nil, err
	}

	result, err := c.prober.Probe(ctx, c.media.Path(rel), probeRestrict(kind))
	if err != nil {
		if delErr := c.media.Delete(rel); delErr != nil {
			logging.Warn("failed to clean up unprobeable replacement %s: %v", rel, delErr)
		}
		return nil, err
	}

	oldFile := asset.File
	asset.ResetMetadata()
	asset.File = rel
	asset.Metadata = result.Metadata
	asset.Audio = result.Audio
	asset.Video = result.Video

	if err := c.db.UpdateAsset(ctx, asset); err != nil {
		if delErr := c.media.Delete(rel); delErr != nil {
			logging.Warn("failed to clean up replacement %s: %v", rel, delErr)
		}
		return nil, err
	}

	if oldFile != rel {
		if err := c.media.Delete(oldFile); err != nil {
			logging.Warn("failed to delete replaced source %s: %v", oldFile, err)
		}
	}

	if asset.Kind == media.KindVideo {
		c.generatePreview(ctx, asset)
	}

	if err := c.Reconcile(ctx, assetID); err != nil {
		return asset, err
	}
	return asset, nil
}

// DeleteAsset removes an asset, its source file, its preview and every
// stream record and output derived from it. Running conversions are
// revoked first.
func (c *Converter) DeleteAsset(ctx context.Context, assetID int64) error {
	asset, err := c.db.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}

	recs, err := c.db.StreamsForAsset(ctx, assetID)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		c.jobs.Revoke(queue.Handle(rec.JobHandle))
		if err := c.streams.Delete(rec.File); err != nil {
			logging.Warn("failed to delete stream output %s: %v", rec.File, err)
		}
	}

	// Stream rows cascade with the asset.
	if err := c.db.DeleteAsset(ctx, assetID); err != nil {
		return err
	}

	if err := c.media.Delete(asset.File); err != nil {
		logging.Warn("failed to delete source file %s: %v", asset.File, err)
	}
	if err := c.media.Delete(asset.Preview); err != nil {
		logging.Warn("failed to delete preview %s: %v", asset.Preview, err)
	}

	logging.Info("Deleted asset %d (%s) and %d streams", assetID, asset.Title, len(recs))
	return nil
}
