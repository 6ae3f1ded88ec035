package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-converter/internal/database"
	"media-converter/internal/logging"
	"media-converter/internal/media"
	"media-converter/internal/queue"
)

// runJob performs one conversion end to end: encode to a temp file,
// adopt the output into the stream store, probe it and persist the
// terminal state. A stream record that vanishes at any point means the
// conversion was cancelled or its asset deleted; the job exits quietly
// and cleans up anything it produced.
func (c *Converter) runJob(ctx context.Context, h queue.Handle, streamID int64) error {
	rec, err := c.db.GetStream(ctx, streamID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			logging.Debug("Job %s: stream %d vanished before start", h, streamID)
			return nil
		}
		return err
	}

	// A later dispatch owns this record now.
	if rec.JobHandle != "" && rec.JobHandle != string(h) {
		logging.Debug("Job %s: stream %d superseded by job %s", h, streamID, rec.JobHandle)
		return nil
	}

	rec.JobHandle = string(h)
	rec.Status = media.StatusInProgress
	if err := c.db.UpdateStream(ctx, rec); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}

	asset, err := c.db.GetAsset(ctx, rec.AssetID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return c.fail(rec, err)
	}
	format, err := c.db.GetFormat(ctx, rec.FormatID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return c.fail(rec, err)
	}

	tempPath := c.tempPath(asset, format)
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove temp file %s: %v", tempPath, err)
		}
	}()

	logging.Info("Converting %s to %s (stream %d)", asset.Title, format.Name, rec.ID)

	if err := c.encoder.Encode(ctx, format.Kind, c.media.Path(asset.File), tempPath, format); err != nil {
		if ctx.Err() != nil {
			// Revoked mid-encode. The dispatcher already reset the
			// record; leave it alone.
			return ctx.Err()
		}
		return c.fail(rec, err)
	}

	result, err := c.prober.Probe(ctx, tempPath, probeRestrict(format.Kind))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return c.fail(rec, err)
	}

	outRel := c.outputRel(asset, format)
	if err := c.streams.Adopt(tempPath, outRel); err != nil {
		return c.fail(rec, err)
	}

	rec.Status = media.StatusSuccessful
	rec.JobHandle = ""
	rec.File = outRel
	rec.Metadata = result.Metadata
	rec.Audio = result.Audio
	rec.Video = result.Video

	if err := c.db.UpdateStream(ctx, rec); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Cancelled after the encode finished: the output belongs
			// to nobody, remove it.
			if delErr := c.streams.Delete(outRel); delErr != nil {
				logging.Warn("failed to remove orphaned output %s: %v", outRel, delErr)
			}
			return nil
		}
		return err
	}

	logging.Info("Conversion of %s to %s complete (%d bytes)", asset.Title, format.Name, rec.Size)
	return nil
}

// fail marks the record failed and returns the cause so the queue
// records the job as failed. A vanished record swallows the failure.
func (c *Converter) fail(rec *media.StreamRecord, cause error) error {
	rec.Status = media.StatusFailure
	rec.JobHandle = ""
	rec.File = ""
	rec.Metadata = media.Metadata{}
	rec.Audio = nil
	rec.Video = nil

	// Deliberately not the job context: a cancelled job must still be
	// able to persist its state.
	if err := c.db.UpdateStream(context.Background(), rec); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return err
	}
	return cause
}

// tempPath names the in-flight encode output. The format name keeps
// concurrent conversions of one asset from colliding.
func (c *Converter) tempPath(asset *media.Asset, format *media.Format) string {
	base := strings.TrimSuffix(filepath.Base(asset.File), filepath.Ext(asset.File))
	name := fmt.Sprintf("%s_%s.%s", base, media.Slugify(format.Name), format.Container)
	return filepath.Join(c.tempDir, name)
}

// outputRel is the storage-relative path of a finished conversion.
// Deterministic per (asset, format) so a re-conversion replaces the
// previous output.
func (c *Converter) outputRel(asset *media.Asset, format *media.Format) string {
	return fmt.Sprintf("%s/%s_%s.%s", asset.Kind, asset.Slug, media.Slugify(format.Name), format.Container)
}
