package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"media-converter/internal/media"
	"media-converter/internal/mediatypes"
)

// maxUploadMemory bounds the in-memory part of multipart parsing;
// larger files spill to disk.
const maxUploadMemory = 32 << 20

// ListAssets returns all assets, optionally filtered by kind.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	kind := media.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeJSONError(w, "invalid kind: must be audio or video", http.StatusBadRequest)
		return
	}

	assets, err := h.db.ListAssets(r.Context(), kind)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, assets)
}

// GetAsset returns a single asset by ID.
func (h *Handlers) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.db.GetAsset(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, asset)
}

// UploadAsset ingests a new source file from a multipart form. The
// form carries the file under "file" and an optional "title"; when no
// title is given the file name without extension is used.
func (h *Handlers) UploadAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close() //nolint:errcheck

	filename := filepath.Base(header.Filename)
	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	asset, err := h.conv.Ingest(r.Context(), title, filename, file)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, asset)
}

// ReplaceAssetFile swaps the source file of an existing asset and
// reconciles its streams against the new measurements.
func (h *Handlers) ReplaceAssetFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close() //nolint:errcheck

	asset, err := h.conv.ReplaceFile(r.Context(), id, filepath.Base(header.Filename), file)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, asset)
}

// DeleteAsset removes an asset, its files and all derived streams.
func (h *Handlers) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	if err := h.conv.DeleteAsset(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	writeJSONStatus(w, "deleted")
}

// GetAssetFile serves the original source file with range support.
func (h *Handlers) GetAssetFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	asset, err := h.db.GetAsset(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", mediatypes.GetMimeType(asset.File))
	http.ServeFile(w, r, h.media.Path(asset.File))
}

// GetAssetStreams returns every stream record derived from the asset.
func (h *Handlers) GetAssetStreams(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	// 404 for a missing asset, not an empty list.
	if _, err := h.db.GetAsset(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	recs, err := h.db.StreamsForAsset(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if recs == nil {
		recs = []*media.StreamRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, recs)
}
