package handlers

import (
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"

	"media-converter/internal/logging"
)

// maxPreviewWidth caps on-the-fly resizing so a query parameter cannot
// request an arbitrarily large render.
const maxPreviewWidth = 1920

// GetAssetPreview serves the extracted preview frame of a video asset.
// An optional width query parameter resizes the frame on the fly,
// preserving aspect ratio.
func (h *Handlers) GetAssetPreview(w http.ResponseWriter, r *http.Request) {
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

	if asset.Preview == "" || !h.media.Exists(asset.Preview) {
		writeJSONError(w, "asset has no preview", http.StatusNotFound)
		return
	}

	widthStr := r.URL.Query().Get("width")
	if widthStr == "" {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFile(w, r, h.media.Path(asset.Preview))
		return
	}

	width, err := strconv.Atoi(widthStr)
	if err != nil || width < 1 || width > maxPreviewWidth {
		writeJSONError(w, "invalid width", http.StatusBadRequest)
		return
	}

	img, err := imaging.Open(h.media.Path(asset.Preview))
	if err != nil {
		logging.Error("failed to open preview for asset %d: %v", id, err)
		writeJSONError(w, "failed to read preview", http.StatusInternalServerError)
		return
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if err := imaging.Encode(w, resized, imaging.PNG); err != nil {
		logging.Error("failed to encode preview for asset %d: %v", id, err)
	}
}
