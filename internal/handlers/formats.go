package handlers

import (
	"encoding/json"
	"net/http"

	"media-converter/internal/media"
)

// CreateFormat registers a new target format.
func (h *Handlers) CreateFormat(w http.ResponseWriter, r *http.Request) {
	var f media.Format
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if f.Name == "" || f.Container == "" {
		writeJSONError(w, "name and container are required", http.StatusBadRequest)
		return
	}
	if !f.Kind.Valid() {
		writeJSONError(w, "invalid kind: must be audio or video", http.StatusBadRequest)
		return
	}
	if f.Kind == media.KindVideo && f.AspectMode == "" {
		f.AspectMode = media.AspectScale
	}

	if err := h.db.CreateFormat(r.Context(), &f); err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, &f)
}

// ListFormats returns all formats, optionally filtered by kind.
func (h *Handlers) ListFormats(w http.ResponseWriter, r *http.Request) {
	kind := media.Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		writeJSONError(w, "invalid kind: must be audio or video", http.StatusBadRequest)
		return
	}

	formats, err := h.db.ListFormats(r.Context(), kind)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, formats)
}

// GetFormat returns a single format by ID.
func (h *Handlers) GetFormat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid format ID", http.StatusBadRequest)
		return
	}

	format, err := h.db.GetFormat(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, format)
}

// DeleteFormat removes a format. Stream records referencing it cascade
// away in the database.
func (h *Handlers) DeleteFormat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid format ID", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteFormat(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	writeJSONStatus(w, "deleted")
}

// createFormatSetRequest names the member formats by ID.
type createFormatSetRequest struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	FormatIDs []int64 `json:"formatIds"`
}

// CreateFormatSet groups existing formats under a name. All members
// must exist and share the set's kind.
func (h *Handlers) CreateFormatSet(w http.ResponseWriter, r *http.Request) {
	var req createFormatSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		writeJSONError(w, "name is required", http.StatusBadRequest)
		return
	}
	kind := media.Kind(req.Kind)
	if !kind.Valid() {
		writeJSONError(w, "invalid kind: must be audio or video", http.StatusBadRequest)
		return
	}
	if len(req.FormatIDs) == 0 {
		writeJSONError(w, "formatIds must not be empty", http.StatusBadRequest)
		return
	}

	set := &media.FormatSet{Name: req.Name, Kind: kind}
	for _, fid := range req.FormatIDs {
		format, err := h.db.GetFormat(r.Context(), fid)
		if err != nil {
			respondError(w, err)
			return
		}
		if format.Kind != kind {
			writeJSONError(w, "format "+format.Name+" does not match set kind", http.StatusBadRequest)
			return
		}
		set.Formats = append(set.Formats, *format)
	}

	if err := h.db.CreateFormatSet(r.Context(), set); err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, set)
}

// ListFormatSets returns all format sets with their member formats.
func (h *Handlers) ListFormatSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.db.ListFormatSets(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, sets)
}

// GetFormatSet returns a single format set by ID.
func (h *Handlers) GetFormatSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid format set ID", http.StatusBadRequest)
		return
	}

	set, err := h.db.GetFormatSet(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, set)
}

// ConvertSet dispatches conversion of every stored asset of the set's
// kind to the set's formats. Pairings that fail the quality gate are
// skipped; the response lists the records that were dispatched.
func (h *Handlers) ConvertSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid format set ID", http.StatusBadRequest)
		return
	}

	recs, err := h.conv.ConvertAllToSet(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if recs == nil {
		recs = []*media.StreamRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, recs)
}
