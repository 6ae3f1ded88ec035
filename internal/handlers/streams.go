package handlers

import (
	"encoding/json"
	"net/http"

	"media-converter/internal/media"
	"media-converter/internal/mediatypes"
)

// convertRequest names either a single format or a format set.
type convertRequest struct {
	FormatID    int64 `json:"formatId,omitempty"`
	FormatSetID int64 `json:"formatSetId,omitempty"`
}

// ConvertAsset dispatches conversion of an asset to a format or to
// every qualifying format of a set. The response carries the stream
// records in the preparation state; conversion itself is asynchronous.
func (h *Handlers) ConvertAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	switch {
	case req.FormatID != 0 && req.FormatSetID != 0:
		writeJSONError(w, "formatId and formatSetId are mutually exclusive", http.StatusBadRequest)
	case req.FormatID != 0:
		rec, err := h.conv.Convert(r.Context(), id, req.FormatID)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, rec)
	case req.FormatSetID != 0:
		recs, err := h.conv.ConvertToSet(r.Context(), id, req.FormatSetID)
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
	default:
		writeJSONError(w, "formatId or formatSetId is required", http.StatusBadRequest)
	}
}

// ReconcileAsset re-evaluates every stream of an asset against the
// quality gate and re-dispatches the survivors.
func (h *Handlers) ReconcileAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid asset ID", http.StatusBadRequest)
		return
	}

	if err := h.conv.Reconcile(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	writeJSONStatus(w, "reconciling")
}

// GetStream returns a single stream record by ID.
func (h *Handlers) GetStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid stream ID", http.StatusBadRequest)
		return
	}

	rec, err := h.db.GetStream(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, rec)
}

// CancelStream stops any running conversion for the record and resets
// it to the preparation state. Idempotent.
func (h *Handlers) CancelStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid stream ID", http.StatusBadRequest)
		return
	}

	if err := h.conv.Cancel(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	writeJSONStatus(w, "cancelled")
}

// DeleteStream cancels and deletes a stream record along with its
// output file.
func (h *Handlers) DeleteStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid stream ID", http.StatusBadRequest)
		return
	}

	if err := h.conv.RemoveStream(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	writeJSONStatus(w, "deleted")
}

// GetStreamFile serves the finished conversion output with range
// support. Only successful streams have a file.
func (h *Handlers) GetStreamFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid stream ID", http.StatusBadRequest)
		return
	}

	rec, err := h.db.GetStream(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	if rec.Status != media.StatusSuccessful || rec.File == "" {
		writeJSONError(w, "stream is not ready: "+rec.Status.String(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", mediatypes.GetMimeType(rec.File))
	http.ServeFile(w, r, h.streams.Path(rec.File))
}
