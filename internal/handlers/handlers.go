package handlers

import (
	"time"

	"media-converter/internal/converter"
	"media-converter/internal/database"
	"media-converter/internal/storage"
)

type Handlers struct {
	db        *database.Database
	conv      *converter.Converter
	media     *storage.Store
	streams   *storage.Store
	startTime time.Time
}

func New(db *database.Database, conv *converter.Converter, mediaStore, streamStore *storage.Store) *Handlers {
	return &Handlers{
		db:        db,
		conv:      conv,
		media:     mediaStore,
		streams:   streamStore,
		startTime: time.Now(),
	}
}
