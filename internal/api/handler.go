package api

import (
	"fiberwatch-backend/config"
	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/ingest"
	"fiberwatch-backend/internal/notification"
	"fiberwatch-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg        *config.Config
	store      store.Store
	pipeline   *ingest.Pipeline
	classifier *classifier.Classifier
	pool       *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, p *ingest.Pipeline, c *classifier.Classifier, pool *notification.WorkerPool) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      s,
		pipeline:   p,
		classifier: c,
		pool:       pool,
	}
}
