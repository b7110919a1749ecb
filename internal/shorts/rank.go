package shorts

import (
	"context"

	"go.uber.org/zap"
)

// Persister takes a ranked candidate list, upserts every row and forwards
// the best candidate downstream.
type Persister struct {
	store    RecordStore
	notifier Notifier
	logger   *zap.Logger
}

// NewPersister wires a Persister.
func NewPersister(store RecordStore, notifier Notifier, logger *zap.Logger) *Persister {
	return &Persister{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// SaveAndNotify upserts each candidate and, when the list is non-empty,
// notifies the downstream service with the highest-popularity candidate.
// A failing upsert is logged and skipped without aborting the rest;
// notification is fire-and-forget. An empty list performs no work.
func (p *Persister) SaveAndNotify(ctx context.Context, productCode int, ranked []Candidate) {
	for _, cand := range ranked {
		if err := p.store.UpsertShort(ctx, cand); err != nil {
			p.logger.Error("error saving candidate",
				zap.Int("product_code", cand.ProductCode),
				zap.String("video_id", cand.VideoID),
				zap.Error(err),
			)
			upsertsTotal.WithLabelValues("error").Inc()
			continue
		}
		upsertsTotal.WithLabelValues("ok").Inc()
	}

	if len(ranked) == 0 {
		return
	}
	top := ranked[0]
	if err := p.notifier.NotifyTopShort(ctx, productCode, top); err != nil {
		p.logger.Error("downstream notification failed",
			zap.Int("product_code", productCode),
			zap.String("video_id", top.VideoID),
			zap.Error(err),
		)
		notificationsTotal.WithLabelValues("error").Inc()
		return
	}
	notificationsTotal.WithLabelValues("ok").Inc()
}
