package usecase

import (
	"context"

	"DealPull/pkg/logger"
)

// WarmupHandler consumes warmup requests from Kafka and rebuilds the
// default snapshot, so schedulers can keep the cache hot out of band.
type WarmupHandler struct {
	snapshots *SnapshotService
	topic     string
	log       *logger.Logger
}

func NewWarmupHandler(snapshots *SnapshotService, topic string, log *logger.Logger) *WarmupHandler {
	return &WarmupHandler{snapshots: snapshots, topic: topic, log: log}
}

func (h *WarmupHandler) Topic() string { return h.topic }

// Handle refreshes the snapshot. The message body is ignored; any
// message on the warmup topic is a refresh request.
func (h *WarmupHandler) Handle(ctx context.Context, key, _ []byte) error {
	h.log.Info("warmup requested", logger.String("key", string(key)))
	return h.snapshots.Refresh(ctx)
}
