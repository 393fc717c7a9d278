package service

import (
	"context"
	"log/slog"
	"time"
)

const DefaultSweepInterval = time.Minute

type roomCleaner interface {
	CleanupStaleRooms(ctx context.Context) int
}

// Janitor periodically evicts finished and expired rooms.
type Janitor struct {
	logger *slog.Logger

	rooms    roomCleaner
	interval time.Duration
}

func NewJanitor(logger *slog.Logger, rooms roomCleaner, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Janitor{
		logger:   logger.With("component", "janitor"),
		rooms:    rooms,
		interval: interval,
	}
}

// Run blocks until ctx is done.
func (that *Janitor) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	log.Info("janitor started", "interval", that.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("janitor stopped")
			return
		case <-ticker.C:
			if evicted := that.rooms.CleanupStaleRooms(ctx); evicted > 0 {
				log.Info("stale rooms evicted", "count", evicted)
			}
		}
	}
}
