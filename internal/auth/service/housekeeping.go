package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkcart/inkcart/internal/auth/store"
)

// HousekeepingService periodically prunes expired refresh tokens. Expired
// rows are already unusable; the sweep only keeps the table from growing
// without bound.
type HousekeepingService struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	return &HousekeepingService{
		store:    st,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. One sweep runs immediately.
func (s *HousekeepingService) Start() {
	go func() {
		defer close(s.done)

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.RefreshTokens().DeleteExpired(ctx); err != nil {
		s.logger.Warn("expired token sweep failed", "err", err)
		return
	}
	s.logger.Debug("expired refresh tokens swept")
}
