package maintain

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/beanvault/storage"
)

// Compactor exposes the backing store's compaction discipline: value-log
// garbage collection plus LSM flattening, safe to run while reads continue.
type Compactor interface {
	RunCompaction(ctx context.Context) error
}

// Sweeper deletes base rows that have fallen out of the retention window
// and triggers store compaction afterwards to reclaim the space.
type Sweeper struct {
	beans     storage.BeanRepository
	chatters  storage.ChatterRepository
	compactor Compactor
	retention time.Duration
	logger    *slog.Logger
}

// NewSweeper creates a retention sweeper. Beans and chatters older than
// the retention window are deleted along with their derived state.
func NewSweeper(beans storage.BeanRepository, chatters storage.ChatterRepository, compactor Compactor, retention time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		beans:     beans,
		chatters:  chatters,
		compactor: compactor,
		retention: retention,
		logger:    logger.With("component", "sweeper"),
	}
}

// Sweep removes beans not updated within the retention window and chatter
// snapshots collected before it, then compacts the store. Returns the
// number of beans deleted.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.beans.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	chattersDeleted, err := s.chatters.DeleteStaleChatters(ctx, cutoff)
	if err != nil {
		return deleted, err
	}

	s.logger.Info("retention sweep complete",
		"cutoff", cutoff, "beans", deleted, "chatters", chattersDeleted)

	if s.compactor != nil {
		if err := s.compactor.RunCompaction(ctx); err != nil {
			return deleted, err
		}
	}

	return deleted, nil
}
