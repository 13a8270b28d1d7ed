// Package sweeper removes derived files that outlived the retention window
package sweeper

import (
	"context"
	"time"

	"github.com/UnendingLoop/ImageTuner/internal/storage"
	"github.com/wb-go/wbf/zlog"
)

type Sweeper struct {
	derived  storage.FileStorage
	maxAge   time.Duration
	interval time.Duration
}

// New - свипер ходит только по производному хранилищу: сырые аплоады
// сознательно не трогаются (поведение референса, см. DESIGN.md)
func New(derived storage.FileStorage, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{derived: derived, maxAge: maxAge, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().Msg("Sweeper loop crashed")
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx, time.Now())
		}
	}
}

// sweepOnce - один проход: ошибки по отдельным файлам логируются и не
// останавливают чистку остальных
func (s *Sweeper) sweepOnce(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-s.maxAge)

	keys, err := s.derived.ListOlderThan(ctx, cutoff)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("Sweeper failed to enumerate derived files")
		return 0
	}

	removed := 0
	for _, key := range keys {
		if err := s.derived.Delete(ctx, key); err != nil {
			// файл мог уже исчезнуть - не повод бросать остальные
			zlog.Logger.Warn().Err(err).Str("file", key).Msg("Sweeper failed to delete derived file")
			continue
		}
		removed++
		zlog.Logger.Info().Str("file", key).Msg("Sweeper deleted expired derived file")
	}

	return removed
}
