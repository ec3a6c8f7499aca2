package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type cleanupService struct {
	purgers map[string]ports.ExpiredPurger
	now     ports.Clock
}

func NewCleanupService(repos ports.Repositories, now ports.Clock) ports.CleanupService {
	return &cleanupService{
		purgers: repos.Purgers,
		now:     now,
	}
}

// PurgeExpired runs every table purge concurrently and reports rows removed
// per table. Counts of tables that succeeded are returned alongside the
// first error.
func (s *cleanupService) PurgeExpired(ctx context.Context) (map[string]int64, error) {
	now := s.now().UTC()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = make(map[string]int64, len(s.purgers))
	)
	errChan := make(chan error, len(s.purgers))

	for table, purger := range s.purgers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := purger.PurgeExpired(ctx, now)
			if err != nil {
				errChan <- fmt.Errorf("failed to purge %s: %w", table, err)
				return
			}
			mu.Lock()
			counts[table] = n
			mu.Unlock()
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return counts, err
		}
	}

	return counts, nil
}
