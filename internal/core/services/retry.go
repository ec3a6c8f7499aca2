package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

const maxInsertAttempts = 10

// insertWithRetry runs insert until it succeeds, fails with something other
// than alreadyExists, or maxInsertAttempts is reached. insert must draw a
// fresh random value on each call.
func insertWithRetry(ctx context.Context, op string, alreadyExists error, insert func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if err = insert(ctx); err == nil {
			return nil
		}
		if !errors.Is(err, alreadyExists) {
			return err
		}
		log.Ctx(ctx).Debug().Str("op", op).Int("attempt", attempt).Msg("unique collision, retrying")
	}
	return domain.Unexpected(op, err)
}
