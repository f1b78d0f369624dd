package service

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/ticketbooker/internal/database"
)

// reserveQuota takes qty from the ticket's remaining quota inside tx. It
// fails with entity.ErrInsufficientQuota if less than qty is left.
func reserveQuota(ctx context.Context, tx database.Store, code string, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := tx.Tickets().ReserveQuota(ctx, code, qty); err != nil {
		return fmt.Errorf("failed to reserve %d of ticket %s: %w", qty, code, err)
	}
	return nil
}

// releaseQuota gives qty back to the ticket's quota inside tx. Callers only
// release what they reserved earlier; no upper bound is checked.
func releaseQuota(ctx context.Context, tx database.Store, code string, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := tx.Tickets().ReleaseQuota(ctx, code, qty); err != nil {
		return fmt.Errorf("failed to release %d of ticket %s: %w", qty, code, err)
	}
	return nil
}
