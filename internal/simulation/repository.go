package simulation

import (
	"context"
	"time"

	"github.com/thinkbeforeclick/platform/internal/domain"
)

// Repository is the persistence surface the simulation service needs.
// *store.Store satisfies it; tests use an in-memory implementation.
type Repository interface {
	PutTracking(ctx context.Context, t *domain.EmailTracking) error

	// GetTracking returns (nil, nil) for an unknown id.
	GetTracking(ctx context.Context, trackingID string) (*domain.EmailTracking, error)

	// MarkOpened reports whether this call performed the false->true
	// transition.
	MarkOpened(ctx context.Context, trackingID string, openedAt time.Time) (bool, error)

	AppendClick(ctx context.Context, trackingID string, entry domain.ScamClickEntry) error
	PutScamClick(ctx context.Context, c *domain.ScamClick) error

	IncrementSent(ctx context.Context, employeeID string) error
	IncrementOpened(ctx context.Context, employeeID string) error
	IncrementClicked(ctx context.Context, employeeID string) error
}
