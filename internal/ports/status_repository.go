package ports

import (
	"context"

	"github.com/insulinmanager/dosectl/internal/domain"
)

// StatusRepository publishes controller snapshots.
// Implementations persist the snapshot atomically so readers never see a
// partial write.
type StatusRepository interface {
	// Load retrieves the last published snapshot.
	// Returns an empty status and nil error if none exists.
	Load(ctx context.Context) (domain.Status, error)

	// Save publishes the current snapshot.
	Save(ctx context.Context, status domain.Status) error
}
