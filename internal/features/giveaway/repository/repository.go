package repository

import (
	"context"
	"errors"

	"giveaway-engine/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrPendingNotFound  = errors.New("pending giveaway not found")
)

// RecordStore is the persistence surface for giveaway and pending records.
// Reads go through a per-workspace cache; every mutation writes through to
// durable storage synchronously before returning.
type RecordStore interface {
	Get(ctx context.Context, workspaceID, id string) (*models.Giveaway, error)
	// Add inserts a new record. It returns false (logged, no error) when
	// the id already exists; ids are random tokens and are never reused.
	Add(ctx context.Context, g *models.Giveaway) (bool, error)
	// Update applies a partial update. It returns false when the record
	// does not exist.
	Update(ctx context.Context, workspaceID, id string, patch *models.GiveawayPatch) (bool, error)
	// Remove deletes the record and disarms any outstanding end timer for
	// the id in the same call.
	Remove(ctx context.Context, workspaceID, id string) (bool, error)
	// ListAll returns the workspace's records ordered by start time
	// descending, optionally restricted to open events.
	ListAll(ctx context.Context, workspaceID string, activeOnly bool) ([]*models.Giveaway, error)
	// ListActiveFromStorage loads non-ended, non-cancelled records
	// directly from durable storage, bypassing the cache. Used by startup
	// recovery, when the cache cannot be trusted to exist.
	ListActiveFromStorage(ctx context.Context, workspaceID string) ([]*models.Giveaway, error)

	GetPending(ctx context.Context, workspaceID, id string) (*models.PendingGiveaway, error)
	AddPending(ctx context.Context, p *models.PendingGiveaway) (bool, error)
	UpdatePending(ctx context.Context, workspaceID, id string, patch *models.PendingPatch) (bool, error)
	RemovePending(ctx context.Context, workspaceID, id string) (bool, error)
	ListPending(ctx context.Context, workspaceID string) ([]*models.PendingGiveaway, error)

	// Workspaces enumerates every workspace with persisted data.
	Workspaces(ctx context.Context) ([]string, error)
	// InvalidateCache drops the workspace's cached records; the next read
	// repopulates from durable storage.
	InvalidateCache(workspaceID string)
}
