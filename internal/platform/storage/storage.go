package storage

import "context"

// Store is the durable key-value JSON persistence collaborator. Records are
// grouped per workspace under a file key; the module namespace is fixed per
// Store instance so several bot modules can share one backend.
type Store interface {
	// Load unmarshals the value stored under (fileKey, workspaceID) into
	// dest. It returns false and leaves dest untouched (the caller's
	// default) when nothing is stored yet.
	Load(ctx context.Context, fileKey, workspaceID string, dest interface{}) (bool, error)

	// Save marshals value and writes it under (fileKey, workspaceID),
	// registering the workspace so ListWorkspaces can enumerate it.
	Save(ctx context.Context, fileKey, workspaceID string, value interface{}) error

	// Delete removes the value stored under (fileKey, workspaceID).
	Delete(ctx context.Context, fileKey, workspaceID string) error

	// ListWorkspaces returns every workspace id that has persisted data.
	ListWorkspaces(ctx context.Context) ([]string, error)
}
