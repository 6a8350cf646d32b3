package repository

import (
	"context"
	"sort"
	"sync"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/timers"
	"giveaway-engine/internal/platform/storage"
)

const (
	fileGiveaways = "giveaways"
	filePending   = "pending"
)

// Store implements RecordStore over the durable-storage collaborator with a
// lazily populated per-workspace cache. The cache is invalidated only by
// explicit InvalidateCache, never by expiry.
type Store struct {
	storage storage.Store
	timers  *timers.Registry

	mu      sync.Mutex
	cache   map[string]map[string]*models.Giveaway
	pending map[string]map[string]*models.PendingGiveaway
}

func NewStore(st storage.Store, reg *timers.Registry) *Store {
	return &Store{
		storage: st,
		timers:  reg,
		cache:   make(map[string]map[string]*models.Giveaway),
		pending: make(map[string]map[string]*models.PendingGiveaway),
	}
}

var _ RecordStore = (*Store)(nil)

// records returns the workspace's cached record map, loading it from
// durable storage on first access. Callers must hold s.mu.
func (s *Store) records(ctx context.Context, workspaceID string) (map[string]*models.Giveaway, error) {
	if recs, ok := s.cache[workspaceID]; ok {
		return recs, nil
	}

	recs := make(map[string]*models.Giveaway)
	if _, err := s.storage.Load(ctx, fileGiveaways, workspaceID, &recs); err != nil {
		return nil, err
	}
	s.cache[workspaceID] = recs
	return recs, nil
}

func (s *Store) pendingRecords(ctx context.Context, workspaceID string) (map[string]*models.PendingGiveaway, error) {
	if recs, ok := s.pending[workspaceID]; ok {
		return recs, nil
	}

	recs := make(map[string]*models.PendingGiveaway)
	if _, err := s.storage.Load(ctx, filePending, workspaceID, &recs); err != nil {
		return nil, err
	}
	s.pending[workspaceID] = recs
	return recs, nil
}

func (s *Store) persist(ctx context.Context, workspaceID string, recs map[string]*models.Giveaway) error {
	return s.storage.Save(ctx, fileGiveaways, workspaceID, recs)
}

func (s *Store) persistPending(ctx context.Context, workspaceID string, recs map[string]*models.PendingGiveaway) error {
	return s.storage.Save(ctx, filePending, workspaceID, recs)
}

func (s *Store) Get(ctx context.Context, workspaceID, id string) (*models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	g, ok := recs[id]
	if !ok {
		return nil, ErrGiveawayNotFound
	}
	return g.Clone(), nil
}

func (s *Store) Add(ctx context.Context, g *models.Giveaway) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records(ctx, g.WorkspaceID)
	if err != nil {
		return false, err
	}
	if _, exists := recs[g.ID]; exists {
		logger.Warn().
			Str("giveaway_id", g.ID).
			Str("workspace_id", g.WorkspaceID).
			Msg("Rejected add: id already exists")
		return false, nil
	}

	recs[g.ID] = g.Clone()
	if err := s.persist(ctx, g.WorkspaceID, recs); err != nil {
		delete(recs, g.ID)
		return false, err
	}
	return true, nil
}

func (s *Store) Update(ctx context.Context, workspaceID, id string, patch *models.GiveawayPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	g, ok := recs[id]
	if !ok {
		return false, nil
	}

	updated := g.Clone()
	patch.Apply(updated)
	recs[id] = updated
	if err := s.persist(ctx, workspaceID, recs); err != nil {
		recs[id] = g
		return false, err
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, workspaceID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	g, ok := recs[id]
	if !ok {
		return false, nil
	}

	delete(recs, id)
	if err := s.persist(ctx, workspaceID, recs); err != nil {
		recs[id] = g
		return false, err
	}

	// The end timer must not outlive the record.
	s.timers.Disarm(id)
	return true, nil
}

func (s *Store) ListAll(ctx context.Context, workspaceID string, activeOnly bool) ([]*models.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.records(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Giveaway, 0, len(recs))
	for _, g := range recs {
		if activeOnly && (g.Ended || g.Cancelled) {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) ListActiveFromStorage(ctx context.Context, workspaceID string) ([]*models.Giveaway, error) {
	recs := make(map[string]*models.Giveaway)
	if _, err := s.storage.Load(ctx, fileGiveaways, workspaceID, &recs); err != nil {
		return nil, err
	}

	out := make([]*models.Giveaway, 0, len(recs))
	for _, g := range recs {
		if g.Ended || g.Cancelled {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) GetPending(ctx context.Context, workspaceID, id string) (*models.PendingGiveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.pendingRecords(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	p, ok := recs[id]
	if !ok {
		return nil, ErrPendingNotFound
	}
	return p.Clone(), nil
}

func (s *Store) AddPending(ctx context.Context, p *models.PendingGiveaway) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.pendingRecords(ctx, p.WorkspaceID)
	if err != nil {
		return false, err
	}
	if _, exists := recs[p.ID]; exists {
		logger.Warn().
			Str("pending_id", p.ID).
			Str("workspace_id", p.WorkspaceID).
			Msg("Rejected add: pending id already exists")
		return false, nil
	}

	recs[p.ID] = p.Clone()
	if err := s.persistPending(ctx, p.WorkspaceID, recs); err != nil {
		delete(recs, p.ID)
		return false, err
	}
	return true, nil
}

func (s *Store) UpdatePending(ctx context.Context, workspaceID, id string, patch *models.PendingPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.pendingRecords(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	p, ok := recs[id]
	if !ok {
		return false, nil
	}

	updated := p.Clone()
	patch.Apply(updated)
	recs[id] = updated
	if err := s.persistPending(ctx, workspaceID, recs); err != nil {
		recs[id] = p
		return false, err
	}
	return true, nil
}

func (s *Store) RemovePending(ctx context.Context, workspaceID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.pendingRecords(ctx, workspaceID)
	if err != nil {
		return false, err
	}
	p, ok := recs[id]
	if !ok {
		return false, nil
	}

	delete(recs, id)
	if err := s.persistPending(ctx, workspaceID, recs); err != nil {
		recs[id] = p
		return false, err
	}
	return true, nil
}

func (s *Store) ListPending(ctx context.Context, workspaceID string) ([]*models.PendingGiveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.pendingRecords(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.PendingGiveaway, 0, len(recs))
	for _, p := range recs {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Workspaces(ctx context.Context) ([]string, error) {
	return s.storage.ListWorkspaces(ctx)
}

func (s *Store) InvalidateCache(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, workspaceID)
	delete(s.pending, workspaceID)
}
