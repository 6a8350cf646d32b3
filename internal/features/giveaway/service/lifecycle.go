package service

import (
	"context"
	"errors"
	"fmt"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/timers"
	"giveaway-engine/internal/platform/chat"
)

// LifecycleService covers the administrative operations on live and ended
// events: cancel, force finish, delete, prize claims and read access.
type LifecycleService struct {
	store     repository.RecordStore
	chat      chat.Client
	timers    *timers.Registry
	observers *chat.ReactionObservers
	ending    *EndingProcessor
}

func NewLifecycleService(store repository.RecordStore, client chat.Client, reg *timers.Registry, observers *chat.ReactionObservers, ending *EndingProcessor) *LifecycleService {
	return &LifecycleService{
		store:     store,
		chat:      client,
		timers:    reg,
		observers: observers,
		ending:    ending,
	}
}

// Cancel closes the event without selecting winners. It reports false when
// the event had already reached a terminal state.
func (l *LifecycleService) Cancel(ctx context.Context, workspaceID, id string) (bool, error) {
	unlock := l.ending.locks.Lock(id)
	defer unlock()

	g, err := l.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return false, ErrNotFound
		}
		return false, err
	}
	if g.Ended || g.Cancelled {
		return false, nil
	}

	ended, cancelled := true, true
	winners := []string{}
	if _, err := l.store.Update(ctx, workspaceID, id, &models.GiveawayPatch{
		Ended:     &ended,
		Cancelled: &cancelled,
		Winners:   &winners,
	}); err != nil {
		return false, err
	}

	l.timers.Disarm(id)
	l.observers.Release(g.MessageID)

	if g.MessageID != "" {
		edit := fmt.Sprintf("**%s** was cancelled. No winners were selected.", g.Title)
		if err := l.chat.EditMessage(ctx, g.ChannelID, g.MessageID, edit); err != nil {
			logger.Warn().
				Err(err).
				Str("giveaway_id", id).
				Msg("Failed to edit cancelled announcement")
		}
	}

	logger.Info().
		Str("giveaway_id", id).
		Str("workspace_id", workspaceID).
		Msg("Giveaway cancelled")
	return true, nil
}

// ForceFinish ends the event now, without waiting for its end time.
func (l *LifecycleService) ForceFinish(ctx context.Context, workspaceID, id string) error {
	l.timers.Disarm(id)
	return l.ending.ProcessEnd(ctx, workspaceID, id)
}

// Delete removes the record entirely, along with any timer still armed and
// any reaction listener still attached to its announcement.
func (l *LifecycleService) Delete(ctx context.Context, workspaceID, id string) error {
	g, err := l.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return ErrNotFound
		}
		return err
	}

	ok, err := l.store.Remove(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	l.observers.Release(g.MessageID)
	return nil
}

// Claim marks the winner's prize as claimed and returns the prize string.
func (l *LifecycleService) Claim(ctx context.Context, workspaceID, id, userID string) (string, error) {
	unlock := l.ending.locks.Lock(id)
	defer unlock()

	g, err := l.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	if !g.Ended || g.Cancelled {
		return "", reject("this giveaway has not finished yet")
	}
	if !g.IsWinner(userID) {
		return "", reject("only winners can claim a prize")
	}
	if g.HasClaimed(userID) {
		return "", reject("you have already claimed your prize")
	}

	claimed := append(g.Claimed, userID)
	if _, err := l.store.Update(ctx, workspaceID, id, &models.GiveawayPatch{Claimed: &claimed}); err != nil {
		return "", err
	}
	return g.PrizeAssignments[userID], nil
}

// Get returns the record redacted for the viewer.
func (l *LifecycleService) Get(ctx context.Context, workspaceID, id, viewerID string) (*models.Giveaway, error) {
	g, err := l.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Redact(g, viewerID), nil
}

// List returns the workspace's records, newest first, redacted for the
// viewer.
func (l *LifecycleService) List(ctx context.Context, workspaceID, viewerID string, activeOnly bool) ([]*models.Giveaway, error) {
	gs, err := l.store.ListAll(ctx, workspaceID, activeOnly)
	if err != nil {
		return nil, err
	}
	for i, g := range gs {
		gs[i] = Redact(g, viewerID)
	}
	return gs, nil
}

// Redact strips fields the viewer is not entitled to: the prize list is
// creator-only, the expected answer stays creator-only while the event
// runs, and prize assignments other than the viewer's own are hidden from
// everyone but the creator.
func Redact(g *models.Giveaway, viewerID string) *models.Giveaway {
	if viewerID == g.CreatorID {
		return g
	}

	out := g.Clone()
	out.Prizes = nil
	if !out.Ended {
		out.Answer = ""
	}
	if out.PrizeAssignments != nil {
		redacted := make(map[string]string, 1)
		if prize, ok := out.PrizeAssignments[viewerID]; ok {
			redacted[viewerID] = prize
		}
		out.PrizeAssignments = redacted
	}
	return out
}
