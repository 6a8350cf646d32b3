package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/platform/chat"
)

// EntryValidator is the single admission-control entry point for every
// entry mode. Checks run in a fixed order and short-circuit on the first
// failure; a rejection never mutates state.
type EntryValidator struct {
	store repository.RecordStore
	now   func() time.Time
}

func NewEntryValidator(store repository.RecordStore) *EntryValidator {
	return &EntryValidator{store: store, now: time.Now}
}

// Validate loads the event and checks that the member may enter it through
// the given mode. It returns the live record on success and a *Rejection
// (or ErrNotFound) otherwise.
func (v *EntryValidator) Validate(ctx context.Context, workspaceID, id string, member chat.Member, mode models.EntryMode) (*models.Giveaway, error) {
	g, err := v.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if g.EntryMode != mode {
		return nil, reject(fmt.Sprintf("this giveaway does not accept %s entries", mode))
	}

	if !g.IsOpen(v.now()) {
		return nil, reject("this giveaway has already ended")
	}

	if len(g.RequiredRoleIDs) > 0 && !member.HasAnyRole(g.RequiredRoleIDs) {
		return nil, reject("you do not have a role required to enter this giveaway")
	}

	if len(g.BlockedRoleIDs) > 0 && member.HasAnyRole(g.BlockedRoleIDs) {
		return nil, reject("one of your roles is blocked from this giveaway")
	}

	userID := member.User.ID

	if g.EntryMode == models.EntryModeCompetition {
		if len(g.Placements) >= g.WinnerCount {
			return nil, reject("all winning placements have already been taken")
		}
		if _, placed := g.Placements[userID]; placed {
			return nil, reject("you already secured a placement in this competition")
		}
	}

	switch g.EntryMode {
	case models.EntryModeTrivia, models.EntryModeCompetition:
		if g.AttemptsExhausted(userID) {
			return nil, reject(fmt.Sprintf("you have used all %d answer attempts", g.MaxAttempts))
		}
	}

	// Mode-specific duplicate entry check.
	switch g.EntryMode {
	case models.EntryModeButton, models.EntryModeReaction:
		if g.HasParticipant(userID) {
			return nil, reject("you have already entered this giveaway")
		}
	case models.EntryModeTrivia:
		if g.HasParticipant(userID) {
			return nil, reject("you have already answered correctly")
		}
	}

	return g, nil
}
