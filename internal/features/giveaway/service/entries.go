package service

import (
	"context"
	"strings"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/platform/chat"
)

// EntryService records entries for every mode. Each mutating path holds the
// per-event lock shared with the ending processor, so an entry and an
// ending never interleave their read-modify-write cycles.
type EntryService struct {
	store     repository.RecordStore
	ending    *EndingProcessor
	validator *EntryValidator
}

func NewEntryService(store repository.RecordStore, ending *EndingProcessor) *EntryService {
	return &EntryService{
		store:     store,
		ending:    ending,
		validator: NewEntryValidator(store),
	}
}

// JoinButton records a button-press entry.
func (e *EntryService) JoinButton(ctx context.Context, workspaceID, id string, member chat.Member) error {
	unlock := e.ending.locks.Lock(id)
	defer unlock()

	g, err := e.validator.Validate(ctx, workspaceID, id, member, models.EntryModeButton)
	if err != nil {
		return err
	}
	return e.addParticipant(ctx, g, member.User.ID)
}

// HandleReaction records a reaction entry. Rejections are silent; the
// reacting user gets no reply, matching how chat reactions behave.
func (e *EntryService) HandleReaction(ctx context.Context, workspaceID, id string, ev chat.ReactionEvent) {
	unlock := e.ending.locks.Lock(id)
	defer unlock()

	g, err := e.validator.Validate(ctx, workspaceID, id, ev.Member, models.EntryModeReaction)
	if err != nil {
		return
	}
	if ev.Emoji != g.ReactionEmoji {
		return
	}
	if err := e.addParticipant(ctx, g, ev.Member.User.ID); err != nil {
		logger.Error().
			Err(err).
			Str("giveaway_id", id).
			Msg("Failed to record reaction entry")
	}
}

// ObserverHandler adapts HandleReaction to the reaction-listener signature
// for a specific event.
func (e *EntryService) ObserverHandler(workspaceID, id string) chat.ReactionHandler {
	return func(ctx context.Context, ev chat.ReactionEvent) {
		e.HandleReaction(ctx, workspaceID, id, ev)
	}
}

// AnswerTrivia checks the member's answer. A wrong answer still consumes an
// attempt; a correct one records the entry. The returned bool reports
// whether the answer was correct.
func (e *EntryService) AnswerTrivia(ctx context.Context, workspaceID, id string, member chat.Member, answer string) (bool, error) {
	unlock := e.ending.locks.Lock(id)
	defer unlock()

	g, err := e.validator.Validate(ctx, workspaceID, id, member, models.EntryModeTrivia)
	if err != nil {
		return false, err
	}

	userID := member.User.ID
	correct := answersMatch(answer, g.Answer)

	attempts := cloneAttempts(g.AttemptCounts)
	attempts[userID]++

	patch := &models.GiveawayPatch{AttemptCounts: &attempts}
	if correct {
		participants := append(g.Participants, userID)
		patch.Participants = &participants
	}
	if _, err := e.store.Update(ctx, workspaceID, id, patch); err != nil {
		return false, err
	}
	return correct, nil
}

// AnswerCompetition checks the member's answer and, when correct, assigns
// the next free placement. Filling the last placement ends the event
// immediately. The returned bool reports whether the answer was correct.
func (e *EntryService) AnswerCompetition(ctx context.Context, workspaceID, id string, member chat.Member, answer string) (bool, error) {
	unlock := e.ending.locks.Lock(id)

	g, err := e.validator.Validate(ctx, workspaceID, id, member, models.EntryModeCompetition)
	if err != nil {
		unlock()
		return false, err
	}

	userID := member.User.ID
	correct := answersMatch(answer, g.Answer)

	attempts := cloneAttempts(g.AttemptCounts)
	attempts[userID]++

	patch := &models.GiveawayPatch{AttemptCounts: &attempts}
	full := false
	if correct {
		placements := make(map[string]int, len(g.Placements)+1)
		for k, v := range g.Placements {
			placements[k] = v
		}
		placements[userID] = len(g.Placements)
		patch.Placements = &placements

		participants := append(g.Participants, userID)
		patch.Participants = &participants

		full = len(placements) >= g.WinnerCount
	}
	if _, err := e.store.Update(ctx, workspaceID, id, patch); err != nil {
		unlock()
		return false, err
	}
	unlock()

	if full {
		// Last placement taken; no reason to wait for the timer.
		if err := e.ending.ProcessEnd(ctx, workspaceID, id); err != nil {
			logger.Error().
				Err(err).
				Str("giveaway_id", id).
				Msg("Failed to end filled competition")
		}
	}
	return correct, nil
}

func (e *EntryService) addParticipant(ctx context.Context, g *models.Giveaway, userID string) error {
	participants := append(g.Participants, userID)
	_, err := e.store.Update(ctx, g.WorkspaceID, g.ID, &models.GiveawayPatch{Participants: &participants})
	return err
}

// answersMatch compares answers case-insensitively after trimming
// surrounding whitespace.
func answersMatch(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}

func cloneAttempts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
