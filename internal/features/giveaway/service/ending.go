package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/platform/chat"
	"giveaway-engine/internal/utils/random"
)

// EndingProcessor transitions an event to its terminal state exactly once:
// participant reconciliation, winner selection, prize assignment, a single
// atomic persistence step, then best-effort notifications.
type EndingProcessor struct {
	store     repository.RecordStore
	chat      chat.Client
	observers *chat.ReactionObservers
	locks     *keyedMutex
}

func NewEndingProcessor(store repository.RecordStore, client chat.Client, observers *chat.ReactionObservers) *EndingProcessor {
	return &EndingProcessor{
		store:     store,
		chat:      client,
		observers: observers,
		locks:     newKeyedMutex(),
	}
}

// ProcessEnd ends the event. It is idempotent: repeated or concurrent calls
// for the same event observe the terminal record and return without
// reselecting winners. Once started, processing runs to completion.
func (p *EndingProcessor) ProcessEnd(ctx context.Context, workspaceID, id string) error {
	unlock := p.locks.Lock(id)
	defer unlock()

	g, err := p.store.Get(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, repository.ErrGiveawayNotFound) {
			logger.Debug().
				Str("giveaway_id", id).
				Str("workspace_id", workspaceID).
				Msg("Nothing to end, record is gone")
			return nil
		}
		return err
	}

	if g.Ended && !g.Cancelled {
		return nil
	}

	if g.Cancelled {
		if !g.Ended {
			ended := true
			if _, err := p.store.Update(ctx, workspaceID, id, &models.GiveawayPatch{Ended: &ended}); err != nil {
				return err
			}
		}
		return nil
	}

	// The live reaction listener must not outlive the event.
	p.observers.Release(g.MessageID)

	if g.EntryMode == models.EntryModeReaction {
		p.reconcileReactions(ctx, g)
	}

	winners, assignments, err := p.selectWinners(g)
	if err != nil {
		return fmt.Errorf("failed to select winners for giveaway %s: %w", id, err)
	}

	ended := true
	cancelled := false
	ok, err := p.store.Update(ctx, workspaceID, id, &models.GiveawayPatch{
		Ended:            &ended,
		Cancelled:        &cancelled,
		Winners:          &winners,
		PrizeAssignments: &assignments,
	})
	if err != nil {
		return fmt.Errorf("failed to persist ending for giveaway %s: %w", id, err)
	}
	if !ok {
		logger.Warn().
			Str("giveaway_id", id).
			Str("workspace_id", workspaceID).
			Msg("Record disappeared while ending")
		return nil
	}

	g.Winners = winners
	g.PrizeAssignments = assignments
	g.Ended = true
	p.notify(ctx, g)

	logger.Info().
		Str("giveaway_id", id).
		Str("workspace_id", workspaceID).
		Int("winners", len(winners)).
		Msg("Giveaway ended")
	return nil
}

// reconcileReactions merges reactors observed on the announcement message
// into the participant set, repairing entries that happened while the
// process was offline. The merged set is persisted before selection.
func (p *EndingProcessor) reconcileReactions(ctx context.Context, g *models.Giveaway) {
	if g.MessageID == "" {
		return
	}

	users, err := p.chat.ReactionUsers(ctx, g.ChannelID, g.MessageID, g.ReactionEmoji)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("giveaway_id", g.ID).
			Msg("Failed to fetch reactions for reconciliation")
		return
	}

	merged := false
	for _, u := range users {
		if u.Bot || g.HasParticipant(u.ID) {
			continue
		}
		g.Participants = append(g.Participants, u.ID)
		merged = true
	}
	if !merged {
		return
	}

	if _, err := p.store.Update(ctx, g.WorkspaceID, g.ID, &models.GiveawayPatch{
		Participants: &g.Participants,
	}); err != nil {
		logger.Error().
			Err(err).
			Str("giveaway_id", g.ID).
			Msg("Failed to persist reconciled participants")
	}
}

func (p *EndingProcessor) selectWinners(g *models.Giveaway) ([]string, map[string]string, error) {
	assignments := make(map[string]string)

	if g.EntryMode == models.EntryModeCompetition {
		// Placements are already rank-ordered; no randomness involved.
		winners := g.PlacementsInOrder()
		if len(winners) > g.WinnerCount {
			winners = winners[:g.WinnerCount]
		}
		for _, userID := range winners {
			place := g.Placements[userID]
			if place >= 0 && place < len(g.Prizes) {
				assignments[userID] = g.Prizes[place]
			}
		}
		return winners, assignments, nil
	}

	// Zero eligible participants is not an error; winners stays empty.
	winners, err := random.Sample(g.Participants, g.WinnerCount)
	if err != nil {
		return nil, nil, err
	}

	// Prizes are shuffled independently so the prize-to-winner mapping is
	// uniform too, not correlated with selection order.
	prizes := append([]string(nil), g.Prizes...)
	if err := random.Shuffle(prizes); err != nil {
		return nil, nil, err
	}
	for i, userID := range winners {
		if i < len(prizes) {
			assignments[userID] = prizes[i]
		}
	}
	return winners, assignments, nil
}

// notify performs the best-effort post-ending side effects. Each step is
// independently fault tolerant; a failure is logged and never rolls back
// the persisted terminal state.
func (p *EndingProcessor) notify(ctx context.Context, g *models.Giveaway) {
	results := p.resultsText(ctx, g)
	if _, err := p.chat.SendMessage(ctx, g.ChannelID, results); err != nil {
		logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to announce results")
	}

	if g.MessageID != "" {
		edit := fmt.Sprintf("**%s** has ended. See the results below.", g.Title)
		if err := p.chat.EditMessage(ctx, g.ChannelID, g.MessageID, edit); err != nil {
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to edit announcement")
		}
	}

	if g.EntryMode == models.EntryModeReaction && g.MessageID != "" {
		if err := p.chat.RemoveAllReactions(ctx, g.ChannelID, g.MessageID); err != nil {
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Failed to strip reactions")
		}
	}
}

func (p *EndingProcessor) resultsText(ctx context.Context, g *models.Giveaway) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 **%s** has ended!\n", g.Title)

	if len(g.Winners) == 0 {
		b.WriteString("No eligible participants, so no winners this time.")
		return b.String()
	}

	if g.EntryMode == models.EntryModeCompetition && g.LiveLeaderboard {
		b.WriteString(LeaderboardText(g))
		b.WriteString("\n")
	}

	b.WriteString("Winners:\n")
	for _, userID := range g.Winners {
		name := p.resolveName(ctx, g.ID, userID)
		if name == "" {
			// Unresolvable users are excluded from the announcement,
			// never fatal to processing.
			continue
		}
		fmt.Fprintf(&b, "• %s\n", name)
	}
	b.WriteString("Winners can claim their prize with the claim command.")
	return b.String()
}

func (p *EndingProcessor) resolveName(ctx context.Context, giveawayID, userID string) string {
	user, err := p.chat.User(ctx, userID)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("giveaway_id", giveawayID).
			Str("user_id", userID).
			Msg("Failed to resolve winner")
		return ""
	}
	return "@" + user.Username
}

// LeaderboardText formats the current competition placements, best first.
func LeaderboardText(g *models.Giveaway) string {
	var b strings.Builder
	b.WriteString("Leaderboard:\n")
	for i, userID := range g.PlacementsInOrder() {
		fmt.Fprintf(&b, "%d. <@%s>\n", i+1, userID)
	}
	return b.String()
}
