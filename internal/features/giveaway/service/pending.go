package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/platform/chat"
)

// PendingService manages draft events and their promotion to live ones.
type PendingService struct {
	store     repository.RecordStore
	chat      chat.Client
	observers *chat.ReactionObservers
	scheduler *Scheduler
	entries   *EntryService
	now       func() time.Time
}

func NewPendingService(store repository.RecordStore, client chat.Client, observers *chat.ReactionObservers, scheduler *Scheduler, entries *EntryService) *PendingService {
	return &PendingService{
		store:     store,
		chat:      client,
		observers: observers,
		scheduler: scheduler,
		entries:   entries,
		now:       time.Now,
	}
}

// CreateDraft opens a fresh draft for the creator. Every field except the
// identity ones starts empty; the UI layer fills them in over time.
func (p *PendingService) CreateDraft(ctx context.Context, workspaceID, creatorID string, mode models.EntryMode) (*models.PendingGiveaway, error) {
	draft := &models.PendingGiveaway{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		CreatorID:   creatorID,
		CreatedAt:   p.now(),
		EntryMode:   mode,
	}
	ok, err := p.store.AddPending(ctx, draft)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("draft id collision for %s", draft.ID)
	}
	return draft, nil
}

// UpdateDraft applies a partial edit and returns the updated draft.
func (p *PendingService) UpdateDraft(ctx context.Context, workspaceID, id string, patch *models.PendingPatch) (*models.PendingGiveaway, error) {
	ok, err := p.store.UpdatePending(ctx, workspaceID, id, patch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return p.store.GetPending(ctx, workspaceID, id)
}

// Get returns a single draft.
func (p *PendingService) Get(ctx context.Context, workspaceID, id string) (*models.PendingGiveaway, error) {
	draft, err := p.store.GetPending(ctx, workspaceID, id)
	if err != nil {
		if err == repository.ErrPendingNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return draft, nil
}

// List returns the workspace's drafts, newest first.
func (p *PendingService) List(ctx context.Context, workspaceID string) ([]*models.PendingGiveaway, error) {
	return p.store.ListPending(ctx, workspaceID)
}

// IsReadyToStart reports whether the draft can be promoted.
func (p *PendingService) IsReadyToStart(draft *models.PendingGiveaway) bool {
	return models.DeriveStatus(draft) == models.PendingStatusReady
}

// Discard deletes a draft without starting it.
func (p *PendingService) Discard(ctx context.Context, workspaceID, id string) error {
	ok, err := p.store.RemovePending(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Start promotes a ready draft into a live event: announce it in its
// channel, persist the record, arm the end timer and drop the draft.
func (p *PendingService) Start(ctx context.Context, workspaceID, id string) (*models.Giveaway, error) {
	draft, err := p.store.GetPending(ctx, workspaceID, id)
	if err != nil {
		if err == repository.ErrPendingNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.IsReadyToStart(draft) {
		return nil, ErrNotReady
	}

	channel, err := p.chat.Channel(ctx, draft.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel %s: %w", draft.ChannelID, err)
	}
	if !channel.Sendable {
		return nil, reject("the selected channel cannot receive messages")
	}

	now := p.now()
	g := &models.Giveaway{
		ID:              uuid.NewString(),
		WorkspaceID:     workspaceID,
		ChannelID:       draft.ChannelID,
		Title:           draft.Title,
		Prizes:          append([]string(nil), draft.Prizes...),
		StartTime:       now,
		EndTime:         now.Add(time.Duration(draft.Duration) * time.Millisecond),
		CreatorID:       draft.CreatorID,
		EntryMode:       draft.EntryMode,
		WinnerCount:     draft.WinnerCount,
		Participants:    []string{},
		Question:        draft.Question,
		Answer:          draft.Answer,
		MaxAttempts:     draft.MaxAttempts,
		ReactionEmoji:   draft.ReactionEmoji,
		ReactionDisplay: draft.ReactionDisplay,
		RequiredRoleIDs: append([]string(nil), draft.RequiredRoleIDs...),
		BlockedRoleIDs:  append([]string(nil), draft.BlockedRoleIDs...),
		LiveLeaderboard: draft.LiveLeaderboard,
	}
	if g.EntryMode == models.EntryModeCompetition {
		g.Placements = map[string]int{}
	}

	ok, err := p.store.Add(ctx, g)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("giveaway id collision for %s", g.ID)
	}

	msg, err := p.chat.SendMessage(ctx, g.ChannelID, AnnouncementText(g))
	if err != nil {
		// Roll the record back so a retry does not leave an orphan.
		if _, rmErr := p.store.Remove(ctx, workspaceID, g.ID); rmErr != nil {
			logger.Error().
				Err(rmErr).
				Str("giveaway_id", g.ID).
				Msg("Failed to remove giveaway after announce failure")
		}
		return nil, fmt.Errorf("failed to announce giveaway: %w", err)
	}

	g.MessageID = msg.ID
	if _, err := p.store.Update(ctx, workspaceID, g.ID, &models.GiveawayPatch{MessageID: &msg.ID}); err != nil {
		return nil, err
	}

	if g.EntryMode == models.EntryModeReaction {
		if err := p.chat.AddReaction(ctx, g.ChannelID, g.MessageID, g.ReactionEmoji); err != nil {
			logger.Warn().
				Err(err).
				Str("giveaway_id", g.ID).
				Msg("Failed to seed announcement reaction")
		}
		p.observers.Register(g.MessageID, g.EndTime, p.entries.ObserverHandler(workspaceID, g.ID))
	}

	p.scheduler.ScheduleEnd(g)

	if _, err := p.store.RemovePending(ctx, workspaceID, id); err != nil {
		logger.Warn().
			Err(err).
			Str("pending_id", id).
			Msg("Failed to drop promoted draft")
	}

	logger.Info().
		Str("giveaway_id", g.ID).
		Str("workspace_id", workspaceID).
		Str("entry_mode", string(g.EntryMode)).
		Time("end_time", g.EndTime).
		Msg("Giveaway started")
	return g, nil
}

// AnnouncementText renders the channel message a new event is announced with.
func AnnouncementText(g *models.Giveaway) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎁 **%s**\n", g.Title)
	// Prize strings stay confidential until winners are revealed; the
	// announcement only says how many there are.
	fmt.Fprintf(&b, "Prizes: %d\n", len(g.Prizes))
	fmt.Fprintf(&b, "Winners: %d\n", g.WinnerCount)
	fmt.Fprintf(&b, "Runs for: %s\n", models.FormatDuration(g.EndTime.Sub(g.StartTime)))
	fmt.Fprintf(&b, "Ends: %s\n", g.EndTime.UTC().Format(time.RFC1123))

	switch g.EntryMode {
	case models.EntryModeButton:
		b.WriteString("Press the button below to enter!")
	case models.EntryModeReaction:
		display := g.ReactionDisplay
		if display == "" {
			display = g.ReactionEmoji
		}
		fmt.Fprintf(&b, "React with %s to enter!", display)
	case models.EntryModeTrivia:
		fmt.Fprintf(&b, "Question: %s\nAnswer correctly to enter!", g.Question)
	case models.EntryModeCompetition:
		fmt.Fprintf(&b, "Question: %s\nFirst %d correct answers win!", g.Question, g.WinnerCount)
	}
	return b.String()
}
