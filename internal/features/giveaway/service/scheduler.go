package service

import (
	"context"
	"errors"
	"math"
	"time"

	"giveaway-engine/internal/common/logger"
	"giveaway-engine/internal/features/giveaway/models"
	"giveaway-engine/internal/features/giveaway/repository"
	"giveaway-engine/internal/features/giveaway/timers"
	"giveaway-engine/internal/platform/chat"
)

// MaxTimerDelay is the longest single timer the scheduler will arm. Delays
// past this ceiling are covered by chaining intermediate timers that
// re-evaluate the remaining time when they fire.
const MaxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond

// Scheduler owns the end timers of active events. At most one timer exists
// per event id; re-scheduling replaces the previous timer.
type Scheduler struct {
	store     repository.RecordStore
	timers    *timers.Registry
	ending    *EndingProcessor
	entries   *EntryService
	observers *chat.ReactionObservers
	maxDelay  time.Duration
	now       func() time.Time
}

func NewScheduler(store repository.RecordStore, reg *timers.Registry, ending *EndingProcessor, entries *EntryService, observers *chat.ReactionObservers) *Scheduler {
	return &Scheduler{
		store:     store,
		timers:    reg,
		ending:    ending,
		entries:   entries,
		observers: observers,
		maxDelay:  MaxTimerDelay,
		now:       time.Now,
	}
}

// ScheduleEnd arms (or replaces) the end timer for the event. An already
// finished event gets its timer and reaction listener torn down instead.
// An overdue event is ended inline before returning.
func (s *Scheduler) ScheduleEnd(g *models.Giveaway) {
	if g.Ended || g.Cancelled {
		s.observers.Release(g.MessageID)
		s.timers.Disarm(g.ID)
		return
	}

	remaining := g.EndTime.Sub(s.now())
	if remaining <= 0 {
		s.timers.Disarm(g.ID)
		if err := s.ending.ProcessEnd(context.Background(), g.WorkspaceID, g.ID); err != nil {
			logger.Error().
				Err(err).
				Str("giveaway_id", g.ID).
				Msg("Failed to end overdue giveaway")
		}
		return
	}

	workspaceID, id := g.WorkspaceID, g.ID

	if remaining > s.maxDelay {
		// Intermediate hop. When it fires, re-read the record so a
		// cancellation or reschedule during the hop is respected.
		s.timers.Arm(id, s.maxDelay, func() {
			s.rearm(workspaceID, id)
		})
		logger.Debug().
			Str("giveaway_id", id).
			Dur("remaining", remaining).
			Msg("End beyond timer ceiling, chaining")
		return
	}

	s.timers.Arm(id, remaining, func() {
		if err := s.ending.ProcessEnd(context.Background(), workspaceID, id); err != nil {
			logger.Error().
				Err(err).
				Str("giveaway_id", id).
				Msg("Failed to end giveaway on timer")
		}
	})
}

func (s *Scheduler) rearm(workspaceID, id string) {
	g, err := s.store.Get(context.Background(), workspaceID, id)
	if err != nil {
		if !errors.Is(err, repository.ErrGiveawayNotFound) {
			logger.Error().
				Err(err).
				Str("giveaway_id", id).
				Msg("Failed to reload giveaway for timer chain")
		}
		return
	}
	s.ScheduleEnd(g)
}

// ScheduleExisting walks every workspace in durable storage and restores
// timers for events that were active when the process last stopped. Events
// whose end time already passed are ended immediately; reaction listeners
// for live events are re-registered.
func (s *Scheduler) ScheduleExisting(ctx context.Context) error {
	workspaces, err := s.store.Workspaces(ctx)
	if err != nil {
		return err
	}

	restored, ended := 0, 0
	for _, workspaceID := range workspaces {
		active, err := s.store.ListActiveFromStorage(ctx, workspaceID)
		if err != nil {
			logger.Error().
				Err(err).
				Str("workspace_id", workspaceID).
				Msg("Failed to load active giveaways on startup")
			continue
		}

		for _, g := range active {
			if g.HasEnded(s.now()) {
				if err := s.ending.ProcessEnd(ctx, workspaceID, g.ID); err != nil {
					logger.Error().
						Err(err).
						Str("giveaway_id", g.ID).
						Msg("Failed to end overdue giveaway on startup")
					continue
				}
				ended++
				continue
			}

			if g.EntryMode == models.EntryModeReaction && g.MessageID != "" {
				s.observers.Register(g.MessageID, g.EndTime, s.entries.ObserverHandler(workspaceID, g.ID))
			}
			s.ScheduleEnd(g)
			restored++
		}
	}

	logger.Info().
		Int("restored", restored).
		Int("ended_overdue", ended).
		Msg("Recovered giveaway schedule")
	return nil
}
