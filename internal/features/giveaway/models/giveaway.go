package models

import (
	"sort"
	"time"
)

// EntryMode is the mechanism by which users qualify for a giveaway.
type EntryMode string

const (
	EntryModeButton      EntryMode = "button"
	EntryModeReaction    EntryMode = "reaction"
	EntryModeTrivia      EntryMode = "trivia"
	EntryModeCompetition EntryMode = "competition"
)

// UnlimitedAttempts disables the per-user attempt cap for answer modes.
const UnlimitedAttempts = -1

// Giveaway is a live, ended or cancelled timed event. Records are scoped to
// a workspace and retained after ending until an administrator removes them.
type Giveaway struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	ChannelID   string `json:"channel_id"`
	MessageID   string `json:"message_id,omitempty"`

	Title     string    `json:"title"`
	Prizes    []string  `json:"prizes"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatorID string    `json:"creator_id"`

	EntryMode   EntryMode `json:"entry_mode"`
	WinnerCount int       `json:"winner_count"`

	Participants []string `json:"participants"`
	Winners      []string `json:"winners,omitempty"`
	Ended        bool     `json:"ended"`
	Cancelled    bool     `json:"cancelled"`

	// Trivia / competition fields.
	Question    string `json:"question,omitempty"`
	Answer      string `json:"answer,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty"` // -1 = unlimited
	// AttemptCounts records how many answers each user has submitted.
	AttemptCounts map[string]int `json:"attempt_counts,omitempty"`

	// Reaction mode fields.
	ReactionEmoji   string `json:"reaction_emoji,omitempty"`
	ReactionDisplay string `json:"reaction_display,omitempty"`

	RequiredRoleIDs []string `json:"required_role_ids,omitempty"`
	BlockedRoleIDs  []string `json:"blocked_role_ids,omitempty"`

	// Placements maps user id to a dense zero-based rank, assigned in
	// arrival order of first correct answer (competition mode).
	Placements      map[string]int `json:"placements,omitempty"`
	LiveLeaderboard bool           `json:"live_leaderboard,omitempty"`

	// Claimed lists winners who have claimed their prize.
	Claimed []string `json:"claimed,omitempty"`
	// PrizeAssignments maps winner id to prize string, populated at ending.
	PrizeAssignments map[string]string `json:"prize_assignments,omitempty"`
}

// IsOpen reports whether the giveaway still accepts entries at the given
// instant.
func (g *Giveaway) IsOpen(now time.Time) bool {
	return !g.Ended && !g.Cancelled && g.EndTime.After(now)
}

// HasEnded reports whether the expiry has passed.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return !g.EndTime.After(now)
}

// HasParticipant reports whether the user has already entered.
func (g *Giveaway) HasParticipant(userID string) bool {
	for _, id := range g.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// HasClaimed reports whether the winner already claimed their prize.
func (g *Giveaway) HasClaimed(userID string) bool {
	for _, id := range g.Claimed {
		if id == userID {
			return true
		}
	}
	return false
}

// IsWinner reports whether the user is among the selected winners.
func (g *Giveaway) IsWinner(userID string) bool {
	for _, id := range g.Winners {
		if id == userID {
			return true
		}
	}
	return false
}

// Attempts returns the recorded answer attempts for a user.
func (g *Giveaway) Attempts(userID string) int {
	if g.AttemptCounts == nil {
		return 0
	}
	return g.AttemptCounts[userID]
}

// AttemptsExhausted reports whether the user hit the configured attempt cap.
// A cap of zero or UnlimitedAttempts means no cap.
func (g *Giveaway) AttemptsExhausted(userID string) bool {
	if g.MaxAttempts <= 0 {
		return false
	}
	return g.Attempts(userID) >= g.MaxAttempts
}

// PlacementsInOrder returns the competition entrants ordered by placement
// rank ascending.
func (g *Giveaway) PlacementsInOrder() []string {
	users := make([]string, 0, len(g.Placements))
	for id := range g.Placements {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		return g.Placements[users[i]] < g.Placements[users[j]]
	})
	return users
}

// Clone returns a deep copy of the record so cached state cannot be mutated
// by callers.
func (g *Giveaway) Clone() *Giveaway {
	c := *g
	c.Prizes = append([]string(nil), g.Prizes...)
	c.Participants = append([]string(nil), g.Participants...)
	c.Winners = append([]string(nil), g.Winners...)
	c.RequiredRoleIDs = append([]string(nil), g.RequiredRoleIDs...)
	c.BlockedRoleIDs = append([]string(nil), g.BlockedRoleIDs...)
	c.Claimed = append([]string(nil), g.Claimed...)
	if g.AttemptCounts != nil {
		c.AttemptCounts = make(map[string]int, len(g.AttemptCounts))
		for k, v := range g.AttemptCounts {
			c.AttemptCounts[k] = v
		}
	}
	if g.Placements != nil {
		c.Placements = make(map[string]int, len(g.Placements))
		for k, v := range g.Placements {
			c.Placements[k] = v
		}
	}
	if g.PrizeAssignments != nil {
		c.PrizeAssignments = make(map[string]string, len(g.PrizeAssignments))
		for k, v := range g.PrizeAssignments {
			c.PrizeAssignments[k] = v
		}
	}
	return &c
}

// GiveawayPatch is a partial update applied by the record store. Nil fields
// are left unchanged.
type GiveawayPatch struct {
	MessageID        *string            `json:"message_id,omitempty"`
	Participants     *[]string          `json:"participants,omitempty"`
	Winners          *[]string          `json:"winners,omitempty"`
	PrizeAssignments *map[string]string `json:"prize_assignments,omitempty"`
	Placements       *map[string]int    `json:"placements,omitempty"`
	AttemptCounts    *map[string]int    `json:"attempt_counts,omitempty"`
	Claimed          *[]string          `json:"claimed,omitempty"`
	Ended            *bool              `json:"ended,omitempty"`
	Cancelled        *bool              `json:"cancelled,omitempty"`
}

// Apply merges the patch into the record.
func (p *GiveawayPatch) Apply(g *Giveaway) {
	if p.MessageID != nil {
		g.MessageID = *p.MessageID
	}
	if p.Participants != nil {
		g.Participants = *p.Participants
	}
	if p.Winners != nil {
		g.Winners = *p.Winners
	}
	if p.PrizeAssignments != nil {
		g.PrizeAssignments = *p.PrizeAssignments
	}
	if p.Placements != nil {
		g.Placements = *p.Placements
	}
	if p.AttemptCounts != nil {
		g.AttemptCounts = *p.AttemptCounts
	}
	if p.Claimed != nil {
		g.Claimed = *p.Claimed
	}
	if p.Ended != nil {
		g.Ended = *p.Ended
	}
	if p.Cancelled != nil {
		g.Cancelled = *p.Cancelled
	}
}
