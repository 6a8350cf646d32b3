package models

import "time"

// PendingStatus is the completeness state of a draft.
type PendingStatus string

const (
	PendingStatusDraft PendingStatus = "draft"
	PendingStatusReady PendingStatus = "ready"
)

// PendingGiveaway is a draft under construction by the UI layer. It carries
// the configurable fields of a Giveaway minus the ones that only exist once
// the event is live. The draft is deleted on promotion or discard.
type PendingGiveaway struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`

	Title       string    `json:"title"`
	Prizes      []string  `json:"prizes"`
	Duration    int64     `json:"duration_ms"`
	ChannelID   string    `json:"channel_id"`
	EntryMode   EntryMode `json:"entry_mode"`
	WinnerCount int       `json:"winner_count"`

	Question        string   `json:"question,omitempty"`
	Answer          string   `json:"answer,omitempty"`
	MaxAttempts     int      `json:"max_attempts,omitempty"`
	ReactionEmoji   string   `json:"reaction_emoji,omitempty"`
	ReactionDisplay string   `json:"reaction_display,omitempty"`
	RequiredRoleIDs []string `json:"required_role_ids,omitempty"`
	BlockedRoleIDs  []string `json:"blocked_role_ids,omitempty"`
	LiveLeaderboard bool     `json:"live_leaderboard,omitempty"`

	// ReadyPinned forces ready status regardless of field completeness.
	ReadyPinned bool `json:"ready_pinned,omitempty"`
}

// DeriveStatus computes the draft status from field completeness. The
// status is never stored; it is derived on read so it cannot go stale.
func DeriveStatus(p *PendingGiveaway) PendingStatus {
	if p.ReadyPinned {
		return PendingStatusReady
	}
	if p.Title == "" {
		return PendingStatusDraft
	}
	if len(p.Prizes) == 0 {
		return PendingStatusDraft
	}
	for _, prize := range p.Prizes {
		if prize == "" {
			return PendingStatusDraft
		}
	}
	if p.Duration <= 0 || p.WinnerCount <= 0 {
		return PendingStatusDraft
	}
	if p.ChannelID == "" {
		return PendingStatusDraft
	}

	switch p.EntryMode {
	case EntryModeButton:
	case EntryModeReaction:
		if p.ReactionEmoji == "" {
			return PendingStatusDraft
		}
	case EntryModeTrivia, EntryModeCompetition:
		if p.Question == "" || p.Answer == "" {
			return PendingStatusDraft
		}
	default:
		return PendingStatusDraft
	}

	return PendingStatusReady
}

// PendingPatch is a partial update to a draft. Nil fields are unchanged.
type PendingPatch struct {
	Title           *string    `json:"title,omitempty"`
	Prizes          *[]string  `json:"prizes,omitempty"`
	Duration        *int64     `json:"duration_ms,omitempty"`
	ChannelID       *string    `json:"channel_id,omitempty"`
	EntryMode       *EntryMode `json:"entry_mode,omitempty"`
	WinnerCount     *int       `json:"winner_count,omitempty"`
	Question        *string    `json:"question,omitempty"`
	Answer          *string    `json:"answer,omitempty"`
	MaxAttempts     *int       `json:"max_attempts,omitempty"`
	ReactionEmoji   *string    `json:"reaction_emoji,omitempty"`
	ReactionDisplay *string    `json:"reaction_display,omitempty"`
	RequiredRoleIDs *[]string  `json:"required_role_ids,omitempty"`
	BlockedRoleIDs  *[]string  `json:"blocked_role_ids,omitempty"`
	LiveLeaderboard *bool      `json:"live_leaderboard,omitempty"`
	ReadyPinned     *bool      `json:"ready_pinned,omitempty"`
}

// Apply merges the patch into the draft.
func (p *PendingPatch) Apply(d *PendingGiveaway) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Prizes != nil {
		d.Prizes = *p.Prizes
	}
	if p.Duration != nil {
		d.Duration = *p.Duration
	}
	if p.ChannelID != nil {
		d.ChannelID = *p.ChannelID
	}
	if p.EntryMode != nil {
		d.EntryMode = *p.EntryMode
	}
	if p.WinnerCount != nil {
		d.WinnerCount = *p.WinnerCount
	}
	if p.Question != nil {
		d.Question = *p.Question
	}
	if p.Answer != nil {
		d.Answer = *p.Answer
	}
	if p.MaxAttempts != nil {
		d.MaxAttempts = *p.MaxAttempts
	}
	if p.ReactionEmoji != nil {
		d.ReactionEmoji = *p.ReactionEmoji
	}
	if p.ReactionDisplay != nil {
		d.ReactionDisplay = *p.ReactionDisplay
	}
	if p.RequiredRoleIDs != nil {
		d.RequiredRoleIDs = *p.RequiredRoleIDs
	}
	if p.BlockedRoleIDs != nil {
		d.BlockedRoleIDs = *p.BlockedRoleIDs
	}
	if p.LiveLeaderboard != nil {
		d.LiveLeaderboard = *p.LiveLeaderboard
	}
	if p.ReadyPinned != nil {
		d.ReadyPinned = *p.ReadyPinned
	}
}

// Clone returns a deep copy of the draft.
func (p *PendingGiveaway) Clone() *PendingGiveaway {
	c := *p
	c.Prizes = append([]string(nil), p.Prizes...)
	c.RequiredRoleIDs = append([]string(nil), p.RequiredRoleIDs...)
	c.BlockedRoleIDs = append([]string(nil), p.BlockedRoleIDs...)
	return &c
}
