package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeDraft(mode EntryMode) *PendingGiveaway {
	p := &PendingGiveaway{
		ID:          "p1",
		WorkspaceID: "ws",
		CreatorID:   "creator",
		Title:       "Summer drop",
		Prizes:      []string{"keyboard"},
		Duration:    60_000,
		ChannelID:   "chan",
		EntryMode:   mode,
		WinnerCount: 1,
	}
	switch mode {
	case EntryModeReaction:
		p.ReactionEmoji = "🎉"
	case EntryModeTrivia, EntryModeCompetition:
		p.Question = "2+2?"
		p.Answer = "4"
	}
	return p
}

func TestDeriveStatus_ReadyPerMode(t *testing.T) {
	for _, mode := range []EntryMode{EntryModeButton, EntryModeReaction, EntryModeTrivia, EntryModeCompetition} {
		assert.Equal(t, PendingStatusReady, DeriveStatus(completeDraft(mode)), "mode %s", mode)
	}
}

func TestDeriveStatus_MissingFields(t *testing.T) {
	mutations := map[string]func(*PendingGiveaway){
		"no title":        func(p *PendingGiveaway) { p.Title = "" },
		"no prizes":       func(p *PendingGiveaway) { p.Prizes = nil },
		"blank prize":     func(p *PendingGiveaway) { p.Prizes = []string{"keyboard", ""} },
		"no duration":     func(p *PendingGiveaway) { p.Duration = 0 },
		"no winner count": func(p *PendingGiveaway) { p.WinnerCount = 0 },
		"no channel":      func(p *PendingGiveaway) { p.ChannelID = "" },
		"unknown mode":    func(p *PendingGiveaway) { p.EntryMode = "raffle" },
	}
	for name, mutate := range mutations {
		p := completeDraft(EntryModeButton)
		mutate(p)
		assert.Equal(t, PendingStatusDraft, DeriveStatus(p), name)
	}
}

func TestDeriveStatus_ModeSpecificFields(t *testing.T) {
	p := completeDraft(EntryModeReaction)
	p.ReactionEmoji = ""
	assert.Equal(t, PendingStatusDraft, DeriveStatus(p))

	for _, mode := range []EntryMode{EntryModeTrivia, EntryModeCompetition} {
		p = completeDraft(mode)
		p.Answer = ""
		assert.Equal(t, PendingStatusDraft, DeriveStatus(p), "mode %s", mode)
	}
}

func TestDeriveStatus_ReadyPinnedOverrides(t *testing.T) {
	p := &PendingGiveaway{ID: "p1", ReadyPinned: true}
	assert.Equal(t, PendingStatusReady, DeriveStatus(p))
}

func TestDeriveStatus_RecomputedAfterPatch(t *testing.T) {
	p := completeDraft(EntryModeButton)
	assert.Equal(t, PendingStatusReady, DeriveStatus(p))

	title := ""
	(&PendingPatch{Title: &title}).Apply(p)
	assert.Equal(t, PendingStatusDraft, DeriveStatus(p))

	title = "Restored"
	(&PendingPatch{Title: &title}).Apply(p)
	assert.Equal(t, PendingStatusReady, DeriveStatus(p))
}

func TestPendingClone_Isolated(t *testing.T) {
	p := completeDraft(EntryModeButton)
	p.RequiredRoleIDs = []string{"mods"}

	c := p.Clone()
	c.Prizes[0] = "mug"
	c.RequiredRoleIDs[0] = "admins"

	assert.Equal(t, "keyboard", p.Prizes[0])
	assert.Equal(t, "mods", p.RequiredRoleIDs[0])
}
