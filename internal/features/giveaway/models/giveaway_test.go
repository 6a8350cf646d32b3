package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOpen(t *testing.T) {
	now := time.Now()
	g := &Giveaway{EndTime: now.Add(time.Hour)}

	assert.True(t, g.IsOpen(now))
	assert.False(t, g.IsOpen(now.Add(2*time.Hour)))

	g.Ended = true
	assert.False(t, g.IsOpen(now))

	g.Ended = false
	g.Cancelled = true
	assert.False(t, g.IsOpen(now))
}

func TestAttemptsExhausted(t *testing.T) {
	g := &Giveaway{MaxAttempts: 2, AttemptCounts: map[string]int{"u1": 2, "u2": 1}}

	assert.True(t, g.AttemptsExhausted("u1"))
	assert.False(t, g.AttemptsExhausted("u2"))
	assert.False(t, g.AttemptsExhausted("fresh"))

	g.MaxAttempts = UnlimitedAttempts
	assert.False(t, g.AttemptsExhausted("u1"))

	g.MaxAttempts = 0
	assert.False(t, g.AttemptsExhausted("u1"))
}

func TestPlacementsInOrder(t *testing.T) {
	g := &Giveaway{Placements: map[string]int{"third": 2, "first": 0, "second": 1}}
	assert.Equal(t, []string{"first", "second", "third"}, g.PlacementsInOrder())

	g.Placements = nil
	assert.Empty(t, g.PlacementsInOrder())
}

func TestGiveawayClone_Isolated(t *testing.T) {
	g := &Giveaway{
		ID:               "g1",
		Prizes:           []string{"keyboard"},
		Participants:     []string{"u1"},
		AttemptCounts:    map[string]int{"u1": 1},
		Placements:       map[string]int{"u1": 0},
		PrizeAssignments: map[string]string{"u1": "keyboard"},
	}

	c := g.Clone()
	c.Prizes[0] = "mug"
	c.Participants[0] = "u2"
	c.AttemptCounts["u1"] = 9
	c.Placements["u2"] = 1
	c.PrizeAssignments["u1"] = "mug"

	assert.Equal(t, "keyboard", g.Prizes[0])
	assert.Equal(t, "u1", g.Participants[0])
	assert.Equal(t, 1, g.AttemptCounts["u1"])
	assert.Len(t, g.Placements, 1)
	assert.Equal(t, "keyboard", g.PrizeAssignments["u1"])
}

func TestGiveawayPatch_AppliesOnlySetFields(t *testing.T) {
	g := &Giveaway{ID: "g1", Title: "Drop", Participants: []string{"u1"}}

	ended := true
	winners := []string{"u1"}
	(&GiveawayPatch{Ended: &ended, Winners: &winners}).Apply(g)

	assert.True(t, g.Ended)
	assert.Equal(t, []string{"u1"}, g.Winners)
	assert.Equal(t, "Drop", g.Title)
	assert.Equal(t, []string{"u1"}, g.Participants)
	assert.False(t, g.Cancelled)
}
