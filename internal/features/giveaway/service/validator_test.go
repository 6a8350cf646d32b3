package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-engine/internal/features/giveaway/models"
)

func TestValidate_AcceptsEligibleMember(t *testing.T) {
	env := newTestEnv(t)
	env.addGiveaway(t, liveGiveaway("g1", models.EntryModeButton))

	v := NewEntryValidator(env.store)
	g, err := v.Validate(context.Background(), "ws1", "g1", member("u1"), models.EntryModeButton)
	require.NoError(t, err)
	assert.Equal(t, "g1", g.ID)
}

func TestValidate_UnknownGiveaway(t *testing.T) {
	env := newTestEnv(t)

	v := NewEntryValidator(env.store)
	_, err := v.Validate(context.Background(), "ws1", "missing", member("u1"), models.EntryModeButton)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate_WrongMode(t *testing.T) {
	env := newTestEnv(t)
	env.addGiveaway(t, liveGiveaway("g1", models.EntryModeButton))

	v := NewEntryValidator(env.store)
	_, err := v.Validate(context.Background(), "ws1", "g1", member("u1"), models.EntryModeTrivia)
	assert.True(t, IsRejection(err))
}

func TestValidate_ClosedGiveaway(t *testing.T) {
	env := newTestEnv(t)

	expired := liveGiveaway("g1", models.EntryModeButton)
	expired.EndTime = time.Now().Add(-time.Minute)
	env.addGiveaway(t, expired)

	ended := liveGiveaway("g2", models.EntryModeButton)
	ended.Ended = true
	env.addGiveaway(t, ended)

	v := NewEntryValidator(env.store)
	for _, id := range []string{"g1", "g2"} {
		_, err := v.Validate(context.Background(), "ws1", id, member("u1"), models.EntryModeButton)
		assert.True(t, IsRejection(err), "giveaway %s", id)
	}
}

func TestValidate_RoleGates(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeButton)
	g.RequiredRoleIDs = []string{"subscriber"}
	g.BlockedRoleIDs = []string{"banned"}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	ctx := context.Background()

	_, err := v.Validate(ctx, "ws1", "g1", member("u1"), models.EntryModeButton)
	assert.True(t, IsRejection(err), "missing required role")

	_, err = v.Validate(ctx, "ws1", "g1", member("u1", "subscriber", "banned"), models.EntryModeButton)
	assert.True(t, IsRejection(err), "blocked role wins over required")

	got, err := v.Validate(ctx, "ws1", "g1", member("u1", "subscriber"), models.EntryModeButton)
	require.NoError(t, err)
	assert.Equal(t, "g1", got.ID)
}

func TestValidate_DuplicateEntry(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeButton)
	g.Participants = []string{"u1"}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	_, err := v.Validate(context.Background(), "ws1", "g1", member("u1"), models.EntryModeButton)
	assert.True(t, IsRejection(err))
}

func TestValidate_AttemptCap(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeTrivia)
	g.MaxAttempts = 2
	g.AttemptCounts = map[string]int{"u1": 2}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	ctx := context.Background()

	_, err := v.Validate(ctx, "ws1", "g1", member("u1"), models.EntryModeTrivia)
	assert.True(t, IsRejection(err))

	_, err = v.Validate(ctx, "ws1", "g1", member("u2"), models.EntryModeTrivia)
	assert.NoError(t, err)
}

func TestValidate_UnlimitedAttempts(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeTrivia)
	g.MaxAttempts = models.UnlimitedAttempts
	g.AttemptCounts = map[string]int{"u1": 50}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	_, err := v.Validate(context.Background(), "ws1", "g1", member("u1"), models.EntryModeTrivia)
	assert.NoError(t, err)
}

func TestValidate_CompetitionPlacements(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeCompetition)
	g.WinnerCount = 2
	g.Placements = map[string]int{"u1": 0}
	g.Participants = []string{"u1"}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	ctx := context.Background()

	_, err := v.Validate(ctx, "ws1", "g1", member("u1"), models.EntryModeCompetition)
	assert.True(t, IsRejection(err), "already placed")

	_, err = v.Validate(ctx, "ws1", "g1", member("u2"), models.EntryModeCompetition)
	assert.NoError(t, err)

	full := liveGiveaway("g2", models.EntryModeCompetition)
	full.WinnerCount = 1
	full.Placements = map[string]int{"u1": 0}
	env.addGiveaway(t, full)

	_, err = v.Validate(ctx, "ws1", "g2", member("u2"), models.EntryModeCompetition)
	assert.True(t, IsRejection(err), "placements full")
}

func TestValidate_RejectionDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)

	g := liveGiveaway("g1", models.EntryModeButton)
	g.Participants = []string{"u1"}
	env.addGiveaway(t, g)

	v := NewEntryValidator(env.store)
	_, err := v.Validate(context.Background(), "ws1", "g1", member("u1"), models.EntryModeButton)
	require.Error(t, err)

	after := env.mustGet(t, "ws1", "g1")
	assert.Equal(t, []string{"u1"}, after.Participants)
}
