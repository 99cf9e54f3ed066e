package meeting

import (
	"context"
	"testing"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_UpsertAndLookup(t *testing.T) {
	d := NewDirectory()
	ctx := context.Background()

	snap, err := d.Lookup(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, snap, "unlinked room")

	m, err := d.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r1", Name: "Weekly", HostID: "h"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStandard, m.Kind)
	assert.Equal(t, domain.MeetingScheduled, m.Status)

	snap, err = d.Lookup(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "Weekly", snap.Name)

	snap.Name = "mutated"
	got, err := d.Get("m1")
	require.NoError(t, err)
	assert.Equal(t, "Weekly", got.Name, "lookups return copies")
}

func TestDirectory_Relink(t *testing.T) {
	d := NewDirectory()
	ctx := context.Background()

	_, err := d.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r1"})
	require.NoError(t, err)
	_, err = d.Upsert(domain.MeetingSnapshot{ID: "m2", RoomID: "r1"})
	assert.ErrorIs(t, err, domain.ErrRoomLinked)

	_, err = d.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r2"})
	require.NoError(t, err)
	snap, err := d.Lookup(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, snap)
	snap, err = d.Lookup(ctx, "r2")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.MeetingID("m1"), snap.ID)
}

func TestDirectory_Validation(t *testing.T) {
	d := NewDirectory()
	for _, m := range []domain.MeetingSnapshot{
		{RoomID: "r"},
		{ID: "m"},
		{ID: "m", RoomID: "r", Kind: "lecture"},
		{ID: "m", RoomID: "r", Settings: domain.RoomSettings{MaxParticipants: -1}},
	} {
		_, err := d.Upsert(m)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestDirectory_StatusLifecycle(t *testing.T) {
	d := NewDirectory()
	ctx := context.Background()
	_, err := d.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r1"})
	require.NoError(t, err)

	m, err := d.Start(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingLive, m.Status)

	_, err = d.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r1", Name: "renamed"})
	require.NoError(t, err)
	got, _ := d.Get("m1")
	assert.Equal(t, domain.MeetingLive, got.Status, "upsert keeps status")

	require.NoError(t, d.SetStatus(ctx, "m1", domain.MeetingEnded))
	require.NoError(t, d.SetStatus(ctx, "m1", domain.MeetingEnded))
	_, err = d.Start(ctx, "m1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.ErrorIs(t, d.SetStatus(ctx, "nope", domain.MeetingLive), domain.ErrMeetingNotFound)
	assert.ErrorIs(t, d.SetStatus(ctx, "m1", "paused"), domain.ErrValidation)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, d.SetStatus(canceled, "m1", domain.MeetingLive), context.Canceled)
}
