package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func newTestRoom(t *testing.T, settings domain.RoomSettings, host domain.UserID) *Room {
	t.Helper()
	return NewRoom(domain.Room{
		ID:       "r1",
		Name:     "r1",
		HostID:   host,
		Settings: settings,
	}, fixedClock(time.Unix(1700000000, 0)), nil)
}

func join(t *testing.T, r *Room, id string) domain.Participant {
	t.Helper()
	p, err := r.AddParticipant(JoinRequest{ID: domain.UserID(id), Conn: domain.ConnID("c-" + id), Name: id})
	require.NoError(t, err)
	return p
}

func TestAddParticipant_RolesAndOrder(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "u1")

	alice := join(t, r, "u1")
	bob := join(t, r, "u2")

	assert.Equal(t, domain.RoleHost, alice.Role)
	assert.Equal(t, domain.RoleParticipant, bob.Role)

	ps := r.Participants()
	require.Len(t, ps, 2)
	assert.Equal(t, domain.UserID("u1"), ps[0].ID)
	assert.Equal(t, domain.UserID("u2"), ps[1].ID)
	assert.True(t, ps[0].Connected)
}

func TestAddParticipant_Duplicate(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "u1")
	join(t, r, "u1")

	_, err := r.AddParticipant(JoinRequest{ID: "u1", Conn: "other"})
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)
	assert.Equal(t, 1, r.Size())
}

func TestAddParticipant_Password(t *testing.T) {
	s := domain.DefaultSettings(0)
	s.Password = "abc123"
	r := newTestRoom(t, s, "")

	_, err := r.AddParticipant(JoinRequest{ID: "a", Password: "ABC123"})
	assert.ErrorIs(t, err, domain.ErrBadPassword)
	assert.Equal(t, "password", domain.JoinRejectReason(err))

	_, err = r.AddParticipant(JoinRequest{ID: "b"})
	assert.ErrorIs(t, err, domain.ErrBadPassword)

	_, err = r.AddParticipant(JoinRequest{ID: "c", Password: "abc123"})
	assert.NoError(t, err)
	assert.Equal(t, 1, r.Size())
}

func TestAddParticipant_Capacity(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(2), "")
	join(t, r, "1")
	join(t, r, "2")

	_, err := r.AddParticipant(JoinRequest{ID: "3"})
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Equal(t, "capacity", domain.JoinRejectReason(err))

	_, _, err = r.RemoveParticipant("1")
	require.NoError(t, err)
	join(t, r, "3")
	assert.Equal(t, 2, r.Size())
}

func TestAddParticipant_WebinarAndMuteOnEntry(t *testing.T) {
	s := domain.DefaultSettings(0)
	s.MuteOnEntry = true
	r := NewRoom(domain.Room{ID: "w", Kind: domain.RoomWebinar, HostID: "h", Settings: s}, nil, nil)

	host := join(t, r, "h")
	guest := join(t, r, "g")

	assert.Equal(t, domain.RoleHost, host.Role)
	assert.False(t, host.AudioMuted)
	assert.Equal(t, domain.RoleAttendee, guest.Role)
	assert.True(t, guest.AudioMuted)
	assert.False(t, guest.Permissions.CanScreenShare)
}

func TestHostTransfer_EarliestRemaining(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "h")
	join(t, r, "h")
	join(t, r, "A")
	join(t, r, "B")
	join(t, r, "C")

	_, change, err := r.RemoveParticipant("h")
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, domain.UserID("h"), change.From)
	assert.Equal(t, domain.UserID("A"), change.To)
	assert.Equal(t, domain.UserID("A"), r.HostID())

	a, _ := r.Participant("A")
	assert.Equal(t, domain.RoleHost, a.Role)
	assert.True(t, a.Permissions.CanManageRecording)
}

func TestHostTransfer_PrefersCoHost(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "h")
	join(t, r, "h")
	join(t, r, "A")
	join(t, r, "B")
	join(t, r, "C")
	_, _, err := r.SetRole("C", domain.RoleCoHost)
	require.NoError(t, err)

	_, change, err := r.RemoveParticipant("h")
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, domain.UserID("C"), change.To)
}

func TestRemoveParticipant_NonHostNoTransfer(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "h")
	join(t, r, "h")
	join(t, r, "A")

	removed, change, err := r.RemoveParticipant("A")
	require.NoError(t, err)
	assert.Nil(t, change)
	assert.Equal(t, domain.UserID("A"), removed.ID)

	_, change, err = r.RemoveParticipant("h")
	require.NoError(t, err)
	assert.Nil(t, change)
	assert.True(t, r.IsEmpty())

	_, _, err = r.RemoveParticipant("h")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
}

func TestSetRole(t *testing.T) {
	s := domain.DefaultSettings(0)
	s.AllowCoHosts = false
	r := newTestRoom(t, s, "h")
	join(t, r, "h")
	join(t, r, "a")

	_, _, err := r.SetRole("a", domain.RoleCoHost)
	assert.ErrorIs(t, err, domain.ErrCoHostsDisabled)

	_, _, err = r.SetRole("a", "overlord")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = r.SetRole("h", domain.RoleAttendee)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	p, _, err := r.SetRole("a", domain.RoleModerator)
	require.NoError(t, err)
	assert.True(t, p.Permissions.CanMuteOthers)
	assert.False(t, p.Permissions.CanManageRecording)

	p, change, err := r.SetRole("a", domain.RoleHost)
	require.NoError(t, err)
	require.NotNil(t, change)
	assert.Equal(t, domain.RoleHost, p.Role)
	old, _ := r.Participant("h")
	assert.Equal(t, domain.RoleParticipant, old.Role)
	assert.Equal(t, domain.UserID("a"), r.HostID())
}

func TestPermissions_ScreenShareGate(t *testing.T) {
	s := domain.DefaultSettings(0)
	s.AllowScreenShare = false
	r := newTestRoom(t, s, "h")
	join(t, r, "h")
	join(t, r, "p")

	assert.True(t, r.Can("h", domain.CapScreenShare))
	assert.False(t, r.Can("p", domain.CapScreenShare))

	_, err := r.SetScreenSharing("p", true)
	assert.ErrorIs(t, err, domain.ErrScreenShareDisabled)
	_, err = r.SetScreenSharing("h", true)
	assert.NoError(t, err)
}

func TestPermissions_SuspendedBaseline(t *testing.T) {
	suspended := map[domain.UserID]bool{}
	r := NewRoom(domain.Room{ID: "r", HostID: "h", Settings: domain.DefaultSettings(0)}, nil,
		func(id domain.UserID) bool { return suspended[id] })
	join(t, r, "h")

	assert.True(t, r.Can("h", domain.CapMuteOthers))
	suspended["h"] = true
	assert.False(t, r.Can("h", domain.CapMuteOthers))
	p, _ := r.Participant("h")
	assert.True(t, p.Suspended)
	assert.Equal(t, domain.Permissions{}, p.Permissions)
}

func TestBinding_Rebind(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "")
	join(t, r, "u")

	conn, ok := r.Resolve("u")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("c-u"), conn)

	prev, err := r.Bind("u", "c-new")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnID("c-u"), prev)

	_, ok = r.ParticipantByConn("c-u")
	assert.False(t, ok)
	id, ok := r.ParticipantByConn("c-new")
	assert.True(t, ok)
	assert.Equal(t, domain.UserID("u"), id)

	_, err = r.Unbind("u")
	require.NoError(t, err)
	_, ok = r.Resolve("u")
	assert.False(t, ok)
	assert.Empty(t, r.Connections())

	_, ok = r.Resolve("ghost")
	assert.False(t, ok)
}

func TestConnections_Exclude(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "")
	join(t, r, "a")
	join(t, r, "b")
	join(t, r, "c")

	assert.Equal(t, []domain.ConnID{"c-a", "c-c"}, r.Connections("b"))
}

func TestChatHistory_Order(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "")
	join(t, r, "a")

	for i, text := range []string{"m1", "m2", "m3"} {
		_, err := r.AppendMessage("a", text)
		require.NoError(t, err)
		_, err = r.AppendReaction("a", fmt.Sprintf("%d", i))
		require.NoError(t, err)
	}

	history := r.ChatHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "m1", history[0].Text)
	assert.Equal(t, "m2", history[1].Text)
	assert.Equal(t, "m3", history[2].Text)
	assert.Len(t, r.Reactions(), 3)
}

func TestChat_Gates(t *testing.T) {
	s := domain.DefaultSettings(0)
	s.AllowChat = false
	s.AllowReactions = false
	r := newTestRoom(t, s, "")
	join(t, r, "a")

	_, err := r.AppendMessage("a", "hi")
	assert.ErrorIs(t, err, domain.ErrChatDisabled)
	_, err = r.AppendReaction("a", "x")
	assert.ErrorIs(t, err, domain.ErrReactionsDisabled)
	_, err = r.AppendMessage("stranger", "hi")
	assert.ErrorIs(t, err, domain.ErrNotInRoom)
}

func TestHands(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "")
	join(t, r, "a")
	join(t, r, "b")

	_, changed, err := r.RaiseHand("b")
	require.NoError(t, err)
	assert.True(t, changed)
	_, changed, _ = r.RaiseHand("b")
	assert.False(t, changed)
	_, _, _ = r.RaiseHand("a")

	hands := r.HandRaises()
	require.Len(t, hands, 2)
	assert.Equal(t, domain.UserID("a"), hands[0].ParticipantID)

	h, err := r.AcknowledgeHand("b")
	require.NoError(t, err)
	assert.True(t, h.Acknowledged)

	assert.True(t, r.LowerHand("b"))
	assert.False(t, r.LowerHand("b"))

	_, _, err = r.RemoveParticipant("a")
	require.NoError(t, err)
	assert.Empty(t, r.HandRaises())
}

func TestPolls(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "h")
	join(t, r, "h")
	join(t, r, "a")

	_, err := r.CreatePoll("h", "q", []string{"only"}, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	poll, err := r.CreatePoll("h", "lunch?", []string{"yes", "no"}, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, poll.ClosesAt)

	_, err = r.CreatePoll("h", "again", []string{"x", "y"}, 0)
	assert.ErrorIs(t, err, domain.ErrPollActive)

	_, err = r.Vote("a", poll.ID, 0)
	require.NoError(t, err)
	updated, err := r.Vote("a", poll.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, updated.Counts)

	_, err = r.Vote("a", poll.ID, 5)
	assert.ErrorIs(t, err, domain.ErrValidation)

	closed, did, err := r.ClosePoll(poll.ID)
	require.NoError(t, err)
	assert.True(t, did)
	assert.True(t, closed.Closed)

	_, did, err = r.ClosePoll(poll.ID)
	require.NoError(t, err)
	assert.False(t, did)

	_, err = r.Vote("h", poll.ID, 0)
	assert.ErrorIs(t, err, domain.ErrPollClosed)
	_, ok := r.ActivePoll()
	assert.False(t, ok)
	assert.Len(t, r.Polls(), 1)
}

func TestRecordingTransitions(t *testing.T) {
	r := newTestRoom(t, domain.DefaultSettings(0), "")

	_, err := r.SetRecording(domain.RecordingPause)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	steps := []struct {
		action domain.RecordingAction
		want   domain.RecordingStatus
	}{
		{domain.RecordingStart, domain.RecordingActive},
		{domain.RecordingPause, domain.RecordingPaused},
		{domain.RecordingResume, domain.RecordingActive},
		{domain.RecordingStop, domain.RecordingStopped},
	}
	for _, s := range steps {
		got, err := r.SetRecording(s.action)
		require.NoError(t, err, s.action)
		assert.Equal(t, s.want, got)
	}

	s := domain.DefaultSettings(0)
	s.AllowRecording = false
	locked := newTestRoom(t, s, "")
	_, err = locked.SetRecording(domain.RecordingStart)
	assert.ErrorIs(t, err, domain.ErrRecordingDisabled)
}

func TestView_HidesPassword(t *testing.T) {
	s := domain.DefaultSettings(3)
	s.Password = "secret"
	r := newTestRoom(t, s, "")
	v := r.View()
	assert.True(t, v.HasPassword)
	assert.Equal(t, domain.RecordingStopped, v.Recording)
	assert.Equal(t, 3, v.Settings.MaxParticipants)
}
