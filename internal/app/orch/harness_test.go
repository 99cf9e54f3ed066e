package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id       domain.ConnID
	mu       sync.Mutex
	frames   []json.RawMessage
	canceled bool
}

func (c *fakeConn) ID() domain.ConnID { return c.id }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append(json.RawMessage(nil), f...))
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(f, &env)
		out = append(out, env.Type)
	}
	return out
}

// last decodes the most recent frame of the given type into v.
func (c *fakeConn) last(t *testing.T, typ string, v any) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(c.frames[i], &env))
		if env.Type == typ {
			require.NoError(t, json.Unmarshal(c.frames[i], v))
			return
		}
	}
	t.Fatalf("no %q frame on %s", typ, c.id)
}

func (c *fakeConn) count(typ string) int {
	n := 0
	for _, x := range c.types() {
		if x == typ {
			n++
		}
	}
	return n
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

func (f *fakeTimers) After(d time.Duration, fn func()) func() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	f.pending = append(f.pending, t)
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		was := !t.stopped && !t.fired
		t.stopped = true
		return was
	}
}

func (f *fakeTimers) snapshot() []*fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeTimer(nil), f.pending...)
}

type mockBridge struct {
	mock.Mock
}

func (m *mockBridge) Lookup(ctx context.Context, roomID domain.RoomID) (*domain.MeetingSnapshot, error) {
	args := m.Called(ctx, roomID)
	snap, _ := args.Get(0).(*domain.MeetingSnapshot)
	return snap, args.Error(1)
}

func (m *mockBridge) SetStatus(ctx context.Context, id domain.MeetingID, status domain.MeetingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	o      *Orchestrator
	clock  *testClock
	timers *fakeTimers
}

func newHarness(t *testing.T, opts ...func(*Deps)) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := &testClock{t: time.Unix(1700000000, 0)}
	timers := &fakeTimers{}
	d := app.NewDispatcher(64)
	go d.Run(ctx)

	mod := core.NewModerationStore(clock.Now)
	deps := Deps{
		Dispatcher: d,
		Rooms:      app.NewRoomManager(domain.DefaultSettings(0), clock.Now, mod),
		Moderation: mod,
		Policy:     app.SimplePolicy{},
		Now:        clock.Now,
		After:      timers.After,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &harness{t: t, ctx: ctx, o: New(deps), clock: clock, timers: timers}
}

func withDefaults(s domain.RoomSettings) func(*Deps) {
	return func(d *Deps) {
		d.Rooms = app.NewRoomManager(s, d.Now, d.Moderation)
	}
}

func (h *harness) connect(id string) *fakeConn {
	h.t.Helper()
	c := &fakeConn{id: domain.ConnID(id)}
	require.NoError(h.t, h.o.Connect(h.ctx, c, func() { c.canceled = true }))
	return c
}

func (h *harness) join(c *fakeConn, room, user, name string) error {
	return h.o.Join(h.ctx, c.id, JoinParams{RoomID: domain.RoomID(room), UserID: domain.UserID(user), Name: name})
}

func (h *harness) mustJoin(c *fakeConn, room, user, name string) {
	h.t.Helper()
	require.NoError(h.t, h.join(c, room, user, name))
}

// fire runs a scheduled callback on the dispatcher even if it was stopped,
// which models a timer that had already fired when it was canceled.
func (h *harness) fire(tm *fakeTimer) {
	h.t.Helper()
	tm.fired = true
	require.NoError(h.t, h.o.Dispatcher.Do(h.ctx, tm.fn))
}

func (h *harness) roomExists(id string) bool {
	var ok bool
	require.NoError(h.t, h.o.Dispatcher.Do(h.ctx, func() { _, ok = h.o.Rooms.Get(domain.RoomID(id)) }))
	return ok
}

func ids(ps []domain.Participant) []domain.UserID {
	out := make([]domain.UserID, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
