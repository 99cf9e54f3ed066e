package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Huddle/internal/adapters/meeting"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct {
	id domain.ConnID
	mu sync.Mutex
	n  int
}

func (c *nopConn) ID() domain.ConnID { return c.id }

func (c *nopConn) TrySend(core.Frame) error {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	return nil
}

func (c *nopConn) Close() {}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	handler  http.Handler
	orch     *orch.Orchestrator
	meetings *meeting.Directory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Mode:       "test",
		StaticPath: t.TempDir(),
		Secret:     "test-secret",
		ReadLimit:  1 << 15,
		PingPeriod: time.Second,
		PongWait:   2 * time.Second,
		WriteWait:  time.Second,
		SendBuffer: 8,
		RateLimit:  config.RateLimitConfig{MessagesPerSecond: 100, Burst: 100},
		Metrics:    config.MetricsConfig{Enabled: true},
	}

	d := app.NewDispatcher(64)
	go d.Run(ctx)
	mod := core.NewModerationStore(core.SystemClock)
	meetings := meeting.NewDirectory()
	collector := metrics.NewCollector()
	o := orch.New(orch.Deps{
		Dispatcher: d,
		Rooms:      app.NewRoomManager(domain.DefaultSettings(0), core.SystemClock, mod),
		Moderation: mod,
		Meetings:   meetings,
		Metrics:    collector,
		Policy:     app.SimplePolicy{},
	})

	return &fixture{
		t:        t,
		ctx:      ctx,
		handler:  SetupRouter(ctx, cfg, o, meetings, collector),
		orch:     o,
		meetings: meetings,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (f *fixture) join(conn, room, user string) {
	f.t.Helper()
	c := &nopConn{id: domain.ConnID(conn)}
	require.NoError(f.t, f.orch.Connect(f.ctx, c, func() {}))
	require.NoError(f.t, f.orch.Join(f.ctx, c.id, orch.JoinParams{
		RoomID: domain.RoomID(room), UserID: domain.UserID(user), Name: user, Password: "pw",
	}))
}

func TestHealthSetsClientToken(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionName)
}

func TestMeetingsLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPut, "/api/meetings/m1",
		`{"roomId":"r1","name":"Standup","password":"pw","settings":{"maxParticipants":5}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	settings := body["settings"].(map[string]any)
	assert.EqualValues(t, 5, settings["maxParticipants"])
	assert.Equal(t, true, settings["allowChat"], "unspecified settings keep defaults")
	assert.NotContains(t, w.Body.String(), `"pw"`)
	assert.Equal(t, "scheduled", body["status"])

	w = f.do(http.MethodPut, "/api/meetings/m2", `{"roomId":"r2","kind":"lecture"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPut, "/api/meetings/m3", `{"roomId":"r1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, "/api/meetings/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "meeting_not_found", decode(t, w)["error"])

	w = f.do(http.MethodPost, "/api/meetings/m1/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "live", decode(t, w)["status"])

	w = f.do(http.MethodGet, "/api/meetings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["meetings"], 1)
}

func TestRoomsViewAndForceEnd(t *testing.T) {
	f := newFixture(t)
	_, err := f.meetings.Upsert(domain.MeetingSnapshot{ID: "m1", RoomID: "r1", Name: "Standup",
		Settings: func() domain.RoomSettings { s := domain.DefaultSettings(0); s.Password = "pw"; return s }()})
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/api/rooms/r1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.join("c1", "r1", "alice")
	f.join("c2", "r1", "bob")

	w = f.do(http.MethodGet, "/api/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode(t, w)["rooms"].([]any)
	require.Len(t, rooms, 1)
	room := rooms[0].(map[string]any)
	assert.Equal(t, "Standup", room["name"])
	assert.EqualValues(t, 2, room["participantCount"])

	w = f.do(http.MethodGet, "/api/rooms/r1/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice", body["hostId"])
	assert.Len(t, body["participants"], 2)

	w = f.do(http.MethodGet, "/api/rooms/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["room"].(map[string]any)["hasPassword"])

	w = f.do(http.MethodPost, "/api/rooms/r1/end", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodPost, "/api/rooms/r1/end", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Eventually(t, func() bool {
		m, err := f.meetings.Get("m1")
		return err == nil && m.Status == domain.MeetingEnded
	}, 2*time.Second, 10*time.Millisecond)
}

func TestModerationEndpoints(t *testing.T) {
	f := newFixture(t)
	f.join("c1", "r1", "host")
	f.join("c2", "r1", "mallory")

	w := f.do(http.MethodPost, "/api/moderation/mallory/suspend", `{"minutes":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/moderation/mallory/suspend", `{"minutes":5,"reason":"noise"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "noise", decode(t, w)["suspendReason"])

	w = f.do(http.MethodPost, "/api/moderation/mallory/block", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["blocked"])

	w = f.do(http.MethodGet, "/api/rooms/r1/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["participants"], 1, "blocking evicts")

	w = f.do(http.MethodGet, "/api/moderation", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["entries"], 1)

	w = f.do(http.MethodDelete, "/api/moderation/mallory/block", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["removed"])
	w = f.do(http.MethodDelete, "/api/moderation/mallory/suspend", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["removed"])
	w = f.do(http.MethodDelete, "/api/moderation/nobody/suspend", "")
	assert.Equal(t, false, decode(t, w)["removed"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.join("c1", "r1", "alice")

	w := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "huddle_rooms_active 1")
	assert.Contains(t, w.Body.String(), `huddle_joins_total{result="ok"} 1`)
}
