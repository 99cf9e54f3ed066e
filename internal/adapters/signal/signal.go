// Package signal is the WebSocket transport: one read pump and one write pump
// per connection, with every inbound event handed to the orchestrator.
package signal

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func OptionsFrom(cfg *config.Config) Options {
	return Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	}
}

type handlerFunc func(ctx context.Context, s *session, data []byte) error

// session is the per-connection state the handlers see.
type session struct {
	conn  *WsSignalConn
	token string
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Limits  *RateLimiter
	Metrics *metrics.Collector

	opts     Options
	validate *validator.Validate
	tracer   trace.Tracer
	handlers map[string]handlerFunc
}

func NewSignalWSController(o *orch.Orchestrator, opts Options, limits *RateLimiter, m *metrics.Collector) *SignalWSController {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	ctl := &SignalWSController{
		Orch:     o,
		Limits:   limits,
		Metrics:  m,
		opts:     opts,
		validate: v,
		tracer:   otel.Tracer("github.com/dkeye/Huddle/internal/adapters/signal"),
	}
	ctl.handlers = ctl.routes()
	return ctl
}

func (ctl *SignalWSController) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		"join-room":  ctl.handleJoin,
		"leave-room": ctl.handleLeave,
		"end-room":   ctl.handleEndRoom,

		"send-message":     ctl.handleMessage,
		"send-reaction":    ctl.handleReaction,
		"raise-hand":       ctl.handleRaiseHand,
		"lower-hand":       ctl.handleLowerHand,
		"acknowledge-hand": ctl.handleAcknowledgeHand,

		orch.KindOffer:       ctl.relay(orch.KindOffer),
		orch.KindAnswer:      ctl.relay(orch.KindAnswer),
		orch.KindCandidate:   ctl.relay(orch.KindCandidate),
		"toggle-audio":       ctl.handleToggleAudio,
		"toggle-video":       ctl.handleToggleVideo,
		"start-screen-share": ctl.handleScreenShare(true),
		"stop-screen-share":  ctl.handleScreenShare(false),

		"mute-participant":    ctl.handleMute,
		"remove-participant":  ctl.handleRemove,
		"change-role":         ctl.handleChangeRole,
		"suspend-participant": ctl.handleSuspend,
		"block-participant":   ctl.handleBlock,

		"create-poll":      ctl.handleCreatePoll,
		"vote-poll":        ctl.handleVotePoll,
		"close-poll":       ctl.handleClosePoll,
		"start-recording":  ctl.handleRecording(domain.RecordingStart),
		"pause-recording":  ctl.handleRecording(domain.RecordingPause),
		"resume-recording": ctl.handleRecording(domain.RecordingResume),
		"stop-recording":   ctl.handleRecording(domain.RecordingStop),

		"ping": ctl.handlePing,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and serves the connection until either
// pump stops. It returns after the orchestrator has seen the disconnect.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := newWsSignalConn(id, ws, ctl.opts.SendBuffer)
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("token", token).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := ctl.Orch.Connect(ctx, conn, cancel); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("register connection")
		conn.Close()
		return
	}

	s := &session{conn: conn, token: token}
	var wg conc.WaitGroup
	wg.Go(func() { ctl.writePump(ctx, conn) })
	wg.Go(func() { ctl.readPump(ctx, cancel, s) })
	wg.Wait()

	conn.Close()
	ctl.Limits.Forget(id)

	// The request context may already be gone; the disconnect still has to land.
	dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dcancel()
	if err := ctl.Orch.Disconnect(dctx, id); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("disconnect")
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("WS connection closed")
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
