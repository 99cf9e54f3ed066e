package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ctl.opts.WriteWait))
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, s *session) {
	ws := s.conn.conn
	defer func() {
		log.Debug().Str("module", "signal").Str("conn", string(s.conn.id)).Msg("readPump closing")
		cancel()
	}()

	ws.SetReadLimit(ctl.opts.ReadLimit)
	extend := func() error { return ws.SetReadDeadline(time.Now().Add(ctl.opts.PongWait)) }
	_ = extend()
	ws.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.id)).Msg("readPump read error")
			}
			return
		}
		_ = extend()
		ctl.handle(ctx, s, data)
	}
}

// handle routes one inbound message. Failures are reported to the sender
// only; a failed join-room is reported as join-rejected.
func (ctl *SignalWSController) handle(ctx context.Context, s *session, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		ctl.reply(s, orch.NewErrorEvent("", domain.Validation("message must be a JSON object with a type")))
		return
	}
	h, ok := ctl.handlers[env.Type]
	if !ok {
		ctl.reply(s, orch.NewErrorEvent(env.Type, domain.Validation("unknown event type")))
		return
	}

	ctx, span := ctl.tracer.Start(ctx, "signal."+env.Type, trace.WithAttributes(
		attribute.String("websocket.message_type", env.Type),
		attribute.String("conn.id", string(s.conn.id)),
	))
	defer span.End()

	start := time.Now()
	var err error
	if !ctl.Limits.Allow(s.conn.id) {
		err = domain.ErrRateLimited
	} else {
		err = h(ctx, s, data)
	}

	result := "ok"
	if err != nil {
		result = domain.ReasonOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ctl.replyError(s, env.Type, data, err)
	}
	ctl.Metrics.Event(env.Type, result, time.Since(start))
}

func (ctl *SignalWSController) replyError(s *session, event string, data []byte, err error) {
	log.Debug().Err(err).Str("module", "signal").Str("conn", string(s.conn.id)).Str("event", event).Msg("event failed")
	if event == "join-room" && domain.KindOf(err) != domain.KindValidation {
		var p roomPayload
		_ = json.Unmarshal(data, &p)
		ctl.reply(s, orch.JoinRejected{
			Type:    orch.EvJoinRejected,
			RoomID:  domain.RoomID(p.RoomID),
			Reason:  domain.JoinRejectReason(err),
			Message: err.Error(),
		})
		return
	}
	ctl.reply(s, orch.NewErrorEvent(event, err))
}

func (ctl *SignalWSController) reply(s *session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("reply marshal")
		return
	}
	if err := s.conn.TrySend(core.Frame(b)); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.id)).Msg("reply dropped")
	}
}

// decode unmarshals and validates an inbound payload.
func (ctl *SignalWSController) decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return domain.Validation("malformed payload")
	}
	if err := ctl.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.Validation(fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}
		return domain.Validation(err.Error())
	}
	return nil
}
