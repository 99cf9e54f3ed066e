package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Huddle/internal/adapters/meeting"
	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/metrics"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sessionName    = "HuddleSessions"
	clientTokenKey = "ct"
)

// ClientTokenMiddleware gives every browser a stable anonymous id kept in the
// session cookie. The signaling endpoint uses it when a join carries no userId.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save client token")
			}
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, meetings *meeting.Directory, collector *metrics.Collector) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Debug() {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	secret := cfg.Secret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Str("module", "adapters.http").Msg("no session secret configured, client tokens will not survive a restart")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(o, signal.OptionsFrom(cfg),
		signal.NewRateLimiter(cfg.RateLimit.MessagesPerSecond, cfg.RateLimit.Burst), collector)
	ws := func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("token", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	}
	r.GET("/ws", ws)

	h := &handlers{orch: o, meetings: meetings}
	r.GET("/health", h.health)
	if cfg.Metrics.Enabled && collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	api := r.Group("/api")
	api.GET("/ws/signal", ws)

	rooms := api.Group("/rooms")
	rooms.GET("", h.listRooms)
	rooms.GET("/:id", h.getRoom)
	rooms.GET("/:id/participants", h.roomParticipants)
	rooms.POST("/:id/end", h.endRoom)

	mt := api.Group("/meetings")
	mt.GET("", h.listMeetings)
	mt.PUT("/:id", h.upsertMeeting)
	mt.GET("/:id", h.getMeeting)
	mt.POST("/:id/start", h.startMeeting)

	mod := api.Group("/moderation")
	mod.GET("", h.listModeration)
	mod.POST("/:id/block", h.block)
	mod.DELETE("/:id/block", h.unblock)
	mod.POST("/:id/suspend", h.suspend)
	mod.DELETE("/:id/suspend", h.unsuspend)

	return r
}
