package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dkeye/Huddle/internal/adapters/meeting"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch     *orch.Orchestrator
	meetings *meeting.Directory
}

func respondError(c *gin.Context, err error) {
	status := domain.HTTPStatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": domain.ReasonOf(err), "message": err.Error()})
}

// bindJSON binds an optional JSON body; an empty body leaves req untouched.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, domain.Validation(err.Error()))
		return false
	}
	return true
}

func (h *handlers) health(c *gin.Context) {
	rooms, err := h.orch.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": len(rooms)})
}

func (h *handlers) listRooms(c *gin.Context) {
	rooms, err := h.orch.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *handlers) getRoom(c *gin.Context) {
	d, err := h.orch.RoomDetails(c.Request.Context(), domain.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) roomParticipants(c *gin.Context) {
	d, err := h.orch.RoomDetails(c.Request.Context(), domain.RoomID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roomId": d.Room.ID, "hostId": d.Room.HostID, "participants": d.Participants})
}

func (h *handlers) endRoom(c *gin.Context) {
	if err := h.orch.ForceEnd(c.Request.Context(), domain.RoomID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": true})
}

type meetingRequest struct {
	RoomID   string              `json:"roomId" binding:"required,max=128"`
	Name     string              `json:"name" binding:"max=200"`
	Kind     string              `json:"kind" binding:"omitempty,oneof=standard webinar"`
	HostID   string              `json:"hostId" binding:"max=64"`
	Password string              `json:"password" binding:"max=128"`
	Settings domain.RoomSettings `json:"settings"`
}

// upsertMeeting stores a meeting. Settings omitted from the body keep their defaults.
func (h *handlers) upsertMeeting(c *gin.Context) {
	req := meetingRequest{Settings: domain.DefaultSettings(0)}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation(err.Error()))
		return
	}
	settings := req.Settings
	settings.Password = req.Password

	m, err := h.meetings.Upsert(domain.MeetingSnapshot{
		ID:       domain.MeetingID(c.Param("id")),
		RoomID:   domain.RoomID(req.RoomID),
		Name:     req.Name,
		Kind:     domain.RoomKind(req.Kind),
		HostID:   domain.UserID(req.HostID),
		Settings: settings,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) getMeeting(c *gin.Context) {
	m, err := h.meetings.Get(domain.MeetingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) listMeetings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"meetings": h.meetings.List()})
}

func (h *handlers) startMeeting(c *gin.Context) {
	m, err := h.meetings.Start(c.Request.Context(), domain.MeetingID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handlers) listModeration(c *gin.Context) {
	entries, err := h.orch.ModerationEntries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type blockRequest struct {
	Reason string `json:"reason" binding:"max=256"`
}

func (h *handlers) block(c *gin.Context) {
	var req blockRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.orch.Block(c.Request.Context(), domain.UserID(c.Param("id")), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *handlers) unblock(c *gin.Context) {
	ok, err := h.orch.Unblock(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": ok})
}

type suspendRequest struct {
	Minutes int    `json:"minutes" binding:"required,gt=0,lte=10080"`
	Reason  string `json:"reason" binding:"max=256"`
}

func (h *handlers) suspend(c *gin.Context) {
	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validation(err.Error()))
		return
	}
	d := time.Duration(req.Minutes) * time.Minute
	entry, err := h.orch.Suspend(c.Request.Context(), domain.UserID(c.Param("id")), d, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *handlers) unsuspend(c *gin.Context) {
	ok, err := h.orch.Unsuspend(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": ok})
}
