package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/dkeye/Estimate/internal/app"
	"github.com/dkeye/Estimate/internal/core"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CreateRoomRequest struct {
	RoomName    string `json:"roomName"`
	CreatorName string `json:"creatorName"`
}

type CreateRoomResponse struct {
	RoomID domain.RoomID `json:"roomId"`
	Room   *domain.Room  `json:"room"`
}

// RoomHandler serves the request/response side of the room lifecycle.
type RoomHandler struct {
	rooms     core.RoomStore
	analytics *app.Analytics
}

func NewRoomHandler(rooms core.RoomStore, analytics *app.Analytics) *RoomHandler {
	return &RoomHandler{rooms: rooms, analytics: analytics}
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room name and creator name are required"})
		return
	}
	room, err := h.rooms.CreateRoom(req.RoomName, req.CreatorName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateRoomResponse{RoomID: room.ID, Room: room.Public()})
}

func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.rooms.GetRoom(domain.RoomID(c.Param("roomId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room.Public()})
}

func (h *RoomHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.List()})
}

func (h *RoomHandler) Analytics(c *gin.Context) {
	a, err := h.analytics.Get(domain.RoomID(c.Param("roomId")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": a})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.PublicMessage(err)})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.PublicMessage(err)})
	default:
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.PublicMessage(err)})
	}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
