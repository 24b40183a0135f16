package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/PrivChat/internal/core"
)

// RoomLister is the read side the REST handlers need.
type RoomLister interface {
	List() []core.RoomInfo
}

type SessionCounter interface {
	Count() int
}

type RoomsResponse struct {
	Rooms []core.RoomInfo `json:"rooms"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// Register mounts /healthz and /api/rooms. Room tokens are never listed.
func Register(r gin.IRouter, rooms RoomLister, sessions SessionCounter) {
	r.GET("/healthz", handlerHealth(sessions))
	r.GET("/api/rooms", handlerRooms(rooms))
}

func handlerRooms(rooms RoomLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, RoomsResponse{Rooms: rooms.List()})
	}
}

func handlerHealth(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Connections: sessions.Count()})
	}
}
