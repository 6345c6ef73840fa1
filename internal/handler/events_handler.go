package handler

import (
	"anoa.com/homeboard/internal/ws"
	"anoa.com/homeboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	hub *ws.Hub
}

func NewEventsHandler(hub *ws.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Subscribe upgrades the request to a websocket that receives change events
// for the authenticated user.
func (h *EventsHandler) Subscribe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ws.Serve(h.hub, c, userID)
}
