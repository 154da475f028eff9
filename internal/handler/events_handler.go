package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 25 * time.Second

// StreamRoomEvents godoc
// @Summary      Stream room events
// @Description  Server-sent events for one room: message.created, messages.read and room.revoked. The stream ends when membership is revoked.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id     path   int     true   "Room ID"
// @Param        token  query  string  false  "Bearer token for clients that cannot set headers"
// @Success      200
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /rooms/{id}/events [get]
func (h *Handler) StreamRoomEvents(c *gin.Context) {
	roomID, ok := uintParam(c, "id", "room ID")
	if !ok {
		return
	}
	sub, err := h.chat.Subscribe(c.Request.Context(), principal(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer h.chat.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.SSEvent("connected", gin.H{"room_id": roomID, "subscription_id": sub.ID})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case data, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("message", string(data))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}
