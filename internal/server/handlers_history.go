package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type realtimeEventPayload struct {
	Collection string    `json:"collection,omitempty"`
	RecordIDs  []string  `json:"recordIds,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
}

func (h *httpHandler) handleHistory(c *gin.Context) {
	name := strings.TrimSpace(c.Query("chart"))
	set, err := h.history.Charts(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if set.Charts == nil {
		set.Charts = []history.Chart{}
	}
	c.JSON(http.StatusOK, set)
}

// handleEvents streams record-change notifications as server-sent events until the client
// disconnects. A heartbeat is written on connect and every heartbeat interval.
func (h *httpHandler) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx)
	defer cleanup()

	h.metrics.streams.Inc()
	defer h.metrics.streams.Dec()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.SSEvent(realtimeEventHeartbeat, h.heartbeatPayload())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(message.EventType, realtimeEventPayload{
				Collection: message.Collection,
				RecordIDs:  message.RecordIDs,
				Timestamp:  message.Timestamp,
				Source:     realtimeSourceBackend,
			})
			return true
		case <-ticker.C:
			c.SSEvent(realtimeEventHeartbeat, h.heartbeatPayload())
			return true
		}
	})
	h.logger.Debug("event stream closed", zap.Error(ctx.Err()))
}

func (h *httpHandler) heartbeatPayload() realtimeEventPayload {
	return realtimeEventPayload{Timestamp: h.clock().UTC(), Source: realtimeSourceBackend}
}
