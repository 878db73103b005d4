package handlers

import (
	"io"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/events"

	"github.com/gin-gonic/gin"
)

// EventsHandler serves the liveness stream as server-sent events.
type EventsHandler struct {
	broker   *events.Broker
	interval time.Duration
	max      int
}

// NewEventsHandler returns an EventsHandler that sends a heartbeat every
// interval and closes the stream after max heartbeats.
func NewEventsHandler(broker *events.Broker, interval time.Duration, max int) *EventsHandler {
	if interval <= 0 {
		interval = time.Second
	}
	if max <= 0 {
		max = 300
	}
	return &EventsHandler{broker: broker, interval: interval, max: max}
}

// Stream godoc
// @Summary      Event stream (connected, heartbeat, snapshot, webhook)
// @Tags         events
// @Produce      text/event-stream
// @Param        token  query  string  true  "Bearer token"
// @Success      200
// @Failure      401  {object}  map[string]string
// @Router       /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sub, unsubscribe := h.broker.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	c.SSEvent(events.Connected, events.Now(time.Now()))
	c.Writer.Flush()

	beats := 0
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent(e.Name, e.Data)
			return true
		case t := <-ticker.C:
			beats++
			c.SSEvent(events.Heartbeat, events.Now(t))
			return beats < h.max
		}
	})
}
