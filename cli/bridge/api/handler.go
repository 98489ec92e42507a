package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/mavlink-bridge/cli/bridge/hub"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/store"
	"github.com/daniil11ru/mavlink-bridge/cli/bridge/telemetry"
)

// Handler serves the pull side of the bridge: the current snapshot, the
// recent history and the live stream.
type Handler struct {
	Store      *store.Store
	Hub        *hub.Hub
	LinkState  func() string
	StaleAfter time.Duration
}

func NewHandler(st *store.Store, h *hub.Hub, linkState func() string, staleAfter time.Duration) *Handler {
	return &Handler{Store: st, Hub: h, LinkState: linkState, StaleAfter: staleAfter}
}

// telemetryResponse decorates a snapshot with its age so clients can judge
// freshness themselves. An old snapshot is still served.
type telemetryResponse struct {
	*telemetry.Snapshot
	AgeMs int64 `json:"age_ms"`
	Stale bool  `json:"stale"`
}

func (h *Handler) GetTelemetry(c *gin.Context) {
	snap, ok := h.Store.Get()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no telemetry received yet"})
		return
	}

	age, _ := h.Store.Age()
	c.JSON(http.StatusOK, telemetryResponse{
		Snapshot: snap,
		AgeMs:    age.Milliseconds(),
		Stale:    age > h.StaleAfter,
	})
}

func (h *Handler) GetHistory(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	c.JSON(http.StatusOK, h.Store.History(limit))
}

func (h *Handler) GetHealth(c *gin.Context) {
	body := gin.H{
		"status":      "ok",
		"link":        h.LinkState(),
		"subscribers": h.Hub.Len(),
	}

	if snap, ok := h.Store.Get(); ok {
		age, _ := h.Store.Age()
		body["seq"] = snap.Seq
		body["snapshot_age_ms"] = age.Milliseconds()
	} else {
		body["status"] = "no telemetry"
	}

	c.JSON(http.StatusOK, body)
}

// StreamTelemetry pushes every snapshot to the client as a server-sent
// event. The first event is the current snapshot, so a client is never
// blank while waiting for the vehicle to report.
func (h *Handler) StreamTelemetry(c *gin.Context) {
	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-sub.Done():
			return
		case snap := <-sub.C:
			data, err := snap.ToBytes()
			if err != nil {
				log.WithField("err", err).Error("Failed to serialize snapshot")
				continue
			}
			fmt.Fprintf(c.Writer, "id: %d\nevent: telemetry\ndata: %s\n\n", snap.Seq, data)
			c.Writer.Flush()
		}
	}
}
