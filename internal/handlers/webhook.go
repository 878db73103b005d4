package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/owenmcgrath/todoist-projection/internal/auth"
	dom "github.com/owenmcgrath/todoist-projection/internal/domain"
	"github.com/owenmcgrath/todoist-projection/internal/dto"
	"github.com/owenmcgrath/todoist-projection/internal/events"
	"github.com/owenmcgrath/todoist-projection/internal/repo"
	"github.com/owenmcgrath/todoist-projection/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookEvent is the stream event name for forwarded webhooks.
const WebhookEvent = "webhook"

const maxWebhookBody = 1 << 20

// Refresher schedules a background refresh.
type Refresher interface {
	TriggerRefresh()
}

type WebhookHandler struct {
	secret    string
	history   repo.HistoryRepo
	publisher service.Publisher
	refresher Refresher
}

func NewWebhookHandler(secret string, history repo.HistoryRepo, publisher service.Publisher, refresher Refresher) *WebhookHandler {
	if history == nil {
		history = repo.NopHistoryRepo{}
	}
	return &WebhookHandler{secret: secret, history: history, publisher: publisher, refresher: refresher}
}

// Receive godoc
// @Summary      Todoist webhook receiver
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        X-Todoist-Hmac-SHA256  header  string  true  "base64 HMAC-SHA256 of the body"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /webhook [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	if h.secret == "" {
		log.Printf("webhook rejected: TODOIST_CLIENT_SECRET is not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration error"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if !auth.VerifySignature(body, c.GetHeader(auth.SignatureHeader), h.secret) {
		log.Printf("webhook rejected: bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	log.Printf("webhook received: event=%s user=%s triggered_at=%s",
		payload.EventName, payload.UserID, payload.TriggeredAt)

	sum := sha256.Sum256(body)
	ev := dom.WebhookEvent{
		ID:          uuid.NewString(),
		Digest:      hex.EncodeToString(sum[:]),
		EventName:   payload.EventName,
		UserID:      payload.UserID,
		TriggeredAt: payload.TriggeredAt,
		ReceivedAt:  time.Now().UTC(),
	}
	inserted, err := h.history.RecordWebhook(c.Request.Context(), ev)
	if err != nil {
		log.Printf("record webhook: %v", err)
		inserted = true
	}
	if !inserted {
		log.Printf("webhook %s is a redelivery, skipping refresh", ev.Digest[:12])
		c.JSON(http.StatusOK, gin.H{"ok": true, "duplicate": true})
		return
	}

	if h.publisher != nil {
		h.publisher.Publish(events.Event{Name: WebhookEvent, Data: dto.WebhookNotice{
			EventName:   payload.EventName,
			TriggeredAt: payload.TriggeredAt,
		}})
	}
	if h.refresher != nil {
		h.refresher.TriggerRefresh()
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
