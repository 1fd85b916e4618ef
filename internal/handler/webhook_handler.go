// internal/handler/webhook_handler.go
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/service"
)

const maxWebhookBody = 1 << 20

// MessageHandler consumes messages parsed from webhook notifications.
type MessageHandler interface {
	HandleMessage(ctx context.Context, in service.IncomingMessage) (*model.InboundMessage, error)
}

// WebhookHandler serves the WhatsApp Cloud API webhook
type WebhookHandler struct {
	VerifyToken string
	Inbound     MessageHandler
}

// Verify answers the subscription handshake.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.VerifyToken == "" || q.Get("hub.verify_token") != h.VerifyToken {
		http.Error(w, "invalid verification token", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	io.WriteString(w, q.Get("hub.challenge"))
}

// Receive always acknowledges with 200 so Meta does not redeliver; payloads
// it cannot use are logged and dropped.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	defer io.WriteString(w, "OK")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logging.Warn().Err(err).Msg("failed to read webhook body")
		return
	}

	in, ok := ParseNotification(body)
	if !ok {
		logging.Debug().Msg("webhook notification without a message")
		return
	}
	if _, err := h.Inbound.HandleMessage(r.Context(), in); err != nil {
		logging.Error().Err(err).Str("from", logging.MaskPhone(in.From)).Msg("failed to handle inbound message")
	}
}

type notification struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []notificationMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type notificationMessage struct {
	From string `json:"from"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Image    *notificationMedia `json:"image"`
	Video    *notificationMedia `json:"video"`
	Document *notificationMedia `json:"document"`
	Audio    *notificationMedia `json:"audio"`
}

type notificationMedia struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
}

// ParseNotification extracts the first message of a webhook notification.
func ParseNotification(body []byte) (service.IncomingMessage, bool) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		logging.Warn().Err(err).Msg("unexpected webhook payload")
		return service.IncomingMessage{}, false
	}
	if len(n.Entry) == 0 || len(n.Entry[0].Changes) == 0 || len(n.Entry[0].Changes[0].Value.Messages) == 0 {
		return service.IncomingMessage{}, false
	}

	m := n.Entry[0].Changes[0].Value.Messages[0]
	if m.From == "" {
		return service.IncomingMessage{}, false
	}
	in := service.IncomingMessage{From: m.From, Type: m.Type}

	var media *notificationMedia
	switch m.Type {
	case "text":
		if m.Text == nil {
			return service.IncomingMessage{}, false
		}
		in.Text = m.Text.Body
	case "image":
		media = m.Image
	case "video":
		media = m.Video
	case "document":
		media = m.Document
	case "audio":
		media = m.Audio
	default:
		logging.Debug().Str("type", m.Type).Msg("unsupported message type")
		return service.IncomingMessage{}, false
	}
	if media != nil {
		in.MediaID = media.ID
		in.Caption = media.Caption
	} else if m.Type != "text" {
		return service.IncomingMessage{}, false
	}
	return in, true
}
