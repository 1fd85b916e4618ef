// internal/service/inbound_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/metrics"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/queue"
	"github.com/unclebandit/promo-dashboard/internal/repository"
)

// IncomingMessage is one message pulled out of a webhook notification.
type IncomingMessage struct {
	From    string
	Type    string
	Text    string
	Caption string
	MediaID string
}

// Trigger starts background work without waiting for it.
type Trigger interface {
	Trigger()
}

// InboundService records inbound messages, enrolls senders in the drawing
// and queues the enrollment confirmation.
type InboundService struct {
	Messages     repository.MessageRepositoryInterface
	Participants repository.ParticipantRepositoryInterface
	Queue        queue.Queue
	Housekeeping Trigger
}

// HandleMessage stores msg and returns the saved inbox entry.
func (s *InboundService) HandleMessage(ctx context.Context, in IncomingMessage) (*model.InboundMessage, error) {
	if in.From == "" {
		return nil, errors.New("message without sender")
	}
	metrics.WebhookMessages.WithLabelValues(in.Type).Inc()

	body, name := describe(in)
	msg := &model.InboundMessage{
		Phone:      in.From,
		SenderName: DisplayName(name, in.From, "Pessoa"),
		Body:       body,
		MediaID:    in.MediaID,
		MediaType:  in.Type,
	}
	if err := s.Messages.RecordInbound(ctx, msg); err != nil {
		return nil, fmt.Errorf("record inbound message: %w", err)
	}
	log := logging.With().Str("from", logging.MaskPhone(in.From)).Str("type", in.Type).Logger()
	log.Info().Int("message_id", msg.ID).Msg("inbound message stored")

	participant := DisplayName(name, in.From, "Participante")
	enrolled, err := s.Participants.Enroll(ctx, in.From, participant)
	if err != nil {
		log.Error().Err(err).Msg("drawing enrollment failed")
	} else if enrolled && s.Queue != nil {
		job := model.ReplyJob{Phone: in.From, Name: participant}
		if err := s.Queue.Publish(queue.TopicDrawingReplies, job); err != nil {
			log.Error().Err(err).Msg("failed to queue drawing confirmation")
		}
	}

	if s.Housekeeping != nil {
		s.Housekeeping.Trigger()
	}
	return msg, nil
}

// describe picks the inbox text and the name guess for a message. Media
// without a caption gets a placeholder such as "[IMAGE RECEIVED]".
func describe(in IncomingMessage) (body, name string) {
	switch in.Type {
	case "text":
		return in.Text, ExtractName(in.Text)
	case "image", "video", "document", "audio":
		if strings.TrimSpace(in.Caption) != "" {
			return in.Caption, ExtractName(in.Caption)
		}
		return "[" + strings.ToUpper(in.Type) + " RECEIVED]", ""
	default:
		if in.Text != "" {
			return in.Text, ExtractName(in.Text)
		}
		return "[" + strings.ToUpper(in.Type) + " RECEIVED]", ""
	}
}
