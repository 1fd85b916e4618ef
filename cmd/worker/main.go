// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/promo-dashboard/internal/config"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/queue"
	"github.com/unclebandit/promo-dashboard/internal/service"
	"github.com/unclebandit/promo-dashboard/internal/whatsapp"
)

// The worker consumes drawing confirmations from RabbitMQ when the server
// runs with QUEUE_DRIVER=amqp.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wa := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       cfg.Meta.BaseURL,
		APIVersion:    cfg.Meta.APIVersion,
		AccessToken:   cfg.Meta.AccessToken,
		PhoneNumberID: cfg.Meta.PhoneNumberID,
		Timeout:       cfg.Meta.SendTimeout,
		RatePerSec:    cfg.Meta.RatePerSec,
	})

	q, err := queue.DialAMQP(cfg.Queue.AMQPURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}

	if err := service.NewReplyWorker(wa, cfg.Drawing.ReplyTemplate).Start(q); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register consumer")
	}

	logging.Info().Str("topic", queue.TopicDrawingReplies).Msg("Worker running, waiting for messages...")
	<-ctx.Done()

	if err := q.Close(); err != nil {
		logging.Warn().Err(err).Msg("closing rabbitmq connection")
	}
}
