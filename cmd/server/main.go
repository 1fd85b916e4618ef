// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/unclebandit/promo-dashboard/internal/config"
	"github.com/unclebandit/promo-dashboard/internal/controller"
	"github.com/unclebandit/promo-dashboard/internal/db"
	"github.com/unclebandit/promo-dashboard/internal/handler"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/queue"
	"github.com/unclebandit/promo-dashboard/internal/repository"
	"github.com/unclebandit/promo-dashboard/internal/server"
	"github.com/unclebandit/promo-dashboard/internal/service"
	"github.com/unclebandit/promo-dashboard/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	conn, err := db.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logging.Fatal().Err(err).Msg("database unavailable")
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}

	contactRepo := &repository.ContactRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	participantRepo := &repository.ParticipantRepository{DB: conn}
	complaintRepo := &repository.ComplaintRepository{DB: conn}

	wa := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       cfg.Meta.BaseURL,
		APIVersion:    cfg.Meta.APIVersion,
		AccessToken:   cfg.Meta.AccessToken,
		PhoneNumberID: cfg.Meta.PhoneNumberID,
		Timeout:       cfg.Meta.SendTimeout,
		RatePerSec:    cfg.Meta.RatePerSec,
	})
	if !cfg.Meta.MessagingConfigured() {
		logging.Warn().Msg("⚠️ WhatsApp credentials not configured, sends will fail")
	}

	q, err := newQueue(cfg.Queue)
	if err != nil {
		logging.Fatal().Err(err).Msg("queue unavailable")
	}
	defer q.Close()
	if cfg.Queue.Driver == "memory" {
		// With RabbitMQ, replies are sent by cmd/worker instead.
		if err := service.NewReplyWorker(wa, cfg.Drawing.ReplyTemplate).Start(q); err != nil {
			logging.Fatal().Err(err).Msg("failed to start reply worker")
		}
	}

	housekeeper := service.NewHousekeeper(messageRepo, int64(cfg.Housekeeping.MaxDBMB), cfg.Housekeeping.DeleteBatch)
	scheduler := cron.New()
	if _, err := housekeeper.Schedule(scheduler, cfg.Housekeeping.Schedule); err != nil {
		logging.Fatal().Err(err).Str("schedule", cfg.Housekeeping.Schedule).Msg("invalid housekeeping schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	pacing := service.DefaultPacing()
	pacing.BatchSize = cfg.Campaign.BatchSize
	pacing.Unit = cfg.Campaign.TimeUnit
	pacing.EligibilityWindow = cfg.Campaign.EligibilityWindow
	campaigns := service.NewCampaignScheduler(contactRepo, wa, pacing)

	inbound := &service.InboundService{
		Messages:     messageRepo,
		Participants: participantRepo,
		Queue:        q,
		Housekeeping: housekeeper,
	}

	router := server.NewRouter(server.Routes{
		Campaign:             &controller.CampaignController{Scheduler: campaigns},
		Inbox:                &controller.InboxController{Service: service.NewInboxService(messageRepo, complaintRepo)},
		Drawing:              &controller.DrawingController{Service: &service.DrawingService{Participants: participantRepo}},
		Media:                &controller.MediaController{Media: wa},
		Webhook:              &handler.WebhookHandler{VerifyToken: cfg.Meta.VerifyToken, Inbound: inbound},
		DB:                   conn,
		WebhookRatePerMinute: cfg.HTTP.WebhookRatePerMinute,
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		logging.Info().Str("addr", cfg.HTTP.Addr).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("http shutdown")
	}
	if err := campaigns.StopCampaign(); err == nil {
		logging.Info().Msg("stopping active campaign")
	}
	if err := campaigns.Wait(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("campaign did not stop in time")
	}
}

func newQueue(cfg config.QueueConfig) (queue.Queue, error) {
	if cfg.Driver == "amqp" {
		return queue.DialAMQP(cfg.AMQPURL)
	}
	return queue.NewInMemoryQueue(), nil
}
