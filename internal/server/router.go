// internal/server/router.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/promo-dashboard/internal/controller"
	"github.com/unclebandit/promo-dashboard/internal/dashboard"
	"github.com/unclebandit/promo-dashboard/internal/handler"
	"github.com/unclebandit/promo-dashboard/internal/logging"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Routes bundles everything the router serves.
type Routes struct {
	Campaign *controller.CampaignController
	Inbox    *controller.InboxController
	Drawing  *controller.DrawingController
	Media    *controller.MediaController
	Webhook  *handler.WebhookHandler
	DB       Pinger

	// WebhookRatePerMinute limits webhook calls per client IP. Zero disables it.
	WebhookRatePerMinute int
}

func NewRouter(rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", dashboard.Handler())
	r.Get("/healthz", health(rt.DB))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/webhook", func(r chi.Router) {
		if rt.WebhookRatePerMinute > 0 {
			r.Use(httprate.LimitByIP(rt.WebhookRatePerMinute, time.Minute))
		}
		r.Get("/", rt.Webhook.Verify)
		r.Post("/", rt.Webhook.Receive)
	})

	// Campaign routes
	r.Post("/campaign/start", rt.Campaign.StartCampaign)
	r.Get("/campaign/status", rt.Campaign.GetStatus)
	r.Post("/campaign/stop", rt.Campaign.StopCampaign)

	r.Get("/messages", rt.Inbox.ListMessages)
	r.Get("/media/{id}", rt.Media.GetMedia)

	r.Get("/participants", rt.Drawing.ListParticipants)
	r.Post("/drawing/draw", rt.Drawing.Draw)

	r.Post("/complaints/promote", rt.Inbox.PromoteMessage)
	r.Get("/complaints", rt.Inbox.ListComplaints)
	r.Get("/complaints/summary", rt.Inbox.ComplaintSummary)
	r.Post("/complaints/{id}/status", rt.Inbox.UpdateComplaintStatus)

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logging.Warn().Err(err).Msg("health check failed")
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
