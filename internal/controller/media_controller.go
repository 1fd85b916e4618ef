// internal/controller/media_controller.go
package controller

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/whatsapp"
)

type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaID string) (*whatsapp.Media, error)
}

// MediaController proxies WhatsApp media so the dashboard never sees the access token.
type MediaController struct {
	Media MediaFetcher
}

func (c *MediaController) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	media, err := c.Media.FetchMedia(r.Context(), id)
	if err != nil {
		internalError(w, "failed to fetch media", err)
		return
	}
	defer media.Body.Close()

	if media.ContentType != "" {
		w.Header().Set("Content-Type", media.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, media.Body); err != nil {
		logging.Warn().Err(err).Str("media_id", id).Msg("media stream interrupted")
	}
}
