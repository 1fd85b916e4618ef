// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/model"
)

// CampaignRunner is the scheduler as seen by the HTTP layer.
type CampaignRunner interface {
	StartCampaign(ctx context.Context, variants []string) error
	GetStatus() model.CampaignRun
	StopCampaign() error
}

type CampaignController struct {
	Scheduler CampaignRunner
}

type startCampaignRequest struct {
	Messages []string `json:"messages"`
	Msg1     string   `json:"msg1"`
	Msg2     string   `json:"msg2"`
	Msg3     string   `json:"msg3"`
}

// variants merges the list form with the legacy msg1..msg3 fields.
func (b startCampaignRequest) variants() []string {
	out := append([]string{}, b.Messages...)
	for _, m := range []string{b.Msg1, b.Msg2, b.Msg3} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (c *CampaignController) StartCampaign(w http.ResponseWriter, r *http.Request) {
	var body startCampaignRequest
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	err := c.Scheduler.StartCampaign(r.Context(), body.variants())
	switch {
	case err == nil:
		writeMessage(w, http.StatusAccepted, "campaign started")
	case errors.Is(err, appErrors.ErrCampaignActive):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, appErrors.ErrNoMessageVariants):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error().Err(err).Msg("failed to start campaign")
		writeMessage(w, http.StatusInternalServerError, "failed to start campaign")
	}
}

func (c *CampaignController) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Scheduler.GetStatus())
}

func (c *CampaignController) StopCampaign(w http.ResponseWriter, r *http.Request) {
	err := c.Scheduler.StopCampaign()
	switch {
	case err == nil:
		writeMessage(w, http.StatusAccepted, "campaign will stop shortly")
	case errors.Is(err, appErrors.ErrNothingToStop):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
