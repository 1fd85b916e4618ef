// internal/controller/drawing_controller.go
package controller

import (
	"context"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/model"
)

type Drawing interface {
	ListParticipants(ctx context.Context) ([]model.Participant, error)
	Draw(ctx context.Context) (*model.Participant, error)
}

type DrawingController struct {
	Service Drawing
}

func (c *DrawingController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := c.Service.ListParticipants(r.Context())
	if err != nil {
		internalError(w, "failed to list participants", err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

func (c *DrawingController) Draw(w http.ResponseWriter, r *http.Request) {
	winner, err := c.Service.Draw(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"winner": winner})
	case errors.Is(err, appErrors.ErrNoParticipants):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		internalError(w, "drawing failed", err)
	}
}
