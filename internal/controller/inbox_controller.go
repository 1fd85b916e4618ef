// internal/controller/inbox_controller.go
package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/service"
)

type InboxService interface {
	RecentMessages(ctx context.Context) ([]model.InboundMessage, error)
	Promote(ctx context.Context, messageID int) (*model.Complaint, error)
	ListComplaints(ctx context.Context, status string, day *time.Time) ([]model.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id int, status string) (*model.Complaint, error)
	ComplaintSummary(ctx context.Context) (model.ComplaintSummary, error)
}

type InboxController struct {
	Service InboxService
}

func (c *InboxController) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := c.Service.RecentMessages(r.Context())
	if err != nil {
		internalError(w, "failed to list messages", err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (c *InboxController) PromoteMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID int `json:"id"`
	}
	if err := decodeBody(r, &body); err != nil || body.ID <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid message id")
		return
	}

	complaint, err := c.Service.Promote(r.Context(), body.ID)
	if err != nil {
		c.complaintError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, complaint)
}

func (c *InboxController) ListComplaints(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = &d
	}

	complaints, err := c.Service.ListComplaints(r.Context(), r.URL.Query().Get("status"), day)
	if err != nil {
		c.complaintError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, complaints)
}

func (c *InboxController) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid complaint id")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}

	complaint, err := c.Service.UpdateComplaintStatus(r.Context(), id, body.Status)
	if err != nil {
		c.complaintError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, complaint)
}

func (c *InboxController) ComplaintSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.Service.ComplaintSummary(r.Context())
	if err != nil {
		internalError(w, "failed to summarize complaints", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (c *InboxController) complaintError(w http.ResponseWriter, err error) {
	var invalid *service.InvalidStatusError
	switch {
	case errors.As(err, &invalid):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErrors.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	default:
		internalError(w, "complaint operation failed", err)
	}
}

func internalError(w http.ResponseWriter, message string, err error) {
	logging.Error().Err(err).Msg(message)
	writeMessage(w, http.StatusInternalServerError, message)
}
