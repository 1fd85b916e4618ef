package controller_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/promo-dashboard/internal/controller"
	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/model"
	"github.com/unclebandit/promo-dashboard/internal/service"
	"github.com/unclebandit/promo-dashboard/internal/whatsapp"
)

type MockInbox struct {
	status string
	day    *time.Time
}

func (m *MockInbox) RecentMessages(ctx context.Context) ([]model.InboundMessage, error) {
	return []model.InboundMessage{{ID: 2, Phone: "5511999991234", SenderName: "Ana", Body: "oi"}}, nil
}

func (m *MockInbox) Promote(ctx context.Context, messageID int) (*model.Complaint, error) {
	if messageID != 2 {
		return nil, appErrors.NewNotFound("message", messageID)
	}
	return &model.Complaint{ID: 1, Name: "Ana", Status: model.ComplaintRegistered}, nil
}

func (m *MockInbox) ListComplaints(ctx context.Context, status string, day *time.Time) ([]model.Complaint, error) {
	if status == "bogus" {
		return nil, &service.InvalidStatusError{Status: status}
	}
	m.status, m.day = status, day
	return []model.Complaint{}, nil
}

func (m *MockInbox) UpdateComplaintStatus(ctx context.Context, id int, status string) (*model.Complaint, error) {
	if status != model.ComplaintSolved {
		return nil, &service.InvalidStatusError{Status: status}
	}
	if id != 1 {
		return nil, appErrors.NewNotFound("complaint", id)
	}
	return &model.Complaint{ID: 1, Status: status}, nil
}

func (m *MockInbox) ComplaintSummary(ctx context.Context) (model.ComplaintSummary, error) {
	return model.ComplaintSummary{Registered: 3, Solved: 1}, nil
}

type MockDrawing struct {
	participants []model.Participant
}

func (m *MockDrawing) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	return m.participants, nil
}

func (m *MockDrawing) Draw(ctx context.Context) (*model.Participant, error) {
	if len(m.participants) == 0 {
		return nil, appErrors.ErrNoParticipants
	}
	return &m.participants[0], nil
}

type MockMedia struct {
	err error
}

func (m *MockMedia) FetchMedia(ctx context.Context, mediaID string) (*whatsapp.Media, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &whatsapp.Media{ContentType: "image/png", Body: io.NopCloser(strings.NewReader("png:" + mediaID))}, nil
}

func newDashboardRouter(inbox *MockInbox, drawing *MockDrawing, media *MockMedia) http.Handler {
	ic := &controller.InboxController{Service: inbox}
	dc := &controller.DrawingController{Service: drawing}
	mc := &controller.MediaController{Media: media}

	r := chi.NewRouter()
	r.Get("/messages", ic.ListMessages)
	r.Post("/complaints/promote", ic.PromoteMessage)
	r.Get("/complaints", ic.ListComplaints)
	r.Get("/complaints/summary", ic.ComplaintSummary)
	r.Post("/complaints/{id}/status", ic.UpdateComplaintStatus)
	r.Get("/participants", dc.ListParticipants)
	r.Post("/drawing/draw", dc.Draw)
	r.Get("/media/{id}", mc.GetMedia)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListMessages(t *testing.T) {
	h := newDashboardRouter(&MockInbox{}, &MockDrawing{}, &MockMedia{})

	w := serve(h, http.MethodGet, "/messages", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "Ana", res[0]["name"])
	assert.Equal(t, "oi", res[0]["text"])
}

func TestPromoteMessage(t *testing.T) {
	h := newDashboardRouter(&MockInbox{}, &MockDrawing{}, &MockMedia{})

	assert.Equal(t, http.StatusCreated, serve(h, http.MethodPost, "/complaints/promote", `{"id":2}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/complaints/promote", `{"id":9}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/complaints/promote", `{}`).Code)
}

func TestListComplaintsFilters(t *testing.T) {
	inbox := &MockInbox{}
	h := newDashboardRouter(inbox, &MockDrawing{}, &MockMedia{})

	w := serve(h, http.MethodGet, "/complaints?status=solved&date=2026-10-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "solved", inbox.status)
	require.NotNil(t, inbox.day)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *inbox.day)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/complaints?date=01/10/2026", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/complaints?status=bogus", "").Code)
}

func TestUpdateComplaintStatusCodes(t *testing.T) {
	h := newDashboardRouter(&MockInbox{}, &MockDrawing{}, &MockMedia{})

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/complaints/1/status", `{"status":"solved"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/complaints/1/status", `{"status":"closed"}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/complaints/7/status", `{"status":"solved"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/complaints/abc/status", `{"status":"solved"}`).Code)
}

func TestComplaintSummaryEndpoint(t *testing.T) {
	h := newDashboardRouter(&MockInbox{}, &MockDrawing{}, &MockMedia{})

	w := serve(h, http.MethodGet, "/complaints/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"registered":3,"solved":1}`, w.Body.String())
}

func TestDrawEndpoint(t *testing.T) {
	drawing := &MockDrawing{}
	h := newDashboardRouter(&MockInbox{}, drawing, &MockMedia{})

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/drawing/draw", "").Code)

	drawing.participants = []model.Participant{{Phone: "5511999991234", Name: "Ana"}}
	w := serve(h, http.MethodPost, "/drawing/draw", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Winner model.Participant `json:"winner"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Ana", res.Winner.Name)

	w = serve(h, http.MethodGet, "/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "5511999991234")
}

func TestGetMedia(t *testing.T) {
	media := &MockMedia{}
	h := newDashboardRouter(&MockInbox{}, &MockDrawing{}, media)

	w := serve(h, http.MethodGet, "/media/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png:abc", w.Body.String())

	media.err = errors.New("token missing")
	assert.Equal(t, http.StatusInternalServerError, serve(h, http.MethodGet, "/media/abc", "").Code)
}
