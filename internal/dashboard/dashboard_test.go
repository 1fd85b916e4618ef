package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/promo-dashboard/internal/dashboard"
)

func TestHandlerServesPage(t *testing.T) {
	w := httptest.NewRecorder()
	dashboard.Handler()(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/campaign/status")
}
