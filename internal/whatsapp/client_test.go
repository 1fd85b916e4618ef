package whatsapp_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/whatsapp"
)

func newTestClient(baseURL string) *whatsapp.Client {
	return whatsapp.NewClient(whatsapp.Config{
		BaseURL:       baseURL,
		APIVersion:    "v18.0",
		AccessToken:   "secret",
		PhoneNumberID: "100200",
		RatePerSec:    1000,
	})
}

func TestSendTextPostsMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/100200/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"messages":[{"id":"wamid.1"}]}`)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendText(context.Background(), "5511999990000", "hello")
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got["messaging_product"])
	assert.Equal(t, "5511999990000", got["to"])
	assert.Equal(t, map[string]any{"body": "hello"}, got["text"])
}

func TestSendTextSurfacesProviderDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Recipient not in allowed list"}}`)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendText(context.Background(), "5511999990000", "hello")
	require.Error(t, err)

	var sendErr *appErrors.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Equal(t, http.StatusBadRequest, sendErr.StatusCode)
	assert.Contains(t, sendErr.Detail, "Recipient not in allowed list")
}

func TestSendTextWithoutCredentials(t *testing.T) {
	c := whatsapp.NewClient(whatsapp.Config{BaseURL: "http://unused", APIVersion: "v18.0"})
	assert.False(t, c.Configured())

	err := c.SendText(context.Background(), "5511999990000", "hello")
	assert.ErrorIs(t, err, appErrors.ErrMissingCredentials)
}

func TestSendTextOpensCircuitOnOutage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for i := 0; i < 5; i++ {
		require.Error(t, c.SendText(context.Background(), "5511999990000", "hello"))
	}

	err := c.SendText(context.Background(), "5511999990000", "hello")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

func TestRecipientRejectionsDoNotOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for i := 0; i < 8; i++ {
		require.Error(t, c.SendText(context.Background(), "5511999990000", "hello"))
	}
	assert.Equal(t, int32(8), calls.Load())
}

func TestFetchMedia(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v18.0/media-1/":
			json.NewEncoder(w).Encode(map[string]string{"url": srv.URL + "/download/media-1", "mime_type": "image/jpeg"})
		case "/download/media-1":
			w.Header().Set("Content-Type", "image/jpeg")
			io.WriteString(w, "jpeg-bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	media, err := newTestClient(srv.URL).FetchMedia(context.Background(), "media-1")
	require.NoError(t, err)
	defer media.Body.Close()

	body, err := io.ReadAll(media.Body)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", media.ContentType)
	assert.Equal(t, "jpeg-bytes", string(body))
}

func TestFetchMediaProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchMedia(context.Background(), "media-1")
	assert.Error(t, err)
}
