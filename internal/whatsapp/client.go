// internal/whatsapp/client.go

// Package whatsapp is a minimal WhatsApp Cloud API (Graph API) client:
// text messages out, media downloads in.
package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	appErrors "github.com/unclebandit/promo-dashboard/internal/errors"
	"github.com/unclebandit/promo-dashboard/internal/logging"
	"github.com/unclebandit/promo-dashboard/internal/metrics"
)

// maxDetailBytes caps how much of a provider error body is kept.
const maxDetailBytes = 512

type Config struct {
	BaseURL       string
	APIVersion    string
	AccessToken   string
	PhoneNumberID string
	Timeout       time.Duration
	RatePerSec    int
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *breaker
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		breaker: newBreaker("whatsapp-api"),
	}
}

// Configured reports whether credentials for sending are present.
func (c *Client) Configured() bool {
	return c.cfg.AccessToken != "" && c.cfg.PhoneNumberID != ""
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

// SendText delivers a plain text message. Failures are *appErrors.SendError;
// Detail holds the provider response body when there was one.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if !c.Configured() {
		logging.Warn().Str("to", logging.MaskPhone(to)).Msg("credentials not configured, message not sent")
		return &appErrors.SendError{Destination: to, Err: appErrors.ErrMissingCredentials}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &appErrors.SendError{Destination: to, Err: err}
	}

	payload, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return err
	}

	err = c.breaker.execute(func() error {
		return c.postMessage(ctx, to, payload)
	})
	if err != nil {
		metrics.WhatsAppRequests.WithLabelValues("send_text", "failure").Inc()
		var sendErr *appErrors.SendError
		if errors.As(err, &sendErr) {
			return sendErr
		}
		return &appErrors.SendError{Destination: to, Err: err}
	}
	metrics.WhatsAppRequests.WithLabelValues("send_text", "success").Inc()
	logging.Debug().Str("to", logging.MaskPhone(to)).Msg("message sent")
	return nil
}

func (c *Client) postMessage(ctx context.Context, to string, payload []byte) error {
	url := fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.APIVersion, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &appErrors.SendError{Destination: to, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		return &appErrors.SendError{
			Destination: to,
			StatusCode:  resp.StatusCode,
			Detail:      strings.TrimSpace(string(detail)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// Media is a downloaded attachment. The caller must close Body.
type Media struct {
	ContentType string
	Body        io.ReadCloser
}

// FetchMedia resolves a media ID to its download URL and opens the content.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) (*Media, error) {
	if c.cfg.AccessToken == "" {
		return nil, appErrors.ErrMissingCredentials
	}

	infoURL := fmt.Sprintf("%s/%s/%s/", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.APIVersion, mediaID)
	infoResp, err := c.get(ctx, infoURL)
	if err != nil {
		metrics.WhatsAppRequests.WithLabelValues("media_info", "failure").Inc()
		return nil, fmt.Errorf("media info %s: %w", mediaID, err)
	}
	defer infoResp.Body.Close()

	var info mediaInfo
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode media info: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("media %s has no download url", mediaID)
	}

	mediaResp, err := c.get(ctx, info.URL)
	if err != nil {
		metrics.WhatsAppRequests.WithLabelValues("media_download", "failure").Inc()
		return nil, fmt.Errorf("media download %s: %w", mediaID, err)
	}
	metrics.WhatsAppRequests.WithLabelValues("media_download", "success").Inc()

	contentType := mediaResp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = info.MimeType
	}
	return &Media{ContentType: contentType, Body: mediaResp.Body}, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}
