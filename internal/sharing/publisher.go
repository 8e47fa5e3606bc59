package sharing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Publisher turns a public list into a shareable URL. Implementations stand
// in for the sharing/publishing backend; the wishlist service treats the
// returned URL as opaque.
type Publisher interface {
	Publish(ctx context.Context, userID, listID string) (string, error)
}

// LinkPublisher derives the share URL locally from a fixed base, with no
// backend round-trip. URLs have the shape <base>/wishlist/<listID>.
type LinkPublisher struct {
	BaseURL string
}

// NewLinkPublisher creates a publisher that synthesizes URLs under base.
func NewLinkPublisher(base string) *LinkPublisher {
	return &LinkPublisher{BaseURL: base}
}

// Publish returns the deterministic share URL for the list.
func (p *LinkPublisher) Publish(_ context.Context, _ string, listID string) (string, error) {
	return p.BaseURL + "/wishlist/" + listID, nil
}

// HTTPPublisher asks a sharing backend to publish the list and hands back
// the URL the backend minted. Calls run through a circuit breaker so a
// failing backend degrades share requests quickly instead of tying up
// handlers.
type HTTPPublisher struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
	logger   *slog.Logger
}

// HTTPPublisherConfig holds the backend endpoint and breaker tuning.
type HTTPPublisherConfig struct {
	Endpoint     string
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// DefaultHTTPPublisherConfig returns breaker defaults for the given endpoint.
func DefaultHTTPPublisherConfig(endpoint string) HTTPPublisherConfig {
	return HTTPPublisherConfig{
		Endpoint:     endpoint,
		Timeout:      10 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
		OpenTimeout:  30 * time.Second,
	}
}

// NewHTTPPublisher creates a circuit-broken publisher against the backend.
func NewHTTPPublisher(cfg HTTPPublisherConfig, logger *slog.Logger) *HTTPPublisher {
	settings := gobreaker.Settings{
		Name:    "share-publisher",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("share publisher breaker state change",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &HTTPPublisher{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		breaker:  gobreaker.NewCircuitBreaker[string](settings),
		logger:   logger,
	}
}

type publishRequest struct {
	UserID string `json:"user_id"`
	ListID string `json:"list_id"`
}

type publishResponse struct {
	URL string `json:"url"`
}

// Publish POSTs the list reference to the backend and returns the minted
// URL. When the breaker is open the call fails immediately.
func (p *HTTPPublisher) Publish(ctx context.Context, userID, listID string) (string, error) {
	return p.breaker.Execute(func() (string, error) {
		return p.publish(ctx, userID, listID)
	})
}

func (p *HTTPPublisher) publish(ctx context.Context, userID, listID string) (string, error) {
	body, err := json.Marshal(publishRequest{UserID: userID, ListID: listID})
	if err != nil {
		return "", fmt.Errorf("marshal publish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish list %s: %w", listID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("publish list %s: backend returned %d", listID, resp.StatusCode)
	}

	var out publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("publish list %s: backend returned empty url", listID)
	}

	return out.URL, nil
}
