package tiqr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"technika/internal/domain"
)

const defaultBaseURL = "https://api.tiqr.events"

// Config holds TiQR client configuration.
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

type client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient returns a BookingProvider backed by the TiQR HTTP API. Calls
// are bounded by the configured timeout and authenticated with a static
// bearer token.
func NewClient(cfg Config, logger *slog.Logger) domain.BookingProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIToken).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &client{http: httpClient, logger: logger}
}

func (c *client) CreateBooking(ctx context.Context, payload domain.BookingPayload) (*domain.BookingResponse, error) {
	// The create and the local persist that follows are not atomic. The
	// idempotency key lets the provider deduplicate a retried create after
	// a timeout; the narrow created-but-never-recorded window remains.
	withIdempotencyKey(&payload)

	var out domain.BookingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/participant/booking/")
	if err != nil {
		return nil, fmt.Errorf("%w: create booking: %v", domain.ErrUpstream, err)
	}
	if resp.IsError() {
		c.logger.Error("tiqr create booking failed", "status", resp.StatusCode(), "body", resp.String())
		return nil, fmt.Errorf("%w: create booking returned status %d", domain.ErrUpstream, resp.StatusCode())
	}
	if out.Booking.UID == "" {
		return nil, fmt.Errorf("%w: create booking response missing booking uid", domain.ErrUpstream)
	}
	return &out, nil
}

func (c *client) CreateBulkBooking(ctx context.Context, payload domain.BulkBookingPayload) (*domain.BulkBookingResponse, error) {
	for i := range payload.Bookings {
		withIdempotencyKey(&payload.Bookings[i])
	}

	var out domain.BulkBookingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		Post("/participant/booking/bulk/")
	if err != nil {
		return nil, fmt.Errorf("%w: create bulk booking: %v", domain.ErrUpstream, err)
	}
	if resp.IsError() {
		c.logger.Error("tiqr bulk booking failed", "status", resp.StatusCode(), "body", resp.String())
		return nil, fmt.Errorf("%w: create bulk booking returned status %d", domain.ErrUpstream, resp.StatusCode())
	}
	if out.Booking.UID == "" {
		return nil, fmt.Errorf("%w: bulk booking response missing booking uid", domain.ErrUpstream)
	}
	return &out, nil
}

func (c *client) FetchBooking(ctx context.Context, bookingUID string) (*domain.FetchBookingResponse, error) {
	var out domain.FetchBookingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/participant/booking/%s/", bookingUID))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch booking %s: %v", domain.ErrUpstream, bookingUID, err)
	}
	if resp.StatusCode() == 404 {
		return nil, fmt.Errorf("%w: booking %s", domain.ErrNotFound, bookingUID)
	}
	if resp.IsError() {
		c.logger.Error("tiqr fetch booking failed", "uid", bookingUID, "status", resp.StatusCode())
		return nil, fmt.Errorf("%w: fetch booking returned status %d", domain.ErrUpstream, resp.StatusCode())
	}
	return &out, nil
}

func withIdempotencyKey(p *domain.BookingPayload) {
	if p.MetaData == nil {
		p.MetaData = map[string]any{}
	}
	if _, ok := p.MetaData["idempotency_key"]; !ok {
		p.MetaData["idempotency_key"] = uuid.NewString()
	}
}
