// Package remote talks to the clinic's hosted scheduling script. The script
// owns the real calendar; this client only relays availability queries and
// appointment creation.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/pkg/circuitbreaker"
)

const defaultTimeout = 10 * time.Second

// The script accepts GET with an action parameter; it cannot serve
// preflighted requests, which is why nothing here POSTs.
const (
	actionCheckAvailability = "checkAvailability"
	actionCreateAppointment = "createAppointment"
)

type response struct {
	Success        bool     `json:"success"`
	AvailableSlots []string `json:"availableSlots"`
	Error          string   `json:"error"`
}

// Client is the outbound scheduling-script client.
type Client struct {
	scriptURL  string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     zerolog.Logger
}

// NewClient builds a client for the given script URL. An empty URL yields an
// unconfigured client; callers must check Configured before use.
func NewClient(scriptURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		scriptURL: scriptURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "scheduling-script",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		logger: logger.With().Str("component", "remote").Logger(),
	}
}

// Configured reports whether a script URL is set.
func (c *Client) Configured() bool {
	return c.scriptURL != ""
}

// CheckAvailability asks the script for free slots on a date.
func (c *Client) CheckAvailability(ctx context.Context, date model.Date, consultationType string) ([]model.TimeSlot, error) {
	params := url.Values{}
	params.Set("action", actionCheckAvailability)
	params.Set("date", date.String())
	params.Set("consultationType", consultationType)

	resp, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	slots := make([]model.TimeSlot, 0, len(resp.AvailableSlots))
	for _, s := range resp.AvailableSlots {
		slot, err := model.ParseTimeSlot(s)
		if err != nil {
			return nil, fmt.Errorf("malformed slot in response: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// CreateAppointment sends one creation request. No retries: the caller
// surfaces failures and lets the user trigger another attempt.
func (c *Client) CreateAppointment(ctx context.Context, apt model.AppointmentRequest) error {
	payload, err := json.Marshal(apt)
	if err != nil {
		return fmt.Errorf("failed to encode appointment: %w", err)
	}

	params := url.Values{}
	params.Set("action", actionCreateAppointment)
	params.Set("appointmentData", string(payload))

	_, err = c.do(ctx, params)
	return err
}

func (c *Client) do(ctx context.Context, params url.Values) (*response, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("scheduling script not configured")
	}

	var out *response
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL+"?"+params.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("scheduling script request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("scheduling script returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		var parsed response
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if !parsed.Success {
			if parsed.Error == "" {
				parsed.Error = "unknown scheduling error"
			}
			return fmt.Errorf("scheduling script error: %s", parsed.Error)
		}

		out = &parsed
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("action", params.Get("action")).Msg("scheduling script call failed")
		return nil, err
	}
	return out, nil
}
