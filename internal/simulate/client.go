package simulate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

// apiError mirrors the service's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is a thin resty wrapper over the results API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client for baseURL. Requests are retried on
// transport errors; result posts carry an idempotency key so a retry
// never double-records.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

func statusError(op string, resp *resty.Response) error {
	if e, ok := resp.Error().(*apiError); ok && e.Message != "" {
		return fmt.Errorf("%s: %d %s: %s", op, resp.StatusCode(), e.Code, e.Message)
	}
	return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode())
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).SetError(&apiError{}).Get("/healthz")
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if resp.IsError() {
		return statusError("health", resp)
	}
	return nil
}

// CreateEvent starts a new active event.
func (c *Client) CreateEvent(ctx context.Context, division, distance, ageGroup string) (model.Event, error) {
	var ev model.Event
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"division": division, "distance": distance, "age_group": ageGroup}).
		SetResult(&ev).
		SetError(&apiError{}).
		Post("/api/events")
	if err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	if resp.IsError() {
		return model.Event{}, statusError("create event", resp)
	}
	return ev, nil
}

// EndEvent ends the event.
func (c *Client) EndEvent(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).SetError(&apiError{}).Post("/api/events/" + id + "/end")
	if err != nil {
		return fmt.Errorf("end event: %w", err)
	}
	if resp.IsError() {
		return statusError("end event", resp)
	}
	return nil
}

// PostResult records one finish under key.
func (c *Client) PostResult(ctx context.Context, eventID string, f Finish, key string) error {
	body := map[string]string{
		"event_id":    eventID,
		"runner_name": f.RunnerName,
		"house":       f.House,
		"minutes":     strconv.Itoa(f.Minutes),
		"seconds":     strconv.Itoa(f.Seconds),
		"hundredths":  strconv.Itoa(f.Hundredths),
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", key).
		SetBody(body).
		SetError(&apiError{}).
		Post("/api/results")
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	if resp.IsError() {
		return statusError("post result", resp)
	}
	return nil
}

// Leaderboard fetches the active event's leaderboard capped at limit.
func (c *Client) Leaderboard(ctx context.Context, limit int) (types.Board, error) {
	var b types.Board
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&b).
		SetError(&apiError{}).
		Get("/api/leaderboard")
	if err != nil {
		return types.Board{}, fmt.Errorf("leaderboard: %w", err)
	}
	if resp.IsError() {
		return types.Board{}, statusError("leaderboard", resp)
	}
	return b, nil
}
