// Package connect is a client for the coaching platform's training calendar.
package connect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"runcoach/internal/analysis"
	"runcoach/internal/workout"
	"runcoach/internal/xhttp"
	"runcoach/internal/xslog"
)

// ErrUnauthorized is returned when the platform rejects the stored tokens
var ErrUnauthorized = errors.New("connect: unauthorized")

// APIError is a non-2xx response from the platform
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("connect API error %d: %s", e.StatusCode, e.Message)
}

// Client is a training calendar API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

var _ workout.Source = (*Client)(nil)

// NewClient creates a client for the API at baseURL. Requests carry tokens
// from tokenSource and go through transport (nil for the default).
func NewClient(baseURL string, tokenSource oauth2.TokenSource, transport http.RoundTripper) *Client {
	base := xhttp.NewClient(transport)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Timeout = base.Timeout

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(),
	}
}

// ScheduledWorkouts fetches the workouts scheduled on day. Workouts the
// platform returns in an unusable shape are logged and skipped.
func (c *Client) ScheduledWorkouts(ctx context.Context, day time.Time) ([]analysis.PlannedWorkout, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("date", day.Format(workout.DateLayout))

	resp, err := c.get(ctx, "/calendar/workouts", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body calendarResponse
	if err := go_json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding calendar: %w", err)
	}

	logger := xslog.FromContext(ctx)

	workouts := make([]analysis.PlannedWorkout, 0, len(body.Workouts))
	for _, doc := range body.Workouts {
		if doc.ScheduledDate == "" {
			doc.ScheduledDate = day.Format(workout.DateLayout)
		}
		w, err := doc.Workout()
		if err != nil {
			logger.WarnContext(ctx, "skipping calendar workout", xslog.Day(day), xslog.Error(err))
			continue
		}
		workouts = append(workouts, w)
	}

	logger.DebugContext(ctx, "fetched calendar", xslog.Day(day), xslog.Count(len(workouts)))
	return workouts, nil
}

// RateLimitStatus returns the current rate limit status
func (c *Client) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return c.rateLimiter.Status()
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.rateLimiter.UpdateFromHeaders(resp.Header)

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, apiError(resp)
	}

	return resp, nil
}

func apiError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body apiErrorBody
	if err := go_json.Unmarshal(data, &body); err == nil && (body.Message != "" || body.Error != "") {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
