package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenFunc supplies the current credential for authenticated calls.
// It returns the empty string when no session is active.
type TokenFunc func() string

// Error is a non-2xx response from the Sprava API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status: %d, message: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the Sprava REST API. All methods are safe for concurrent
// use; authentication is injected per request via the token func.
type Client struct {
	http   *resty.Client
	token  TokenFunc
	logger *zap.Logger
}

// New creates an API client for the given base URL. token may return empty
// for unauthenticated calls (login, signup).
func New(baseURL string, token TokenFunc, logger *zap.Logger) *Client {
	c := &Client{
		token:  token,
		logger: logger,
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		if tok := c.token(); tok != "" {
			req.SetHeader("Authorization", tok)
		}
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.IsError() {
			apiErr := &Error{Status: resp.StatusCode()}
			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(resp.Body(), &body); err == nil {
				apiErr.Message = body.Message
			}
			c.logger.Warn("api request failed",
				zap.String("path", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.String("request_id", resp.Request.Header.Get("X-Request-ID")),
			)
			return apiErr
		}
		return nil
	})

	return c
}
