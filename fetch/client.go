package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StatusError reports a non-2xx response from an artifact host. It
// implements net.Error so upstream failures classify like connection
// faults.
type StatusError struct {
	URL        string
	StatusCode int
	Message    string

	// RetryAfter is the wait the host asked for, zero when the
	// Retry-After header was absent or unreadable.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

func (e *StatusError) Timeout() bool {
	return e.StatusCode == http.StatusRequestTimeout
}

func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode/100 == 5
}

// Transient reports whether another attempt could succeed.
func (e *StatusError) Transient() bool {
	return e.Timeout() || e.Temporary()
}

// Client retrieves capture payloads and recognition exports from
// artifact hosts before a run starts.
type Client struct {
	policy Policy
	http   *http.Client
	log    zerolog.Logger
}

// NewClient creates a Client with the default retry policy.
func NewClient() *Client {
	return NewClientWithPolicy(DefaultPolicy())
}

// NewClientWithPolicy creates a Client with a custom retry policy.
func NewClientWithPolicy(p Policy) *Client {
	return &Client{
		policy: p,
		http:   &http.Client{Timeout: 30 * time.Second},
		log:    zerolog.Nop(),
	}
}

// WithLogger routes attempt traces to log and returns the client.
func (c *Client) WithLogger(log zerolog.Logger) *Client {
	c.log = log
	return c
}

// Get fetches url and returns the response body, retrying transient
// failures under the client policy.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Debug().Str("url", url).Err(err).Msg("fetch attempt failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			serr := newStatusError(url, resp)
			c.log.Debug().Str("url", url).Int("status", resp.StatusCode).Msg("fetch attempt failed")
			return serr
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func newStatusError(url string, resp *http.Response) *StatusError {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		URL:        url,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(msg)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// parseRetryAfter reads the delay-seconds form of the header. The
// HTTP-date form is rare on artifact hosts and falls back to the
// policy backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
