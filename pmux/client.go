package pmux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/corpix/uarand"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/exp/slices"

	"github.com/nfx/harvest/app"
)

// DefaultRetryStatuses trigger another attempt with backoff
var DefaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

const (
	DefaultRetries    = 5
	DefaultBackoff    = 1 * time.Second
	DefaultMaxBackoff = 2 * time.Minute
	DefaultTimeout    = 10 * time.Second
)

var accept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// Client performs GET requests with automatic retries on transport errors
// and on configured status codes, waiting exponentially longer each time.
type Client struct {
	statuses  []int
	userAgent string
	http      *retryablehttp.Client
}

func NewClient() *Client {
	c := &Client{
		statuses: DefaultRetryStatuses,
	}
	c.http = &retryablehttp.Client{
		HTTPClient: &http.Client{
			Transport: DefaultTransport(),
			Timeout:   DefaultTimeout,
		},
		Logger:       retryLogger{},
		RetryWaitMin: DefaultBackoff,
		RetryWaitMax: DefaultMaxBackoff,
		RetryMax:     DefaultRetries,
		CheckRetry:   c.checkRetry,
		Backoff:      ExponentialBackoff,
		ErrorHandler: giveUp,
	}
	return c
}

func (c *Client) Configure(conf app.Config) error {
	c.http.RetryMax = conf.IntOr("retries", DefaultRetries)
	c.http.RetryWaitMin = conf.DurOr("backoff", DefaultBackoff)
	c.http.RetryWaitMax = conf.DurOr("max_backoff", DefaultMaxBackoff)
	c.http.HTTPClient.Timeout = conf.DurOr("timeout", DefaultTimeout)
	c.statuses = conf.IntsOr("statuses", DefaultRetryStatuses)
	c.userAgent = conf.StrOr("user_agent", "")
	transport := DefaultTransport()
	upstream := conf.StrOr("upstream", "")
	if upstream != "" {
		u, err := url.Parse(upstream)
		if err != nil {
			return fmt.Errorf("upstream: %w", err)
		}
		transport, err = UpstreamTransport(u)
		if err != nil {
			return err
		}
	}
	if conf.BoolOr("insecure", false) {
		tlsConfig := transport.TLSClientConfig.Clone()
		tlsConfig.InsecureSkipVerify = true
		transport.TLSClientConfig = tlsConfig
	}
	c.http.HTTPClient.Transport = transport
	return nil
}

func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil || err != nil {
		// transport errors are retried, unless they are unrecoverable,
		// like unsupported scheme or invalid certificate
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return slices.Contains(c.statuses, resp.StatusCode), nil
}

// ExponentialBackoff does not wait before the first retry and then waits
// for factor*2^attempt, but never longer than max. Retry-After header is
// respected, if it asks for more.
func ExponentialBackoff(factor, max time.Duration, attempt int, resp *http.Response) time.Duration {
	var wait time.Duration
	if attempt > 0 && factor > 0 {
		wait = max
		// 2^attempt has to fit into max/factor, otherwise the product overflows
		if attempt < bits.Len64(uint64(max/factor)) {
			wait = factor * time.Duration(int64(1)<<attempt)
		}
	}
	after := retryAfter(resp)
	if after > wait {
		wait = after
	}
	if wait > max || wait < 0 {
		wait = max
	}
	return wait
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	if resp.StatusCode != http.StatusTooManyRequests &&
		resp.StatusCode != http.StatusServiceUnavailable {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err == nil {
		return time.Duration(seconds) * time.Second
	}
	at, err := http.ParseTime(header)
	if err != nil {
		return 0
	}
	return time.Until(at)
}

func giveUp(resp *http.Response, err error, attempts int) (*http.Response, error) {
	re := &RetryError{
		Attempts: attempts,
		Err:      err,
	}
	if resp != nil {
		re.StatusCode = resp.StatusCode
		if resp.Body != nil {
			resp.Body.Close()
		}
	}
	return nil, re
}

func (c *Client) agent() string {
	if c.userAgent != "" {
		return c.userAgent
	}
	return uarand.GetRandom()
}

// Get returns response body, if the final response has non-error status
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.agent())
	req.Header.Set("Accept", accept)
	resp, err := c.http.Do(req)
	if err != nil {
		var re *RetryError
		if errors.As(err, &re) {
			re.URL = url
		}
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncatedBody(body),
		}
	}
	return body, nil
}
