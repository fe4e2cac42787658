package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"

	"sensor-bridge/common"
)

// Failure classes of a send attempt. Every returned error wraps exactly one.
var (
	ErrConnection = errors.New("cannot reach backend server")
	ErrTimeout    = errors.New("server took too long to respond")
	ErrServer     = errors.New("server rejected data")
	ErrUnexpected = errors.New("error sending data")
)

// maxBody bounds how much of a response is read.
const maxBody = 64 << 10

// StatusError is returned when the collector answers with anything but 200.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrServer
}

// Config describes the collector endpoint.
type Config struct {
	URL     string        // e.g. "http://localhost:3000/api/iot/sensor-data"
	Timeout time.Duration // bound for the whole request
}

// DefaultConfig returns the local development endpoint.
func DefaultConfig() Config {
	return Config{
		URL:     "http://localhost:3000/api/iot/sensor-data",
		Timeout: 10 * time.Second,
	}
}

// Response is the decoded body of a successful send.
type Response struct {
	Message string `json:"message"`
}

// Client POSTs payloads to the collector. It never retries.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a collector client.
func NewClient(config Config) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     log.New(os.Stdout, "[Collector] ", log.LstdFlags|log.Lshortfile),
	}
}

// URL returns the endpoint payloads are sent to.
func (c *Client) URL() string {
	return c.config.URL
}

// Send issues a single POST with the payload as JSON body.
func (c *Client) Send(ctx context.Context, payload common.Payload) (Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("%w: failed to marshal payload: %v", ErrUnexpected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Response{}, classifyTransport(err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Printf("Warning: response body is not JSON: %v", err)
	}
	if out.Message == "" {
		out.Message = "Data sent"
	}
	return out, nil
}

// classifyTransport maps an error from the HTTP round trip onto one of the
// failure classes.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return fmt.Errorf("%w: %v", ErrConnection, err)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}

// Classify maps the error returned by Send onto an outcome.
func Classify(err error) common.Outcome {
	switch {
	case err == nil:
		return common.OutcomeSuccess
	case errors.Is(err, ErrServer):
		return common.OutcomeServerError
	case errors.Is(err, ErrConnection):
		return common.OutcomeConnectionError
	case errors.Is(err, ErrTimeout):
		return common.OutcomeTimeout
	default:
		return common.OutcomeUnexpected
	}
}
