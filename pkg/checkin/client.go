// Package checkin relays driver check-in payloads to the upstream logistics
// API. Failures are typed so callers can tell transport problems apart from
// malformed upstream responses.
package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorKind classifies check-in failures.
type ErrorKind int

const (
	// KindDisabled means the relay switch is off; no request was sent.
	KindDisabled ErrorKind = iota
	// KindTransport covers network-level failures reaching the service.
	KindTransport
	// KindRejected means the service answered with an error status or
	// reported failure in its body.
	KindRejected
	// KindMalformed means the service answered with something that is not a
	// JSON object; distinct from transport errors by design.
	KindMalformed
)

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures the relay endpoint and auth headers.
type Options struct {
	Enabled bool
	URL     string
	HWID    string
	AppKey  string
	Timeout time.Duration
}

type Client struct {
	opts Options
	http *http.Client
	log  *logrus.Logger
}

func NewClient(opts Options, log *logrus.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		opts: opts,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Create posts one check-in payload and returns the decoded response object.
func (c *Client) Create(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if !c.opts.Enabled {
		c.log.Warn("check-in relay is switched off")
		return nil, &Error{Kind: KindDisabled, Msg: "check-in relay is switched off"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Msg: "encode check-in payload", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Msg: "build check-in request", Err: err}
	}
	req.Header.Set("X-HW-ID", c.opts.HWID)
	req.Header.Set("X-HW-APPKEY", c.opts.AppKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Error("check-in request failed")
		return nil, &Error{Kind: KindTransport, Msg: "unable to reach check-in service", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Msg: "read check-in response", Err: err}
	}

	if resp.StatusCode >= 400 {
		c.log.WithField("status", resp.StatusCode).Warn("check-in rejected")
		return nil, &Error{Kind: KindRejected, Msg: "check-in service returned an error"}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.WithError(err).Error("check-in service returned invalid JSON")
		return nil, &Error{Kind: KindMalformed, Msg: "check-in service returned malformed data", Err: err}
	}

	if success, _ := data["success"].(bool); !success {
		c.log.WithField("response", data).Warn("check-in service reported failure")
		return nil, &Error{Kind: KindRejected, Msg: "check-in service rejected the request"}
	}

	return data, nil
}
