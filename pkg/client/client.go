// Package client implements the authenticated HTTP requester shared by
// every resource accessor. It owns header injection, status checking and
// the mapping of failures onto the api error kinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mlship/replicate-go/pkg/api"
	"github.com/mlship/replicate-go/pkg/config"
)

// Requester issues one API request and returns the raw response body.
// A non-2xx response is an error, never a body.
type Requester interface {
	Do(ctx context.Context, method, url string, body any) ([]byte, error)
	BaseURL() string
}

// Client is the concrete Requester backed by net/http.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

var _ Requester = (*Client)(nil)

// New builds a Client from cfg. The transport uses net/http defaults;
// no per-request timeout is imposed beyond the context's.
func New(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the configured endpoint base.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Do sends one request. A non-nil body is JSON encoded. Transport
// failures come back as *api.RequestError, non-2xx statuses as
// *api.ResponseError carrying the raw response text.
func (c *Client) Do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &api.RequestError{Op: "encode request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &api.RequestError{Op: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Token)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &api.RequestError{Op: method + " " + url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.RequestError{Op: "read response body", Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"method":  method,
		"url":     url,
		"status":  resp.StatusCode,
		"elapsed": time.Since(started),
		"bytes":   len(data),
	}).Debug("api request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &api.ResponseError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// Decode unmarshals an API response body, converting failures into
// *api.DecodeError.
func Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &api.DecodeError{Err: err}
	}
	return nil
}
