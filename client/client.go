// Package client talks to the remote course store over authenticated HTTP.
// Every failure is classified into the taxonomy in errors.go before it is
// returned; callers never see a raw transport error.
package client

import (
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// TokenFunc supplies the current bearer token, empty when signed out.
type TokenFunc func() string

// Client is the remote store client. Safe for concurrent use.
type Client struct {
	http  *resty.Client
	log   zerolog.Logger
	token TokenFunc
}

// New builds a client against baseURL. The token is read per request so a
// login or logout between calls takes effect immediately.
func New(baseURL string, timeout time.Duration, token TokenFunc, log zerolog.Logger) *Client {
	c := &Client{log: log, token: token}

	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if t := c.token(); t != "" {
			req.SetAuthToken(t)
		}
		return nil
	})

	c.http = r
	return c
}

func (c *Client) request() *resty.Request {
	return c.http.R()
}

// check folds a resty response into the error taxonomy. A transport error is
// always Transient; anything else is classified by status code.
func (c *Client) check(resp *resty.Response, err error) error {
	if err != nil {
		c.log.Debug().Err(err).Msg("request failed")
		return transient(err)
	}
	if resp.IsSuccess() {
		return nil
	}

	var m apiMessage
	_ = json.Unmarshal(resp.Body(), &m)
	apiErr := classify(resp.StatusCode(), m)
	c.log.Debug().
		Int("status", resp.StatusCode()).
		Str("kind", apiErr.Kind.String()).
		Str("path", resp.Request.URL).
		Msg("request rejected")
	return apiErr
}
