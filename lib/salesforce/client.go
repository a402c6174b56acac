package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Response is a classified CRM response: a 2xx status and its raw body.
// Non-2xx responses never produce a Response, they produce errors.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Client issues CRM REST calls carrying the session's auth headers. A token
// rejection triggers exactly one session refresh followed by one unconditional
// retry; a second rejection propagates. Every other failure class is returned
// to the caller without retrying.
type Client struct {
	Session *Session
	Logger  *logrus.Logger

	httpc *http.Client
}

func NewClient(session *Session, logger *logrus.Logger) *Client {
	return &Client{
		Session: session,
		Logger:  logger,
		httpc:   &http.Client{},
	}
}

// Do performs one logical CRM operation. The path is relative to the instance
// host because the host can change when the session re-authenticates; each
// attempt resolves the URL against the current host.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, query url.Values) (*Response, error) {
	if err := c.Session.EnsureValid(ctx); err != nil {
		return nil, err
	}

	resp, err := c.attempt(ctx, method, path, body, query)

	var authErr *AuthError
	if errors.As(err, &authErr) {
		c.Logger.WithFields(logrus.Fields{
			"status": authErr.StatusCode,
			"path":   path,
		}).Warn("Token rejected, refreshing session and retrying once")

		if rerr := c.Session.HandleRejection(ctx); rerr != nil {
			return nil, rerr
		}
		return c.attempt(ctx, method, path, body, query)
	}

	return resp, err
}

func (c *Client) attempt(ctx context.Context, method, path string, body interface{}, query url.Values) (*Response, error) {
	target := c.Session.Host() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	var reader io.Reader
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	for key, value := range c.Session.Headers() {
		req.Header.Set(key, value)
	}

	c.Logger.WithFields(logrus.Fields{"method": method, "url": target}).Info("CRM request")
	if payload != nil {
		c.Logger.WithField("body", string(payload)).Debug("CRM request body")
	}

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	c.Logger.WithFields(logrus.Fields{
		"status": httpResp.StatusCode,
		"body":   string(respBody),
	}).Debug("CRM response")

	if err := checkResponse(httpResp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: respBody}, nil
}

// checkResponse classifies a status/body pair: 2xx is success, 401 is a token
// rejection, and everything else becomes an UpstreamError built from the
// structured error body when one is recognizable.
func checkResponse(status int, body []byte) error {
	if status/100 == 2 {
		return nil
	}
	if status == http.StatusUnauthorized {
		return &AuthError{StatusCode: status}
	}

	// OAuth-style: {"error": "...", "error_description": "..."}
	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		return &UpstreamError{StatusCode: status, Code: oauthErr.Error, Message: oauthErr.Description}
	}

	// REST-style: [{"errorCode": "...", "message": "..."}, ...]
	var restErrs []struct {
		ErrorCode string `json:"errorCode"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &restErrs); err == nil {
		for _, restErr := range restErrs {
			if restErr.Message != "" {
				return &UpstreamError{StatusCode: status, Code: restErr.ErrorCode, Message: restErr.Message}
			}
		}
	}

	return &UpstreamError{StatusCode: status}
}
