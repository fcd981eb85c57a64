// Package outbound sends participant actions (chat lines, estimates, item
// changes) to the session server over HTTP. Every call is a single attempt.
package outbound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/pengelbrecht/poker/internal/poker"
)

// OriginHeader carries the sending client's id so its own broadcast can be
// recognized when it comes back over the push channel.
const OriginHeader = "X-Poker-Origin"

// Client talks to the session server.
type Client struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// Origin is sent with every request in OriginHeader.
	Origin string

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	HTTP *http.Client
}

// NewClient creates a client for baseURL.
func NewClient(baseURL, origin string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Origin:  origin,
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

// ChatRequest is the body of a chat post.
type ChatRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// ItemRequest is the body of an item create or update.
type ItemRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ItemResponse is returned by item creation.
type ItemResponse struct {
	ID poker.ItemID `json:"id"`
}

// EstimateRequest is the body of an estimate submission.
type EstimateRequest struct {
	ItemID   poker.ItemID `json:"itemId"`
	Estimate string       `json:"estimate"`
	Author   string       `json:"author"`
}

// SendChat posts a chat line. Transport failures and timeouts are reported as
// a failed SendResult rather than an error so callers have one path to handle.
func (c *Client) SendChat(ctx context.Context, code string, req ChatRequest) poker.SendResult {
	res, _ := c.do(ctx, http.MethodPost, sessionPath(code, "chat"), req)
	return res
}

// SendEstimate submits the participant's estimate for an item.
func (c *Client) SendEstimate(ctx context.Context, code string, req EstimateRequest) poker.SendResult {
	res, _ := c.do(ctx, http.MethodPost, sessionPath(code, "estimates"), req)
	return res
}

// AddItem creates an item and returns its server-assigned id.
func (c *Client) AddItem(ctx context.Context, code string, req ItemRequest) (poker.ItemID, poker.SendResult) {
	res, body := c.do(ctx, http.MethodPost, sessionPath(code, "items"), req)
	if !res.OK() {
		return "", res
	}
	var out ItemResponse
	if err := sonic.ConfigStd.Unmarshal(body, &out); err != nil {
		return "", poker.SendResult{Status: 0, StatusText: fmt.Sprintf("parse item response: %v", err)}
	}
	return out.ID, res
}

// EditItem replaces an item's title and description.
func (c *Client) EditItem(ctx context.Context, code string, id poker.ItemID, req ItemRequest) poker.SendResult {
	res, _ := c.do(ctx, http.MethodPut, sessionPath(code, "items", string(id)), req)
	return res
}

// RemoveItem deletes an item.
func (c *Client) RemoveItem(ctx context.Context, code string, id poker.ItemID) poker.SendResult {
	res, _ := c.do(ctx, http.MethodDelete, sessionPath(code, "items", string(id)), nil)
	return res
}

func sessionPath(code string, parts ...string) string {
	segs := []string{"sessions", url.PathEscape(code)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return "/" + strings.Join(segs, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body any) (poker.SendResult, []byte) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return poker.ResultFromError(fmt.Errorf("encode request: %w", err)), nil
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return poker.ResultFromError(fmt.Errorf("build request: %w", err)), nil
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Origin != "" {
		req.Header.Set(OriginHeader, c.Origin)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s", c.Timeout)
		}
		log.WithFields(log.Fields{"method": method, "path": path}).Warnf("send failed: %v", err)
		return poker.ResultFromError(err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return poker.ResultFromError(fmt.Errorf("read response: %w", err)), nil
	}

	res := poker.SendResult{Status: resp.StatusCode, StatusText: statusText(resp)}
	log.WithFields(log.Fields{"method": method, "path": path, "status": resp.StatusCode}).Debug("send completed")
	return res, data
}

// statusText returns the reason phrase of resp, e.g. "Server Error" for
// "500 Server Error".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
