// Package api implements the REST client for the collaborator endpoints the
// realtime layer depends on: conversation history, mark-read, unread counts,
// notification and connection lists. These are polled by the view layer and
// refetched on demand when live events imply staleness.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chat-client/internal/models"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseSize limits response body reads.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client talks to the backend REST API with bearer-token auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// SetTimeout overrides the per-request timeout. Call before the first
// request.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// Error is a non-2xx response from the server.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

// ConversationHistory fetches the ordered message list for one counterparty.
// The server marks the returned messages read as a side effect.
func (c *Client) ConversationHistory(ctx context.Context, counterpartyID string) ([]models.Message, error) {
	var messages []models.Message
	path := "/api/messages/" + url.PathEscape(counterpartyID)
	if err := c.get(ctx, path, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead tells the server the conversation with the given
// counterparty has been observed, zeroing its unread count.
func (c *Client) MarkConversationRead(ctx context.Context, counterpartyID string) error {
	path := "/api/messages/" + url.PathEscape(counterpartyID) + "/read"
	return c.post(ctx, path, nil, nil)
}

// UnreadCountResponse is the response from GET /api/messages/unread/count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// UnreadCount fetches the total unread direct-message count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp UnreadCountResponse
	if err := c.get(ctx, "/api/messages/unread/count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Notifications fetches the notification list.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.get(ctx, "/api/notifications", &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Connections fetches pending connection requests for the current user.
func (c *Client) Connections(ctx context.Context) ([]models.Connection, error) {
	var connections []models.Connection
	if err := c.get(ctx, "/api/connections", &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// AcceptedConnections fetches the accepted connection list.
func (c *Client) AcceptedConnections(ctx context.Context) ([]models.Connection, error) {
	var connections []models.Connection
	if err := c.get(ctx, "/api/connections/accepted", &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
