package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	apperrors "giveaway-engine/internal/common/errors"
	"giveaway-engine/internal/platform/chat"
)

// Client talks to the bot gateway's HTTP API. It implements chat.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Response is the gateway's envelope for every API call.
type Response struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
	}
}

var _ chat.Client = (*Client)(nil)

func (c *Client) call(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewChatAPIError(method+" "+path, err)
	}
	defer resp.Body.Close()

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperrors.NewChatAPIError(method+" "+path, err)
	}
	if !envelope.Ok {
		return apperrors.NewChatAPIError(method+" "+path,
			fmt.Errorf("gateway error (%d): %s", resp.StatusCode, envelope.Description))
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode gateway result: %w", err)
		}
	}
	return nil
}

func (c *Client) Channel(ctx context.Context, channelID string) (*chat.Channel, error) {
	var ch chat.Channel
	if err := c.call(ctx, http.MethodGet, "/channels/"+url.PathEscape(channelID), nil, &ch); err != nil {
		return nil, err
	}
	// Sendable is a capability of the channel kind, resolved once here
	// rather than probed at each send site.
	ch.Sendable = ch.Kind == chat.ChannelKindText || ch.Kind == chat.ChannelKindAnnouncement
	return &ch, nil
}

func (c *Client) Message(ctx context.Context, channelID, messageID string) (*chat.Message, error) {
	var msg chat.Message
	path := fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
	if err := c.call(ctx, http.MethodGet, path, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*chat.Message, error) {
	var msg chat.Message
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	payload := map[string]string{"content": content}
	if err := c.call(ctx, http.MethodPost, path, payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
	payload := map[string]string{"content": content}
	return c.call(ctx, http.MethodPatch, path, payload, nil)
}

func (c *Client) AddReaction(ctx context.Context, channelID, messageID, emoji string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s",
		url.PathEscape(channelID), url.PathEscape(messageID), url.PathEscape(emoji))
	return c.call(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) RemoveAllReactions(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions",
		url.PathEscape(channelID), url.PathEscape(messageID))
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ReactionUsers(ctx context.Context, channelID, messageID, emoji string) ([]chat.User, error) {
	var users []chat.User
	path := fmt.Sprintf("/channels/%s/messages/%s/reactions/%s/users",
		url.PathEscape(channelID), url.PathEscape(messageID), url.PathEscape(emoji))
	if err := c.call(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) User(ctx context.Context, userID string) (*chat.User, error) {
	var user chat.User
	if err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
