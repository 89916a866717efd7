// Package client is a small Go SDK for the pingme HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pingme/pingme-server"
)

const defaultTimeout = 3 * time.Second

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	return &Client{
		client:  &httpClient,
		cache:   cache.New(30*time.Second, time.Minute),
		baseURL: baseURL,
	}
}

// SetToken installs the bearer token sent with subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) request(ctx context.Context, method, path string, body any, response any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if response == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(response)
}

func (c *Client) Signup(ctx context.Context, username, email, password string) error {
	return c.request(ctx, http.MethodPost, "/api/signup", pingme.SignupRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
}

// Login authenticates and remembers the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (pingme.LoginResponse, error) {
	var response pingme.LoginResponse
	err := c.request(ctx, http.MethodPost, "/api/login", pingme.LoginRequest{
		Email:    email,
		Password: password,
	}, &response)
	if err != nil {
		return pingme.LoginResponse{}, err
	}
	c.token = response.Token
	return response, nil
}

// Users lists all accounts. Results are cached briefly; the listing
// backs contact pickers and tolerates slightly stale data.
func (c *Client) Users(ctx context.Context) ([]pingme.PublicUser, error) {
	if cached, ok := c.cache.Get("users"); ok {
		return cached.([]pingme.PublicUser), nil
	}

	var users []pingme.PublicUser
	err := c.request(ctx, http.MethodGet, "/api/users", nil, &users)
	if err != nil {
		return nil, err
	}

	c.cache.Set("users", users, cache.DefaultExpiration)
	return users, nil
}

// OpenConversation finds or creates the conversation between the two
// identities.
func (c *Client) OpenConversation(ctx context.Context, senderID, receiverID string) (pingme.Conversation, error) {
	var response struct {
		Conversation pingme.Conversation `json:"conversation"`
	}
	err := c.request(ctx, http.MethodPost, "/api/conversation", pingme.ConversationRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
	}, &response)
	if err != nil {
		return pingme.Conversation{}, err
	}
	return response.Conversation, nil
}

func (c *Client) Conversations(ctx context.Context, userID string) ([]pingme.ConversationEntry, error) {
	var entries []pingme.ConversationEntry
	err := c.request(ctx, http.MethodGet, "/api/conversation/"+userID, nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) SendMessage(ctx context.Context, req pingme.MessageRequest) (pingme.StoredMessage, error) {
	var stored pingme.StoredMessage
	err := c.request(ctx, http.MethodPost, "/api/message", req, &stored)
	if err != nil {
		return pingme.StoredMessage{}, err
	}
	return stored, nil
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]pingme.MessageEntry, error) {
	var entries []pingme.MessageEntry
	err := c.request(ctx, http.MethodGet, "/api/message/"+conversationID, nil, &entries)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
