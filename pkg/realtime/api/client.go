// Package api is a bearer-token client for the Eureka REST endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	dErrors "eureka/pkg/domain-errors"
	"eureka/pkg/realtime/wire"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultConnectTimeout = 5 * time.Second
)

// Client calls the REST API. The token set by Signup, Login or SetToken is
// sent on every request; the zero token means signed out.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithToken(token string) Option {
	return func(cl *Client) { cl.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	dialer := &net.Dialer{Timeout: defaultConnectTimeout}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{DialContext: dialer.DialContext, TLSHandshakeTimeout: defaultConnectTimeout},
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Credential makes the client usable as the realtime transport's credential
// source, so a logout or re-login is picked up on the next reconnect.
func (c *Client) Credential(context.Context) (string, error) {
	return c.Token(), nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (wire.AuthResponse, error) {
	var out wire.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/signup", wire.SignupRequest{Name: name, Email: email, Password: password}, &out)
	if err == nil {
		c.SetToken(out.Token)
	}
	return out, err
}

func (c *Client) Login(ctx context.Context, email, password string) (wire.AuthResponse, error) {
	var out wire.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", wire.LoginRequest{Email: email, Password: password}, &out)
	if err == nil {
		c.SetToken(out.Token)
	}
	return out, err
}

func (c *Client) Me(ctx context.Context) (wire.User, error) {
	var out wire.User
	return out, c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
}

// Logout revokes the token server-side and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) CreatePost(ctx context.Context, content, category string) (wire.Post, error) {
	var out wire.Post
	return out, c.do(ctx, http.MethodPost, "/posts", wire.CreatePostRequest{Content: content, Category: category}, &out)
}

func (c *Client) Posts(ctx context.Context) ([]wire.Post, error) {
	var out []wire.Post
	return out, c.do(ctx, http.MethodGet, "/posts", nil, &out)
}

func (c *Client) PostsByCategory(ctx context.Context, category string) ([]wire.Post, error) {
	var out []wire.Post
	return out, c.do(ctx, http.MethodGet, "/posts/category/"+url.PathEscape(category), nil, &out)
}

func (c *Client) Post(ctx context.Context, postID string) (wire.Post, error) {
	var out wire.Post
	return out, c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID), nil, &out)
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (wire.LikeState, error) {
	var out wire.LikeState
	return out, c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", nil, &out)
}

func (c *Client) ToggleBookmark(ctx context.Context, postID string) (wire.BookmarkState, error) {
	var out wire.BookmarkState
	return out, c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/bookmark", nil, &out)
}

func (c *Client) Bookmarks(ctx context.Context) ([]wire.Post, error) {
	var out []wire.Post
	return out, c.do(ctx, http.MethodGet, "/bookmarks", nil, &out)
}

func (c *Client) Comments(ctx context.Context, postID string) ([]wire.Comment, error) {
	var out []wire.Comment
	return out, c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(postID)+"/comments", nil, &out)
}

func (c *Client) CreateComment(ctx context.Context, postID, content string) (wire.Comment, error) {
	var out wire.Comment
	return out, c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comments", wire.CreateCommentRequest{Content: content}, &out)
}

func (c *Client) Notifications(ctx context.Context) ([]wire.Notification, error) {
	var out []wire.Notification
	return out, c.do(ctx, http.MethodGet, "/notifications", nil, &out)
}

func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil)
}

// do sends body as JSON and decodes a 2xx response into out. Error responses
// come back as *dErrors.Error carrying the server's code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "server unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		return dErrors.New(codeForStatus(resp.StatusCode), fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	message := body.Description
	if message == "" {
		message = body.Error
	}
	return dErrors.New(dErrors.Code(body.Error), message)
}

func codeForStatus(status int) dErrors.Code {
	switch status {
	case http.StatusBadRequest:
		return dErrors.CodeBadRequest
	case http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case http.StatusForbidden:
		return dErrors.CodeForbidden
	case http.StatusNotFound:
		return dErrors.CodeNotFound
	case http.StatusConflict:
		return dErrors.CodeConflict
	case http.StatusServiceUnavailable:
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeInternal
	}
}
