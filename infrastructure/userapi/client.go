package userapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	adminusers "userdesk/frontend/adminUsers"
)

const (
	DefaultTimeout = 15 * time.Second

	maxDetail = 300
)

// Client is the screen's DataAccess over the json-server style users API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

var _ adminusers.DataAccess = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request; zero disables the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API rooted at baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type response struct {
	header http.Header
	body   []byte
}

func (c *Client) List(ctx context.Context, q adminusers.ListQuery) (adminusers.ListResult, error) {
	values := url.Values{}
	values.Set("_page", strconv.Itoa(q.Page))
	values.Set("_limit", strconv.Itoa(q.Limit))
	values.Set("q", q.Q)

	resp, err := c.send(ctx, http.MethodGet, "/users?"+values.Encode(), nil)
	if err != nil {
		return adminusers.ListResult{}, err
	}
	var items []adminusers.User
	if err := json.Unmarshal(resp.body, &items); err != nil {
		return adminusers.ListResult{}, &adminusers.Failure{Message: fmt.Sprintf("decode users: %v", err)}
	}
	if items == nil {
		items = []adminusers.User{}
	}

	total := len(items)
	if raw := resp.header.Get("X-Total-Count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			total = n
		}
	}
	return adminusers.ListResult{Items: items, Total: total}, nil
}

func (c *Client) Get(ctx context.Context, id int64) (adminusers.User, error) {
	return c.user(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
}

func (c *Client) Create(ctx context.Context, in adminusers.UserInput) (adminusers.User, error) {
	return c.user(ctx, http.MethodPost, "/users", in)
}

func (c *Client) Update(ctx context.Context, id int64, in adminusers.UserInput) (adminusers.User, error) {
	return c.user(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), in)
}

func (c *Client) Remove(ctx context.Context, id int64) error {
	_, err := c.send(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	return err
}

func (c *Client) user(ctx context.Context, method, path string, payload any) (adminusers.User, error) {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return adminusers.User{}, err
	}
	var u adminusers.User
	if err := json.Unmarshal(resp.body, &u); err != nil {
		return adminusers.User{}, &adminusers.Failure{Message: fmt.Sprintf("decode user: %v", err)}
	}
	return u, nil
}

// send performs one request. Transport problems and non-2xx answers become *adminusers.Failure;
// a cancelled ctx is returned as is.
func (c *Client) send(ctx context.Context, method, path string, payload any) (*response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &adminusers.Failure{Message: err.Error()}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(res.Body)

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &adminusers.Failure{Status: res.StatusCode, Message: fmt.Sprintf("read body: %v", err)}
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, failure(res.StatusCode, data)
	}
	return &response{header: res.Header, body: data}, nil
}

func failure(status int, body []byte) *adminusers.Failure {
	msg := http.StatusText(status)
	if msg == "" {
		msg = "Unexpected status"
	}
	if detail := errorDetail(body); detail != "" {
		msg += "\n" + detail
	}
	return &adminusers.Failure{Status: status, Message: msg}
}

func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxDetail {
		text = text[:maxDetail] + "…"
	}
	return text
}
