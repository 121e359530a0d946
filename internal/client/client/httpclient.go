package client

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
	"sync"
	"time"

	"github.com/dmitrijs2005/scams/internal/client/models"
	"github.com/dmitrijs2005/scams/internal/common"
)

const maxResponseBytes = 1 << 20

type msgBody struct {
	Msg string `json:"msg"`
}

type errorBody struct {
	Msg    string              `json:"msg"`
	Errors []common.FieldError `json:"errors"`
}

// HTTPClient talks to the SCAMS JSON API. It is safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one request and decodes a 2xx body into out (when out is not
// nil). Anything else is turned into an error by mapError.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.currentToken(); tok != "" {
		req.Header.Set(common.AccessTokenHeaderName, tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func mapError(status int, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)

	if status != http.StatusUnauthorized && len(body.Errors) > 0 {
		return &common.ValidationError{Errors: body.Errors}
	}

	e := &APIError{Status: status, Msg: body.Msg, Err: knownMessages[body.Msg]}
	switch {
	case status == http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	case e.Err != nil:
	case status == http.StatusForbidden:
		e.Err = common.ErrorForbidden
	case status == http.StatusNotFound:
		e.Err = common.ErrorNotFound
	case status >= http.StatusInternalServerError:
		e.Err = common.ErrorInternal
	}
	return e
}

// Ping reports ErrUnavailable when the server cannot be reached or answers
// its health check with an error status.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, "/api/health", nil, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, apiErr)
	}
	return err
}

func (c *HTTPClient) postMsg(ctx context.Context, path string, body any) (string, error) {
	var out msgBody
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return "", err
	}
	return out.Msg, nil
}

func (c *HTTPClient) Register(ctx context.Context, in models.RegisterRequest) (string, error) {
	return c.postMsg(ctx, "/api/auth/register", in)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	req := map[string]string{"email": email, "password": password}
	var out models.LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.postMsg(ctx, "/api/auth/forgot-password", map[string]string{"email": email})
}

func (c *HTTPClient) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	return c.postMsg(ctx, "/api/auth/reset-password", map[string]string{"token": resetToken, "password": password})
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return c.postMsg(ctx, "/api/auth/change-password", map[string]string{"currentPassword": current, "newPassword": next})
}

func (c *HTTPClient) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Rooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchRooms(ctx context.Context, f models.RoomFilter) ([]models.Room, error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Building != "" {
		q.Set("building", f.Building)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.MinCapacity > 0 {
		q.Set("capacity", strconv.Itoa(f.MinCapacity))
	}
	var out []models.Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func roomPath(roomID, suffix string) string {
	return "/api/rooms/" + url.PathEscape(roomID) + suffix
}

func (c *HTTPClient) Schedule(ctx context.Context, roomID, date string) (*models.RoomSchedule, error) {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	var out models.RoomSchedule
	if err := c.do(ctx, http.MethodGet, roomPath(roomID, "/schedule"), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Book(ctx context.Context, roomID string, in models.BookingRequest) (*models.Booking, error) {
	var out models.Booking
	if err := c.do(ctx, http.MethodPost, roomPath(roomID, "/bookings"), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Devices(ctx context.Context, roomID string) (*models.DeviceStatus, error) {
	var out models.DeviceStatus
	if err := c.do(ctx, http.MethodGet, roomPath(roomID, "/devices"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Occupancy(ctx context.Context, roomID string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, roomPath(roomID, "/occupancy"), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}
