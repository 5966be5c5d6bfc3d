// Package client talks to the SafeBox REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"safebox/internal/model"
)

// ErrNoSession is returned when a call needs a user but the session is empty.
var ErrNoSession = errors.New("no active session")

// APIError is a non-2xx response decoded from the failure envelope.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("safebox: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("safebox: %d: %s", e.StatusCode, e.Message)
}

// Client is a thin REST client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for a server root such as "http://localhost:5000".
// A nil httpClient gets a default with a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type envelope[T any] struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Data      T         `json:"data"`
	Favorite  bool      `json:"favorite"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetOrCreateUser signs in by email and returns a fresh session.
func (c *Client) GetOrCreateUser(ctx context.Context, email, name string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "name": name})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/users/get-or-create", nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var env envelope[model.User]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return &Session{
		UserID:    env.Data.ID,
		Email:     env.Data.Email,
		Token:     env.Token,
		ExpiresAt: env.ExpiresAt,
	}, nil
}

// Logout revokes the session server side and clears it locally.
func (c *Client) Logout(ctx context.Context, s *Session) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/users/logout", s, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return err
	}
	s.Clear()
	return nil
}

func (c *Client) ListFiles(ctx context.Context, s *Session, favoritesOnly bool) ([]model.File, error) {
	path := "/api/files"
	if favoritesOnly {
		path += "?favorite=true"
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, s, nil)
	if err != nil {
		return nil, err
	}
	var env envelope[[]model.File]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetFile(ctx context.Context, s *Session, id uint) (*model.File, error) {
	req, err := c.newRequest(ctx, http.MethodGet, filePath(id, ""), s, nil)
	if err != nil {
		return nil, err
	}
	var env envelope[model.File]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Upload streams r as a multipart file part. An empty contentType lets the
// server detect it.
func (c *Client) Upload(ctx context.Context, s *Session, filename, contentType string, r io.Reader) (*model.File, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/files/upload", s, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var env envelope[model.File]
	err = c.do(req, &env)
	pr.Close()
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (c *Client) ToggleFavorite(ctx context.Context, s *Session, id uint) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, filePath(id, "/favorite"), s, nil)
	if err != nil {
		return false, err
	}
	var env envelope[json.RawMessage]
	if err := c.do(req, &env); err != nil {
		return false, err
	}
	return env.Favorite, nil
}

func (c *Client) Delete(ctx context.Context, s *Session, id uint) error {
	req, err := c.newRequest(ctx, http.MethodDelete, filePath(id, ""), s, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Download copies the file content into w and returns the byte count.
func (c *Client) Download(ctx context.Context, s *Session, id uint, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, filePath(id, "/download"), s, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, decodeError(resp)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) Activity(ctx context.Context, s *Session) ([]model.ActivityLog, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/activity", s, nil)
	if err != nil {
		return nil, err
	}
	var env envelope[[]model.ActivityLog]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) Stats(ctx context.Context, s *Session) (*model.StorageStats, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/files/stats", s, nil)
	if err != nil {
		return nil, err
	}
	var env envelope[model.StorageStats]
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func filePath(id uint, suffix string) string {
	return "/api/files/" + strconv.FormatUint(uint64(id), 10) + suffix
}

// newRequest builds a request. A non-nil session must be active; it adds the
// bearer token, or the x-user-id header when the session has no token.
func (c *Client) newRequest(ctx context.Context, method, path string, s *Session, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if s == nil {
		return req, nil
	}
	if !s.Active() {
		return nil, ErrNoSession
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	} else {
		req.Header.Set("x-user-id", strconv.FormatUint(uint64(s.UserID), 10))
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var env envelope[json.RawMessage]
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		apiErr.Message = env.Message
		apiErr.Code = env.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
