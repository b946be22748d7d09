package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20
)

// HTTPClient implements Client over the JSON REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

func NewHTTPClient(baseURL string, timeout time.Duration, token TokenSource) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

// HTTP returns the underlying client, reused for presigned uploads.
func (c *HTTPClient) HTTP() *http.Client {
	return c.http
}

// call performs one request and decodes the envelope's data into T.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, query url.Values, in any) (T, error) {
	var zero T

	var body io.Reader
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return zero, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, fmt.Errorf("%w: read response: %w", common.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, apiError(resp, raw)
	}

	var env api.Envelope[T]
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &env); err != nil {
			return zero, fmt.Errorf("%w: decode response: %w", common.ErrInternal, err)
		}
	}
	if !env.Success {
		return zero, fmt.Errorf("%w: unsuccessful response: %s", common.ErrInternal, env.Message)
	}
	return env.Data, nil
}

func apiError(resp *http.Response, raw []byte) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}

	var env api.Envelope[api.RateLimited]
	if err := sonic.Unmarshal(raw, &env); err == nil {
		e.Message = env.Message
		if env.Data.RetryAfter > 0 {
			e.RetryAfter = time.Duration(env.Data.RetryAfter) * time.Second
		}
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

func (c *HTTPClient) Register(ctx context.Context, email, password, username string) (*api.AuthData, error) {
	d, err := call[api.AuthData](ctx, c, http.MethodPost, "/api/auth/register", nil,
		api.RegisterRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*api.AuthData, error) {
	d, err := call[api.AuthData](ctx, c, http.MethodPost, "/api/auth/login", nil,
		api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*api.Profile, error) {
	p, err := call[api.Profile](ctx, c, http.MethodGet, "/api/auth/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) error {
	_, err := call[any](ctx, c, http.MethodPut, "/api/auth/password", nil,
		api.ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	return err
}

func (c *HTTPClient) CreateMood(ctx context.Context, req api.MoodRequest) (int64, error) {
	d, err := call[api.MoodCreated](ctx, c, http.MethodPost, "/api/moods", nil, req)
	if err != nil {
		return 0, err
	}
	return d.ID, nil
}

func (c *HTTPClient) ListMoods(ctx context.Context, f api.MoodFilter) ([]api.MoodResponse, error) {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return call[[]api.MoodResponse](ctx, c, http.MethodGet, "/api/moods", q, nil)
}

// ListAllMoods pages through ListMoods until a short page comes back.
func (c *HTTPClient) ListAllMoods(ctx context.Context) ([]api.MoodResponse, error) {
	var all []api.MoodResponse
	for offset := 0; ; offset += api.MaxListLimit {
		page, err := c.ListMoods(ctx, api.MoodFilter{Limit: api.MaxListLimit, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < api.MaxListLimit {
			return all, nil
		}
	}
}

func (c *HTTPClient) GetMood(ctx context.Context, id int64) (*api.MoodResponse, error) {
	m, err := call[api.MoodResponse](ctx, c, http.MethodGet, moodPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMood replaces every field of the remote entry with req. Absent
// optional values are sent as empty so the server clears them.
func (c *HTTPClient) UpdateMood(ctx context.Context, serverID int64, req api.MoodRequest) error {
	_, err := call[any](ctx, c, http.MethodPut, moodPath(serverID), nil, fullUpdate(req))
	return err
}

func (c *HTTPClient) DeleteMood(ctx context.Context, serverID int64) error {
	_, err := call[any](ctx, c, http.MethodDelete, moodPath(serverID), nil, nil)
	return err
}

func (c *HTTPClient) PresignPhotoUpload(ctx context.Context) (*api.PhotoUpload, error) {
	p, err := call[api.PhotoUpload](ctx, c, http.MethodPost, "/api/moods/photo-upload-url", nil, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) GetStats(ctx context.Context, period string) (*api.MoodStats, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	s, err := call[api.MoodStats](ctx, c, http.MethodGet, "/api/stats/moods", q, nil)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) GetSummary(ctx context.Context) (*api.Summary, error) {
	s, err := call[api.Summary](ctx, c, http.MethodGet, "/api/stats/summary", nil, nil)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) ListActivities(ctx context.Context) ([]api.Activity, error) {
	return call[[]api.Activity](ctx, c, http.MethodGet, "/api/stats/activities", nil, nil)
}

// Ping checks GET /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := call[api.Health](ctx, c, http.MethodGet, "/health", nil, nil)
	return err
}

func moodPath(id int64) string {
	return "/api/moods/" + strconv.FormatInt(id, 10)
}

func fullUpdate(req api.MoodRequest) api.MoodUpdateRequest {
	empty := ""
	note, photo := req.Note, req.PhotoURL
	if note == nil {
		note = &empty
	}
	if photo == nil {
		photo = &empty
	}
	activities := req.Activities
	if activities == nil {
		activities = []string{}
	}
	out := api.MoodUpdateRequest{
		MoodType:   &req.MoodType,
		Note:       note,
		PhotoURL:   photo,
		EntryDate:  &req.EntryDate,
		Activities: &activities,
	}
	if req.EntryTime != "" {
		out.EntryTime = &req.EntryTime
	}
	return out
}
