package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

const sessionHeader = "X-Session-ID"

// Client is a small JSON client for the recipebox API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Method string
	Path   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
}

type ratingStats struct {
	TotalRating   float64 `json:"totalRating"`
	RatingCount   int     `json:"ratingCount"`
	AverageRating float64 `json:"averageRating"`
}

type voteResult struct {
	Accepted bool        `json:"accepted"`
	Stats    ratingStats `json:"stats"`
}

type listPage struct {
	Items []struct {
		ID int `json:"id"`
	} `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
}

// Health returns nil once /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, http.StatusOK, nil)
}

// RecipeIDs walks every page of /recipes.
func (c *Client) RecipeIDs(ctx context.Context) ([]int, error) {
	var ids []int
	for page := 1; ; page++ {
		var p listPage
		path := fmt.Sprintf("/recipes?page=%d", page)
		if err := c.do(ctx, http.MethodGet, path, "", nil, http.StatusOK, &p); err != nil {
			return nil, err
		}
		for _, it := range p.Items {
			ids = append(ids, it.ID)
		}
		if page >= p.TotalPages {
			return ids, nil
		}
	}
}

// RatingCount returns the current ratingCount of a recipe.
func (c *Client) RatingCount(ctx context.Context, id int) (int, error) {
	var st ratingStats
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/recipes/%d/rating", id), "", nil, http.StatusOK, &st); err != nil {
		return 0, err
	}
	return st.RatingCount, nil
}

// OpenSession opens a browse session.
func (c *Client) OpenSession(ctx context.Context) (string, error) {
	var out struct {
		ID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", "", nil, http.StatusCreated, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CloseSession ends a session.
func (c *Client) CloseSession(ctx context.Context, sid string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+sid, "", nil, http.StatusNoContent, nil)
}

// Vote submits one vote and reports whether it was accepted.
func (c *Client) Vote(ctx context.Context, sid string, id, value int) (bool, error) {
	var out voteResult
	body := map[string]int{"rating": value}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/recipes/%d/votes", id), sid, body, http.StatusOK, &out); err != nil {
		return false, err
	}
	return out.Accepted, nil
}

func (c *Client) do(ctx context.Context, method, path, sid string, body any, want int, dst any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.Header.Set(sessionHeader, sid)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode}
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).DecodeContext(ctx, dst); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}
