// Package backend talks to the recycling REST backend that owns zones, containers and users.
package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ecobins/internal/model"

	"github.com/go-resty/resty/v2"
)

// StatusError is a non-2xx backend answer
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client wraps the backend REST API. Every call carries the caller's bearer token.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *Client) get(ctx context.Context, token, path string, query map[string]string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("backend GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Method: "GET", Path: path, Code: resp.StatusCode(), Body: truncate(resp.String())}
	}
	return resp.Body(), nil
}

// ZoneGeometries fetches every zone with its boundary, in backend order
func (c *Client) ZoneGeometries(ctx context.Context, token string) ([]model.Zone, error) {
	body, err := c.get(ctx, token, "/zonas/geo", nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeZones(body)
}

// Containers fetches every container with its declared zone
func (c *Client) Containers(ctx context.Context, token string) ([]model.Container, error) {
	body, err := c.get(ctx, token, "/contenedores", nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeContainers(body)
}

// CollectorZones fetches the zones assigned to a collector
func (c *Client) CollectorZones(ctx context.Context, token string, collectorID int64) ([]model.Zone, error) {
	body, err := c.get(ctx, token, "/basurero/"+strconv.FormatInt(collectorID, 10)+"/zonas", nil)
	if err != nil {
		return nil, err
	}
	return model.DecodeZones(body)
}

// Leaderboard fetches the top users by points
func (c *Client) Leaderboard(ctx context.Context, token string, limit int) ([]model.LeaderboardEntry, error) {
	body, err := c.get(ctx, token, "/usuarios/leaderboard", map[string]string{"limit": strconv.Itoa(limit)})
	if err != nil {
		return nil, err
	}
	return model.DecodeLeaderboard(body)
}

// CreateContainer registers a new container. The backend answers 201 with a plain text body.
func (c *Client) CreateContainer(ctx context.Context, token string, req model.ContainerCreateRequest) error {
	r := c.http.R().SetContext(ctx).SetBody(req)
	if token != "" {
		r.SetAuthToken(token)
	}

	resp, err := r.Post("/contenedores")
	if err != nil {
		return fmt.Errorf("backend POST /contenedores: %w", err)
	}
	if resp.IsError() {
		return &StatusError{Method: "POST", Path: "/contenedores", Code: resp.StatusCode(), Body: truncate(resp.String())}
	}
	return nil
}

func truncate(s string) string {
	const max = 256
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
