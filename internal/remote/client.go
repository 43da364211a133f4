package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-urlkit"

	"github.com/viddefe/go-viddefe/domain"
	"github.com/viddefe/go-viddefe/internal/logging"
	"github.com/viddefe/go-viddefe/internal/runtimeconfig"
	"github.com/viddefe/go-viddefe/pkg/interfaces"
)

const (
	routeGroup = "api"

	remoteNotFoundCode   = "REMOTE_NOT_FOUND"
	remoteRejectedCode   = "REMOTE_REJECTED"
	remoteFailedCode     = "REMOTE_FAILED"
	remoteTransportCode  = "REMOTE_TRANSPORT"
	remoteRouteErrorCode = "REMOTE_ROUTE"
)

var (
	ErrBaseURLRequired = errors.New("remote: base url is required")
	ErrRouteNotFound   = errors.New("remote: route not configured")
)

// StatusError carries a non successful backend response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, body)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Status == http.StatusNotFound
	}
	return goerrors.IsCategory(err, goerrors.CategoryNotFound)
}

// DefaultRoutes describes the backend REST paths.
func DefaultRoutes(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    routeGroup,
				BaseURL: strings.TrimRight(baseURL, "/"),
				Paths: map[string]string{
					"churches":       "/churches",
					"church":         "/churches/:id",
					"people":         "/people",
					"person":         "/people/:id",
					"church_groups":  "/churches/:id/groups",
					"groups":         "/groups",
					"group":          "/groups/:id",
					"meetings":       "/meetings",
					"meeting":        "/meetings/:id",
					"attendance":     "/meetings/:id/attendance",
					"attendee":       "/meetings/:id/attendance/:personId",
					"offerings":      "/meetings/:id/offerings",
					"offering":       "/offerings/:id",
					"offering_types": "/offering-types",
					"offering_type":  "/offering-types/:id",
					"states":         "/states",
					"state":          "/states/:id",
					"state_cities":   "/states/:id/cities",
					"city":           "/cities/:id",
				},
			},
		},
	}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Ensure(logger)
	}
}

// Client talks JSON to the backend REST API.
type Client struct {
	http   *http.Client
	token  string
	group  *urlkit.Group
	logger interfaces.Logger
}

// NewClient builds a backend client from configuration.
func NewClient(cfg runtimeconfig.BackendConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	routes := cfg.RouteConfig
	if routes == nil {
		routes = DefaultRoutes(cfg.BaseURL)
	}
	group, err := lookupGroup(urlkit.NewRouteManager(routes), routeGroup)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		http:   &http.Client{Timeout: timeout},
		token:  cfg.Token,
		group:  group,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes a backend call.
type request struct {
	method string
	route  string
	params map[string]any
	query  map[string]string
	body   any
}

func (c *Client) url(route string, params map[string]any, query map[string]string) (string, error) {
	builder, err := safeBuilder(c.group, route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	for key, val := range query {
		if val != "" {
			builder.WithQuery(key, val)
		}
	}
	target, err := builder.Build()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "backend route could not be built").
			WithTextCode(remoteRouteErrorCode)
	}
	return target, nil
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	target, err := c.url(req.route, req.params, req.query)
	if err != nil {
		return err
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("remote: encode %s body: %w", req.route, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return goerrors.Wrap(err, goerrors.CategoryExternal, "backend unreachable").
			WithTextCode(remoteTransportCode)
	}
	defer resp.Body.Close()

	c.logger.WithContext(ctx).Debug("remote.request",
		"method", req.method,
		"route", req.route,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return classify(&StatusError{Method: req.method, URL: target, Status: resp.StatusCode, Body: string(raw)})
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode %s response: %w", req.route, err)
	}
	return nil
}

func classify(err *StatusError) error {
	switch {
	case err.Status == http.StatusNotFound:
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "backend resource not found").
			WithTextCode(remoteNotFoundCode)
	case err.Status >= 400 && err.Status < 500:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "backend rejected the request").
			WithTextCode(remoteRejectedCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryExternal, "backend request failed").
			WithTextCode(remoteFailedCode)
	}
}

// pageQuery renders page, size and sort the way the backend expects:
// sort=field,direction.
func pageQuery(req domain.PageRequest) map[string]string {
	query := map[string]string{}
	if req.Size > 0 {
		query["page"] = strconv.Itoa(req.Page)
		query["size"] = strconv.Itoa(req.Size)
	}
	if req.SortField != "" && req.SortDir != domain.SortNone {
		query["sort"] = req.SortField + "," + string(req.SortDir)
	}
	return query
}

func get[T any](ctx context.Context, c *Client, route string, params map[string]any, query map[string]string) (T, error) {
	var out T
	err := c.do(ctx, request{method: http.MethodGet, route: route, params: params, query: query}, &out)
	return out, err
}

func send[T any](ctx context.Context, c *Client, method, route string, params map[string]any, body any) (T, error) {
	var out T
	err := c.do(ctx, request{method: method, route: route, params: params, body: body}, &out)
	return out, err
}

func del(ctx context.Context, c *Client, route string, params map[string]any) error {
	return c.do(ctx, request{method: http.MethodDelete, route: route, params: params}, nil)
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group, err = nil, fmt.Errorf("%w: group %q", ErrRouteNotFound, name)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("%w: group %q", ErrRouteNotFound, name)
	}
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			builder, err = nil, fmt.Errorf("%w: %q", ErrRouteNotFound, route)
		}
	}()
	builder = group.Builder(route)
	return builder, nil
}
