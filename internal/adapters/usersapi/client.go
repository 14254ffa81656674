// Package usersapi is the REST client for the remote /users resource.
package usersapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/net/publicsuffix"

	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/domain/model"
	apperrors "github.com/target/userdesk/internal/errors"
	"github.com/target/userdesk/internal/observability/metrics"
	"github.com/target/userdesk/internal/observability/statsd"
)

const (
	defaultPath      = "/users"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "userdesk/1.0"

	maxBodyBytes      = 8 << 20
	maxErrorBodyBytes = 512
)

// Operation names used in logs and metric tags.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Config configures the client. Only BaseURL is required.
type Config struct {
	BaseURL string
	Path    string
	Timeout time.Duration
	// ListExpr is an optional JMESPath expression selecting the user array
	// from the list response, for APIs that wrap it in an envelope.
	ListExpr  string
	CookieJar bool
	UserAgent string
	// HTTPClient overrides the client built from Timeout and CookieJar.
	HTTPClient *http.Client
	Metrics    statsd.Sink
	Logger     *slog.Logger
}

// Client talks to the users API. It never retries.
type Client struct {
	collection *url.URL
	listExpr   string
	userAgent  string
	hc         *http.Client
	metrics    statsd.Sink
	logger     *slog.Logger
}

var _ core.UsersAPI = (*Client)(nil)

// StatusError is returned when the users API answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	// Body holds at most the first 512 bytes of the response.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("users api %s %s: status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("users api base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse users api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("users api base url must be absolute http(s): %q", base)
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = defaultPath
	}
	collection := u.JoinPath(path)

	expr := strings.TrimSpace(cfg.ListExpr)
	if expr != "" {
		if _, cerr := jmespath.Compile(expr); cerr != nil {
			return nil, fmt.Errorf("compile users list expression: %w", cerr)
		}
	}

	hc, err := buildHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		collection: collection,
		listExpr:   expr,
		userAgent:  ua,
		hc:         hc,
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "usersapi"),
	}, nil
}

func buildHTTPClient(cfg Config) (*http.Client, error) {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient, nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	if cfg.CookieJar {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	return hc, nil
}

// CollectionURL returns the absolute URL of the users collection.
func (c *Client) CollectionURL() string { return c.collection.String() }

// List fetches every user.
func (c *Client) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.call(ctx, request{op: OpList, method: http.MethodGet, url: c.collection}, func(body io.Reader) error {
		return c.decodeList(body, &users)
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// Create posts a new user and returns the server's record.
func (c *Client) Create(ctx context.Context, in model.UserInput) (model.User, error) {
	var out model.User
	err := c.call(ctx, request{op: OpCreate, method: http.MethodPost, url: c.collection, body: in}, decodeInto(&out))
	return out, err
}

// Update replaces the user with the given id and returns the server's record.
func (c *Client) Update(ctx context.Context, id int64, in model.UserInput) (model.User, error) {
	var out model.User
	err := c.call(ctx, request{op: OpUpdate, method: http.MethodPut, url: c.member(id), body: in}, decodeInto(&out))
	return out, err
}

// Delete removes the user with the given id. Any 2xx is success.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.call(ctx, request{op: OpDelete, method: http.MethodDelete, url: c.member(id)}, nil)
}

func (c *Client) member(id int64) *url.URL {
	return c.collection.JoinPath(strconv.FormatInt(id, 10))
}

type request struct {
	op     string
	method string
	url    *url.URL
	body   any
}

func (c *Client) call(ctx context.Context, r request, decode func(io.Reader) error) error {
	start := time.Now()
	err := c.roundTrip(ctx, r, decode)
	metrics.EmitUsersAPICall(c.metrics, metrics.UsersAPICall{
		Operation: r.op,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "users api call failed",
			"operation", r.op, "method", r.method, "url", r.url.String(), "error", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, r request, decode func(io.Reader) error) error {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "build %s request", r.op)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return apperrors.MapTransportError(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusFailure(r, resp)
	}
	if decode == nil {
		return nil
	}
	if err := decode(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperrors.MapTransportError(ctxErr)
		}
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "decode %s response", r.op)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func statusFailure(r request, resp *http.Response) error {
	prefix, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	se := &StatusError{
		Method:     r.method,
		URL:        r.url.String(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(prefix)),
	}
	code := apperrors.ErrCodeUpstream
	if resp.StatusCode == http.StatusNotFound {
		code = apperrors.ErrCodeNotFound
	}
	return apperrors.Wrapf(se, code, "users api %s failed", r.op)
}

func decodeInto(dst any) func(io.Reader) error {
	return func(body io.Reader) error {
		return json.NewDecoder(body).Decode(dst)
	}
}

func (c *Client) decodeList(body io.Reader, dst *[]model.User) error {
	if c.listExpr == "" {
		return json.NewDecoder(body).Decode(dst)
	}

	var doc any
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return err
	}
	selected, err := jmespath.Search(c.listExpr, doc)
	if err != nil {
		return fmt.Errorf("evaluate list expression: %w", err)
	}
	if selected == nil {
		return fmt.Errorf("list expression %q matched nothing", c.listExpr)
	}
	if _, ok := selected.([]any); !ok {
		return fmt.Errorf("list expression %q did not select an array", c.listExpr)
	}
	b, err := json.Marshal(selected)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
