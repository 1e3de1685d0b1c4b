// Package agent talks to the Lizzy deployment agent: typed stack operations
// over its HTTP API and the poller that waits for a deployment to settle.
package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/balaji-balu/lizzy-client/internal/version"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

const tracerName = "github.com/balaji-balu/lizzy-client/internal/agent"

// Sink receives the client's log lines.
type Sink interface {
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// Observer is told about every completed agent request. code is 0 when the
// agent could not be reached.
type Observer interface {
	ObserveRequest(operation string, code int, elapsed time.Duration)
}

type nopSink struct{}

func (nopSink) Debug(string, ...zap.Field) {}
func (nopSink) Warn(string, ...zap.Field)  {}

// Client is bound to one agent and one access token for the lifetime of a
// command. It is not safe for concurrent use.
type Client struct {
	apiURL     *url.URL
	token      string
	httpClient *http.Client
	version    string
	log        Sink
	observer   Observer
	tracer     trace.Tracer

	versionWarned bool
}

type Option func(*Client)

// WithHTTPClient replaces the default transport, which skips TLS
// certificate verification.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTLSVerify turns certificate verification on or off on the default
// transport.
func WithTLSVerify(verify bool) Option {
	return func(c *Client) {
		if t, ok := c.httpClient.Transport.(*http.Transport); ok && t.TLSClientConfig != nil {
			t.TLSClientConfig.InsecureSkipVerify = !verify
		}
	}
}

func WithLogger(s Sink) Option {
	return func(c *Client) { c.log = s }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithVersion overrides the client version compared with X-Lizzy-Version.
func WithVersion(v string) Option {
	return func(c *Client) { c.version = v }
}

// New creates a client for the agent at baseURL. "/api" is appended unless
// the URL already ends with it.
func New(baseURL, accessToken string, opts ...Option) (*Client, error) {
	apiURL, err := apiURL(baseURL)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, // agents run with internal certificates
			MinVersion:         tls.VersionTLS12,
		},
	}

	c := &Client{
		apiURL: apiURL,
		token:  accessToken,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
		version: version.Version,
		log:     nopSink{},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func apiURL(base string) (*url.URL, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("agent URL is empty")
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid agent URL %q: %w", base, err)
	}
	if u.Path != "/api" {
		u = u.JoinPath("api")
	}
	return u, nil
}

// APIURL is the base of every agent endpoint.
func (c *Client) APIURL() string {
	return c.apiURL.String()
}

// StacksURL is the stacks collection endpoint.
func (c *Client) StacksURL() string {
	return c.apiURL.JoinPath("stacks").String()
}

// CreateStack submits a deployment and returns the new stack along with the
// agent's formatted output.
func (c *Client) CreateStack(ctx context.Context, req model.DeploymentRequest) (*model.Stack, string, error) {
	resp, err := c.do(ctx, "CreateStack", http.MethodPost, nil, nil, req.Normalized(),
		attribute.String("stack.version", req.StackVersion),
		attribute.String("stack.region", req.Region))
	if err != nil {
		return nil, "", err
	}

	var stack model.Stack
	if err := json.Unmarshal(resp.body, &stack); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}
	return &stack, FormatOutput(resp.header), nil
}

// GetStack fetches one stack.
func (c *Client) GetStack(ctx context.Context, stackID, region string) (*model.Stack, error) {
	resp, err := c.do(ctx, "GetStack", http.MethodGet, []string{stackID}, regionQuery(region), nil,
		attribute.String("stack.id", stackID))
	if err != nil {
		return nil, err
	}

	var stack model.Stack
	if err := json.Unmarshal(resp.body, &stack); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	c.checkTimestamps(stack)
	return &stack, nil
}

// ListStacks fetches the stacks matching references, all stacks when empty.
func (c *Client) ListStacks(ctx context.Context, references []string, region string) ([]model.Stack, error) {
	query := regionQuery(region)
	if len(references) > 0 {
		query.Set("references", strings.Join(references, ","))
	}

	resp, err := c.do(ctx, "ListStacks", http.MethodGet, nil, query, nil,
		attribute.StringSlice("stack.references", references))
	if err != nil {
		return nil, err
	}

	var stacks []model.Stack
	if err := json.Unmarshal(resp.body, &stacks); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	c.checkTimestamps(stacks...)
	return stacks, nil
}

func (c *Client) checkTimestamps(stacks ...model.Stack) {
	for _, s := range stacks {
		if raw := s.CreationTime.Unparsed(); raw != "" {
			c.log.Debug("unrecognized creation time", zap.String("stack", s.ID()), zap.String("creation_time", raw))
		}
	}
}

// SetTraffic routes percent of the traffic to the stack. Callers clamp
// percent into [0,100]; the value is sent as given.
func (c *Client) SetTraffic(ctx context.Context, stackID string, percent int, region string) error {
	body := model.UpdateRequest{NewTraffic: &percent, Region: region}
	_, err := c.do(ctx, "SetTraffic", http.MethodPatch, []string{stackID}, nil, body,
		attribute.String("stack.id", stackID),
		attribute.Int("stack.traffic", percent))
	if err != nil {
		c.log.Debug("traffic change rejected", zap.String("stack", stackID), zap.Int("percent", percent), zap.Error(err))
	}
	return err
}

// GetTraffic returns the traffic weight of the stack.
func (c *Client) GetTraffic(ctx context.Context, stackID, region string) (*model.Traffic, error) {
	resp, err := c.do(ctx, "GetTraffic", http.MethodGet, []string{stackID, "traffic"}, regionQuery(region), nil,
		attribute.String("stack.id", stackID))
	if err != nil {
		return nil, err
	}

	var traffic model.Traffic
	if err := json.Unmarshal(resp.body, &traffic); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &traffic, nil
}

// SetScale changes the instance count of the stack.
func (c *Client) SetScale(ctx context.Context, stackID string, count int, region string) (string, error) {
	body := model.UpdateRequest{NewScale: &count, Region: region}
	resp, err := c.do(ctx, "SetScale", http.MethodPatch, []string{stackID}, nil, body,
		attribute.String("stack.id", stackID),
		attribute.Int("stack.scale", count))
	if err != nil {
		return "", err
	}
	return FormatOutput(resp.header), nil
}

// DeleteStack removes the stack. The agent expects the options in a JSON
// body even though the method is DELETE.
func (c *Client) DeleteStack(ctx context.Context, stackID, region string, dryRun bool) (string, error) {
	body := model.DeleteRequest{DryRun: dryRun, Region: region}
	resp, err := c.do(ctx, "DeleteStack", http.MethodDelete, []string{stackID}, nil, body,
		attribute.String("stack.id", stackID),
		attribute.Bool("dry_run", dryRun))
	if err != nil {
		return "", err
	}
	return FormatOutput(resp.header), nil
}

type response struct {
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, operation, method string, path []string, query url.Values, body any, attrs ...attribute.KeyValue) (*response, error) {
	ctx, span := c.tracer.Start(ctx, "agent."+operation, trace.WithAttributes(attrs...))
	defer span.End()

	target := c.apiURL.JoinPath(append([]string{"stacks"}, path...)...)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	span.SetAttributes(attribute.String("http.request_id", requestID))

	c.log.Debug("agent request", zap.String("operation", operation), zap.String("method", method),
		zap.String("url", target.String()), zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, 0, start)
		connErr := &ConnectionError{URL: c.apiURL.Host, Err: err}
		span.RecordError(connErr)
		span.SetStatus(codes.Error, connErr.Reason())
		return nil, connErr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(operation, resp.StatusCode, start)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		return nil, &ConnectionError{URL: c.apiURL.Host, Err: err}
	}

	c.checkVersion(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		agentErr := newAgentError(resp.StatusCode, data)
		span.SetStatus(codes.Error, agentErr.Message())
		return nil, agentErr
	}
	return &response{header: resp.Header, body: data}, nil
}

// checkVersion warns once when the agent runs a different release.
func (c *Client) checkVersion(header http.Header) {
	agentVersion := header.Get(HeaderVersion)
	if agentVersion == "" || agentVersion == c.version || c.versionWarned {
		return
	}
	c.versionWarned = true
	c.log.Warn("Version Mismatch: the agent and the client run different versions",
		zap.String("agent_version", agentVersion),
		zap.String("client_version", c.version))
}

func (c *Client) observe(operation string, code int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(operation, code, time.Since(start))
	}
}

func regionQuery(region string) url.Values {
	query := url.Values{}
	if region != "" {
		query.Set("region", region)
	}
	return query
}

// ClampPercent bounds a traffic percentage to [0,100].
func ClampPercent(percent int) int {
	return clamp(percent, 0, 100)
}

// ClampScale bounds an instance count to [0,999].
func ClampScale(count int) int {
	return clamp(count, 0, 999)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
