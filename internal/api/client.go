// Package api implements the typed HTTP client for the StudentLink backend.
// Every operation goes through a single request path that injects the bearer
// token, decodes the response envelope, and raises normalized errors; callers
// never see raw transport failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/session"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

// Client is the gateway for all backend calls.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *session.Session
	logger  *zap.Logger
	metrics *metrics.Metrics
	valid   *validator.Validate

	// onUnauthorized fires after a 401 purged the session, at most once per
	// failing response. The UI installs its login redirect here.
	onUnauthorized func()
}

// Option customises client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithMetrics attaches request instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithUnauthorizedHook installs the callback fired when a 401 clears the
// session.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// SetUnauthorizedHook replaces the 401 callback, for callers that swap
// surfaces after construction. Install it before issuing requests that may
// run concurrently.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// New constructs a Client against baseURL using the given session.
func New(baseURL string, sess *session.Session, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		session: sess,
		logger:  logger,
		valid:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fileUpload is one form file in a multipart request.
type fileUpload struct {
	Field    string
	FileName string
	Content  io.Reader
}

// requestOptions collects everything a single call needs.
type requestOptions struct {
	query  url.Values
	body   any
	fields map[string]string
	files  []fileUpload
}

func (c *Client) resource(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i > 0 {
		return trimmed[:i]
	}
	return trimmed
}

// do performs one round trip and returns the decoded envelope. All error
// paths return a normalized *appErrors.Error.
func (c *Client) do(ctx context.Context, method, path string, opts requestOptions) (*models.Envelope, error) {
	start := time.Now()
	env, status, err := c.roundTrip(ctx, method, path, opts)

	outcome := "success"
	if err != nil {
		outcome = string(appErrors.Normalize(err).Kind)
	}
	c.metrics.ObserveRequest(method, c.resource(path), strconv.Itoa(status), outcome, time.Since(start))
	c.logger.Debug("api_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("outcome", outcome),
	)
	return env, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, opts requestOptions) (*models.Envelope, int, error) {
	endpoint := c.baseURL + path
	if len(opts.query) > 0 {
		endpoint += "?" + opts.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case len(opts.files) > 0 || len(opts.fields) > 0:
		buf, ct, err := encodeMultipart(opts.fields, opts.files)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.KindUnknown, "encode multipart payload")
		}
		body = buf
		contentType = ct
	case opts.body != nil:
		data, err := json.Marshal(opts.body)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.KindUnknown, "encode request payload")
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.KindUnknown, "build request")
	}
	if contentType != "" {
		// Multipart writers return the boundary-bearing content type; plain
		// JSON sets it explicitly. Everything else leaves the header unset.
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, appErrors.FromTransport(err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return env, resp.StatusCode, nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}
	return nil, resp.StatusCode, appErrors.FromStatus(resp.StatusCode, env.Message)
}

// handleUnauthorized purges the session and fires the hook. Runs once per
// failing response; concurrent 401s each observe their own response.
func (c *Client) handleUnauthorized() {
	if err := c.session.Clear(); err != nil {
		c.logger.Warn("failed to clear session after 401", zap.Error(err))
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// decodeEnvelope parses the response body. 204 means empty success; non-JSON
// bodies are best-effort parsed and fall back to a status-derived message.
func decodeEnvelope(resp *http.Response) (*models.Envelope, error) {
	if resp.StatusCode == http.StatusNoContent {
		return &models.Envelope{Success: true}, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.KindNetwork, "read response body")
	}

	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		env = models.Envelope{
			Success: resp.StatusCode >= 200 && resp.StatusCode < 300,
			Message: strings.TrimSpace(http.StatusText(resp.StatusCode)),
		}
	}
	return &env, nil
}

// decodeData unmarshals the envelope's data block into out.
func decodeData(env *models.Envelope, out any) error {
	if env == nil || len(env.Data) == 0 {
		return appErrors.New(appErrors.KindUnknown, "response carried no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.KindUnknown, "decode response data")
	}
	return nil
}

// download fetches a binary blob with the bearer header, bypassing the JSON
// decoding path. Returns the raw bytes and the reported content type.
func (c *Client) download(ctx context.Context, path string, query url.Values) ([]byte, string, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.KindUnknown, "build request")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", appErrors.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", appErrors.FromStatus(resp.StatusCode, "")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.KindNetwork, "read blob body")
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func encodeMultipart(fields map[string]string, files []fileUpload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy form file %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func (c *Client) validate(req any) error {
	if err := c.valid.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.KindValidation, "invalid request payload")
	}
	return nil
}

// pageQuery serializes shared pagination params, omitting zero values.
func pageQuery(q url.Values, page, perPage int) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}
