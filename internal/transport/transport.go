// Package transport issues logical API operations with rate limiting and
// classification-based retries.
//
// One logical operation moves through Idle → Attempting and then ends in
// Success, ClientFailure (4xx, terminal on first occurrence), or loops through
// Retrying → Attempting on 5xx and network failures until the attempt budget
// is spent, ending in ServerFailure. Any other status (1xx, 3xx) is terminal
// and reported as an unexpected status.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"lead-pipeline/internal/common/clock"
	errs "lead-pipeline/internal/common/errors"
	commonhttp "lead-pipeline/internal/common/http"
	"lead-pipeline/internal/common/logger"
	"lead-pipeline/internal/common/metrics"
	"lead-pipeline/internal/ratelimit"
)

const (
	DefaultMaxAttempts = 3
	DefaultTimeout     = 30 * time.Second

	headerAPIKey    = "X-Api-Key"
	headerRequestID = "X-Request-Id"
)

var tracer = otel.Tracer("lead-pipeline/transport")

// RequestAttempt describes one physical call. It exists for retry
// bookkeeping and observation only.
type RequestAttempt struct {
	RequestID  string
	Method     string
	Endpoint   string
	Attempt    int
	Backoff    time.Duration
	StatusCode int
	Duration   time.Duration
	Err        error
}

type Options struct {
	BaseURL     string
	APIKey      string
	MaxAttempts int
	Doer        commonhttp.Doer
	Limiter     ratelimit.Limiter
	Clock       clock.Clock
	Logger      logger.Logger
	// Observer, if set, sees every physical attempt.
	Observer func(RequestAttempt)
}

// Transport is safe for concurrent use; all pacing is delegated to the limiter.
type Transport struct {
	baseURL     string
	apiKey      string
	maxAttempts int
	doer        commonhttp.Doer
	limiter     ratelimit.Limiter
	clock       clock.Clock
	logger      logger.Logger
	observer    func(RequestAttempt)
}

func New(opts Options) (*Transport, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	t := &Transport{
		baseURL:     base,
		apiKey:      opts.APIKey,
		maxAttempts: opts.MaxAttempts,
		doer:        opts.Doer,
		limiter:     opts.Limiter,
		clock:       opts.Clock,
		logger:      opts.Logger,
		observer:    opts.Observer,
	}
	if t.maxAttempts <= 0 {
		t.maxAttempts = DefaultMaxAttempts
	}
	if t.doer == nil {
		t.doer = commonhttp.NewClient(DefaultTimeout)
	}
	if t.clock == nil {
		t.clock = clock.Real{}
	}
	if t.limiter == nil {
		t.limiter = ratelimit.New(ratelimit.DefaultRequestsPerMinute, t.clock)
	}
	if t.logger == nil {
		t.logger = logger.NewNoOpLogger()
	}
	return t, nil
}

func (t *Transport) MaxAttempts() int {
	return t.maxAttempts
}

// Backoff is the wait after the failed attempt with the given 0-based index:
// 1s, 2s, 4s, ...
func Backoff(failedAttempt int) time.Duration {
	if failedAttempt < 0 {
		failedAttempt = 0
	}
	if failedAttempt > 16 {
		failedAttempt = 16
	}
	return time.Duration(1<<uint(failedAttempt)) * time.Second
}

// Execute performs one logical operation with the configured attempt budget
// and returns the raw response payload.
func (t *Transport) Execute(ctx context.Context, method, endpoint string, payload map[string]interface{}) (json.RawMessage, error) {
	return t.ExecuteWithAttempts(ctx, method, endpoint, payload, t.maxAttempts)
}

// ExecuteWithAttempts is Execute with an explicit attempt budget.
func (t *Transport) ExecuteWithAttempts(ctx context.Context, method, endpoint string, payload map[string]interface{}, maxAttempts int) (json.RawMessage, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	method = strings.ToUpper(method)
	label := metrics.EndpointLabel(endpoint)

	prepared, err := t.prepare(method, endpoint, payload)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	ctx, span := tracer.Start(ctx, method+" "+label,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("lead_pipeline.endpoint", label),
			attribute.String("lead_pipeline.request_id", requestID),
		))
	defer span.End()

	log := t.logger.With(map[string]interface{}{
		"method":    method,
		"endpoint":  endpoint,
		"requestId": requestID,
	})

	var (
		lastErr error
		backoff time.Duration
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff = Backoff(attempt - 1)
			metrics.APIRetriesTotal.WithLabelValues(label).Inc()
			log.Warn("Retrying request after retryable failure", map[string]interface{}{
				"attempt":     attempt,
				"maxAttempts": maxAttempts,
				"backoff":     backoff.String(),
				"error":       errs.Redact(lastErr.Error()),
			})
			if err := t.clock.Sleep(ctx, backoff); err != nil {
				return nil, t.fail(span, err)
			}
		}

		if err := t.limiter.Acquire(ctx); err != nil {
			return nil, t.fail(span, fmt.Errorf("acquire dispatch slot: %w", err))
		}

		started := t.clock.Now()
		body, status, callErr := t.dispatch(ctx, prepared, requestID)
		elapsed := t.clock.Now().Sub(started)
		metrics.APIRequestDuration.WithLabelValues(label).Observe(elapsed.Seconds())

		t.observe(RequestAttempt{
			RequestID:  requestID,
			Method:     method,
			Endpoint:   endpoint,
			Attempt:    attempt,
			Backoff:    backoff,
			StatusCode: status,
			Duration:   elapsed,
			Err:        callErr,
		})

		switch {
		case callErr != nil && errs.IsCancellation(ctx.Err()):
			metrics.APIRequestsTotal.WithLabelValues(method, label, "cancelled").Inc()
			return nil, t.fail(span, callErr)

		case callErr != nil:
			metrics.APIRequestsTotal.WithLabelValues(method, label, "network_error").Inc()
			lastErr = callErr

		case status >= 200 && status < 300:
			metrics.APIRequestsTotal.WithLabelValues(method, label, "success").Inc()
			span.SetAttributes(attribute.Int("lead_pipeline.attempts", attempt+1))
			log.Debug("Request succeeded", map[string]interface{}{
				"attempt":    attempt,
				"statusCode": status,
			})
			return json.RawMessage(body), nil

		case status >= 500:
			metrics.APIRequestsTotal.WithLabelValues(method, label, "server_error").Inc()
			lastErr = &StatusError{StatusCode: status, Snippet: errs.Snippet(body)}

		case status >= 400:
			metrics.APIRequestsTotal.WithLabelValues(method, label, "client_error").Inc()
			return nil, t.fail(span, errs.NewClientError(method, endpoint, status, errs.Snippet(body)))

		default:
			metrics.APIRequestsTotal.WithLabelValues(method, label, "unexpected_status").Inc()
			return nil, t.fail(span, errs.NewUnexpectedStatusError(method, endpoint, status, errs.Snippet(body)))
		}
	}

	return nil, t.fail(span, errs.NewServerError(method, endpoint, maxAttempts, lastErr))
}

func (t *Transport) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(errs.KindOf(err)))
	return err
}

func (t *Transport) observe(a RequestAttempt) {
	if t.observer != nil {
		t.observer(a)
	}
}

type preparedRequest struct {
	method string
	url    string
	body   []byte
}

func (t *Transport) prepare(method, endpoint string, payload map[string]interface{}) (preparedRequest, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	p := preparedRequest{method: method, url: t.baseURL + endpoint}

	if method == http.MethodGet || method == http.MethodDelete {
		query, err := encodeQuery(payload)
		if err != nil {
			return p, errs.NewValidationError(errs.ErrCodeInvalidInput, "cannot encode query parameters", err.Error())
		}
		if query != "" {
			p.url += "?" + query
		}
		return p, nil
	}

	if payload == nil {
		payload = map[string]interface{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return p, errs.NewValidationError(errs.ErrCodeInvalidInput, "cannot encode request body", err.Error())
	}
	p.body = body
	return p, nil
}

func (t *Transport) dispatch(ctx context.Context, p preparedRequest, requestID string) ([]byte, int, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(headerRequestID, requestID)
	if t.apiKey != "" {
		req.Header.Set(headerAPIKey, t.apiKey)
	}

	resp, err := t.doer.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	return b, resp.StatusCode, nil
}

func encodeQuery(payload map[string]interface{}) (string, error) {
	if len(payload) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		switch v := payload[k].(type) {
		case nil:
		case string:
			if v != "" {
				q.Set(k, v)
			}
		case []string:
			for _, s := range v {
				q.Add(k, s)
			}
		case bool, int, int64, float64:
			q.Set(k, fmt.Sprint(v))
		default:
			return "", fmt.Errorf("unsupported query value for %q: %T", k, v)
		}
	}
	return q.Encode(), nil
}

// StatusError is the retryable cause recorded for a 5xx response.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("server responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server responded with status %d: %s", e.StatusCode, e.Snippet)
}

func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}
