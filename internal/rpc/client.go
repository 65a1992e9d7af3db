// Package rpc реализует HTTP+JSON транспорт к удалённым сервисам с трассировкой каждого вызова.
//
// Каждый вызов Client.Request открывает дочерний спан с именем host+path,
// внедряет его контекст в заголовки запроса и завершает спан по результату вызова.
// Клиент никогда не повторяет запросы: политика повторов принадлежит вызывающему.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/tracing"
)

// Options параметры одного вызова.
type Options struct {
	Headers map[string]string `json:"headers,omitempty"`
	Query   url.Values        `json:"query,omitempty"`
	JSON    any               `json:"json,omitempty"`
	// Timeout транспортная директива, в лог спана не попадает.
	Timeout time.Duration `json:"-"`
}

// StatusError ответ удалённого сервиса со статусом 4xx/5xx.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rpc: unexpected response status %s", e.Status)
}

// Client HTTP-клиент с трассировкой вызовов.
type Client struct {
	resty   *resty.Client
	baseURL *url.URL
	tracer  *tracing.Tracer
}

// New создаёт клиент для базового адреса шлюза из конфигурации.
func New(cfg config.Micro, tracer *tracing.Tracer) (*Client, error) {
	const op = "rpc.New"

	base, err := url.Parse(cfg.APIGateway)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		resty:   restyClient,
		baseURL: base,
		tracer:  tracer,
	}, nil
}

// Get выполняет GET-запрос.
func (c *Client) Get(ctx context.Context, uri string, opts Options) (*resty.Response, error) {
	return c.Request(ctx, http.MethodGet, uri, opts)
}

// Post выполняет POST-запрос.
func (c *Client) Post(ctx context.Context, uri string, opts Options) (*resty.Response, error) {
	return c.Request(ctx, http.MethodPost, uri, opts)
}

// Request выполняет запрос и блокируется до получения ответа или ошибки.
//
// Спан вызова становится дочерним по отношению к спану из ctx. Ошибка транспорта
// или статус ответа >= 400 возвращаются вызывающему без изменений.
func (c *Client) Request(ctx context.Context, method, uri string, opts Options) (*resty.Response, error) {
	const op = "rpc.Request"

	target, err := c.resolve(uri)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	spanName := SpanName(target)

	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", spanName),
			attribute.String("span.kind", "client"),
		),
	)

	headers := make(map[string]string, len(opts.Headers)+2)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	c.tracer.Inject(ctx, propagation.MapCarrier(headers))
	opts.Headers = headers

	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req := c.resty.R().SetContext(callCtx).SetHeaders(headers)
	if opts.Query != nil {
		req.SetQueryParamsFromValues(opts.Query)
	}
	if opts.JSON != nil {
		req.SetBody(opts.JSON)
	}

	start := time.Now()
	resp, err := req.Execute(method, target.String())
	if err == nil && resp.IsError() {
		err = &StatusError{
			Code:   resp.StatusCode(),
			Status: resp.Status(),
			Body:   resp.String(),
		}
	}
	observe(method, spanName, resp, err, time.Since(start))

	if err != nil {
		finishOnFailed(span, err, opts)
		return nil, err
	}
	finishOnFulfilled(span, resp)
	return resp, nil
}

// SpanName возвращает имя спана для адреса: host+path без параметров запроса.
func SpanName(u *url.URL) string {
	return u.Hostname() + u.Path
}

func (c *Client) resolve(uri string) (*url.URL, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}
	return c.baseURL.ResolveReference(ref), nil
}

func finishOnFulfilled(span *tracing.Span, resp *resty.Response) {
	span.SetTag("http.status_code", resp.StatusCode())
	span.Finish()
}

func finishOnFailed(span *tracing.Span, err error, opts Options) {
	span.SetTag("error", true)
	if code := StatusCode(err); code > 0 {
		span.SetTag("http.status_code", code)
	}

	snapshot, mErr := json.Marshal(opts)
	if mErr != nil {
		snapshot = []byte(fmt.Sprintf("%q", mErr.Error()))
	}
	span.Log(map[string]any{
		"exception":       err.Error(),
		"request_options": string(snapshot),
	})
	span.Finish()
}

// StatusCode возвращает HTTP-статус, переданный в ошибке, или 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
