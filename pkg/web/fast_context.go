package web

import (
	"context"
	"fmt"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

// FastRequestContext wraps fasthttp RequestCtx for handlers
type FastRequestContext struct {
	RequestCtx *fasthttp.RequestCtx
	Params     map[string]string
	requestID  string
	route      string
	ctx        context.Context
}

// NewFastRequestContext wraps rc; requestID may be empty
func NewFastRequestContext(rc *fasthttp.RequestCtx, requestID string) *FastRequestContext {
	return &FastRequestContext{
		RequestCtx: rc,
		Params:     make(map[string]string),
		requestID:  requestID,
	}
}

// JSON writes JSON response (default format) - fail-fast
func (c *FastRequestContext) JSON(statusCode int, data interface{}) error {
	// Fail-fast: validate status code
	if statusCode < 100 || statusCode > 599 {
		return fmt.Errorf("invalid status code: %d", statusCode)
	}

	jsonData, err := core.JSONEncode(data)
	if err != nil {
		return fmt.Errorf("json encode error: %w", err)
	}

	c.RequestCtx.SetStatusCode(statusCode)
	c.RequestCtx.SetContentType("application/json")
	c.RequestCtx.SetBody(jsonData)
	return nil
}

// BindJSON decodes the request body into v.
// An empty body decodes as the empty object.
func (c *FastRequestContext) BindJSON(v interface{}) error {
	if v == nil {
		return fmt.Errorf("cannot bind to nil value")
	}

	body := c.RequestCtx.PostBody()
	if len(body) == 0 {
		body = []byte("{}")
	}
	return core.JSONDecode(body, v)
}

// Status writes an empty response with statusCode
func (c *FastRequestContext) Status(statusCode int) error {
	c.RequestCtx.SetStatusCode(statusCode)
	return nil
}

// Query returns query parameter value
func (c *FastRequestContext) Query(key string) string {
	return string(c.RequestCtx.QueryArgs().Peek(key))
}

// Param returns path parameter value
func (c *FastRequestContext) Param(key string) string {
	return c.Params[key]
}

// Method returns HTTP method
func (c *FastRequestContext) Method() []byte {
	return c.RequestCtx.Method()
}

// Path returns request path
func (c *FastRequestContext) Path() []byte {
	return c.RequestCtx.Path()
}

// Header returns a request header value
func (c *FastRequestContext) Header(key string) string {
	return string(c.RequestCtx.Request.Header.Peek(key))
}

// SetHeader sets a response header
func (c *FastRequestContext) SetHeader(key, value string) {
	c.RequestCtx.Response.Header.Set(key, value)
}

// StatusCode returns the response status written so far
func (c *FastRequestContext) StatusCode() int {
	return c.RequestCtx.Response.StatusCode()
}

// Set stores a value for the lifetime of the request
func (c *FastRequestContext) Set(key string, value interface{}) {
	c.RequestCtx.SetUserValue(key, value)
}

// Get returns a value stored with Set
func (c *FastRequestContext) Get(key string) interface{} {
	return c.RequestCtx.UserValue(key)
}

// Route returns the pattern of the matched route, e.g. "/todos/:id/complete",
// or "" when no route matched
func (c *FastRequestContext) Route() string {
	return c.route
}

// RequestID returns the request ID for this request
func (c *FastRequestContext) RequestID() string {
	return c.requestID
}

// Context returns the request's context.Context carrying the request ID
func (c *FastRequestContext) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	ctx := context.Background()
	if c.requestID != "" {
		ctx = core.WithRequestID(ctx, c.requestID)
	}
	return ctx
}

// SetContext replaces the request's context, e.g. to carry a trace span
func (c *FastRequestContext) SetContext(ctx context.Context) {
	c.ctx = ctx
}
