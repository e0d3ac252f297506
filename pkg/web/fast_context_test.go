package web

import (
	"testing"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

func TestFastRequestContext_JSON(t *testing.T) {
	reqCtx := NewFastRequestContext(&fasthttp.RequestCtx{}, "")

	if err := reqCtx.JSON(999, "test"); err == nil {
		t.Error("JSON() with invalid status code should fail")
	}
	if err := reqCtx.JSON(0, "test"); err == nil {
		t.Error("JSON() with zero status code should fail")
	}

	if err := reqCtx.JSON(201, map[string]int{"id": 1}); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if reqCtx.StatusCode() != 201 {
		t.Errorf("StatusCode() = %v, want 201", reqCtx.StatusCode())
	}
	if got := string(reqCtx.RequestCtx.Response.Header.ContentType()); got != "application/json" {
		t.Errorf("Content-Type = %v, want application/json", got)
	}
	if got := string(reqCtx.RequestCtx.Response.Body()); got != `{"id":1}` {
		t.Errorf("body = %v", got)
	}
}

func TestFastRequestContext_BindJSON(t *testing.T) {
	reqCtx := NewFastRequestContext(&fasthttp.RequestCtx{}, "")

	if err := reqCtx.BindJSON(nil); err == nil {
		t.Error("BindJSON() with nil target should fail")
	}

	var empty map[string]interface{}
	if err := reqCtx.BindJSON(&empty); err != nil {
		t.Fatalf("BindJSON() with empty body error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty body decoded to %v, want {}", empty)
	}

	reqCtx.RequestCtx.Request.SetBody([]byte(`{"task":"x"`))
	var v map[string]interface{}
	if err := reqCtx.BindJSON(&v); err == nil {
		t.Error("BindJSON() with truncated body should fail")
	}
}

func TestFastRequestContext_RequestID(t *testing.T) {
	fastCtx := NewFastRequestContext(&fasthttp.RequestCtx{}, "test-request-id")

	if id := fastCtx.RequestID(); id != "test-request-id" {
		t.Errorf("RequestID() = %v, want test-request-id", id)
	}

	if got := core.GetRequestID(fastCtx.Context()); got != "test-request-id" {
		t.Errorf("GetRequestID() from context = %v, want test-request-id", got)
	}
}

func TestFastRequestContext_SetGet(t *testing.T) {
	fastCtx := NewFastRequestContext(&fasthttp.RequestCtx{}, "")

	fastCtx.Set("key1", "value1")
	fastCtx.Set("key2", 42)

	if val := fastCtx.Get("key1"); val != "value1" {
		t.Errorf("Get(key1) = %v, want value1", val)
	}
	if val := fastCtx.Get("key2"); val != 42 {
		t.Errorf("Get(key2) = %v, want 42", val)
	}
	if val := fastCtx.Get("nonexistent"); val != nil {
		t.Errorf("Get(nonexistent) = %v, want nil", val)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad request", core.BadRequest("x"), 400, ErrorBadRequest},
		{"not found", core.NotFound("x"), 404, ErrorNotFound},
		{"invalid state", &core.Error{Code: core.CodeInvalidState, Message: "x"}, 500, ErrorInternal},
		{"plain", fasthttp.ErrNoMultipartForm, 500, ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusOf(tt.err)
			if status != tt.status {
				t.Errorf("StatusOf() status = %v, want %v", status, tt.status)
			}
			if body.Error != tt.code {
				t.Errorf("StatusOf() code = %v, want %v", body.Error, tt.code)
			}
		})
	}
}
