package web

import (
	"errors"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

// Error codes written in response bodies
const (
	ErrorBadRequest = "bad_request"
	ErrorNotFound   = "not_found"
	ErrorInternal   = "internal_error"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusOf maps err to an HTTP status and error body.
// Only *core.Error messages are shown to clients; anything else is an internal error.
func StatusOf(err error) (int, ErrorResponse) {
	var e *core.Error
	if !errors.As(err, &e) {
		return fasthttp.StatusInternalServerError, ErrorResponse{Error: ErrorInternal, Message: "Internal Server Error"}
	}

	switch e.Code {
	case core.CodeBadRequest, core.CodeInvalidInput:
		return fasthttp.StatusBadRequest, ErrorResponse{Error: ErrorBadRequest, Message: e.Message}
	case core.CodeNotFound:
		return fasthttp.StatusNotFound, ErrorResponse{Error: ErrorNotFound, Message: e.Message}
	default:
		return fasthttp.StatusInternalServerError, ErrorResponse{Error: ErrorInternal, Message: "Internal Server Error"}
	}
}

// WriteError writes the error response for err
func WriteError(ctx *FastRequestContext, err error) error {
	status, body := StatusOf(err)
	ctx.RequestCtx.ResetBody()
	return ctx.JSON(status, body)
}
