package todo

import (
	"strconv"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// Handler exposes Service over HTTP
type Handler struct {
	Service *Service
}

// NewHandler creates a handler for service
func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes registers the todo endpoints on router
func (h *Handler) RegisterRoutes(router web.Router) {
	router.GET("/todos", h.List)
	router.POST("/addtodo", h.Create)
	router.DELETE("/deletetodo/:id", h.Delete)
	router.PUT("/todos/:id/complete", h.Complete)
}

// MessageResponse is the body of delete responses
type MessageResponse struct {
	Message string `json:"message"`
}

// TodoResponse is the body of create and complete responses
type TodoResponse struct {
	Message string `json:"message"`
	Todo    Todo   `json:"todo"`
}

// List handles GET /todos
func (h *Handler) List(ctx *web.FastRequestContext) error {
	todos, err := h.Service.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(fasthttp.StatusOK, todos)
}

// Create handles POST /addtodo
func (h *Handler) Create(ctx *web.FastRequestContext) error {
	var in CreateInput
	if err := ctx.BindJSON(&in); err != nil {
		return core.BadRequest(MsgInvalidBody)
	}

	todo, err := h.Service.Create(ctx.Context(), in)
	if err != nil {
		return err
	}
	return ctx.JSON(fasthttp.StatusCreated, TodoResponse{Message: MsgAdded, Todo: todo})
}

// Delete handles DELETE /deletetodo/:id
func (h *Handler) Delete(ctx *web.FastRequestContext) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := h.Service.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(fasthttp.StatusOK, MessageResponse{Message: MsgDeleted})
}

// Complete handles PUT /todos/:id/complete. A malformed body is rejected
// before the id is looked up.
func (h *Handler) Complete(ctx *web.FastRequestContext) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var in CompleteInput
	if err := ctx.BindJSON(&in); err != nil {
		return core.BadRequest(MsgInvalidBody)
	}

	todo, err := h.Service.Complete(ctx.Context(), id, in)
	if err != nil {
		return err
	}
	return ctx.JSON(fasthttp.StatusOK, TodoResponse{Message: MsgUpdated, Todo: todo})
}

func pathID(ctx *web.FastRequestContext) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, core.BadRequest(MsgInvalidID)
	}
	return id, nil
}
