// Package handler turns resolutions into replies. The interesting work,
// fetching numbers and composing insights, belongs to downstream services;
// the handlers here produce the reply envelope and the canned responses
// that never leave this process.
package handler

import (
	"context"

	"github.com/sellerchat/sellerchat/internal/classify"
	"github.com/sellerchat/sellerchat/internal/pipeline"
)

// Response is the reply envelope sent back to the chat frontend.
type Response struct {
	Text     string            `json:"text"`
	Category classify.Category `json:"category"`

	// Resolution is echoed so the frontend can render the period the
	// answer covers and debug misroutes.
	Resolution pipeline.Resolution `json:"resolution"`
}

// Handler produces a response for one category of question.
type Handler interface {
	Handle(ctx context.Context, req pipeline.Request, res pipeline.Resolution) (Response, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, req pipeline.Request, res pipeline.Resolution) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req pipeline.Request, res pipeline.Resolution) (Response, error) {
	return f(ctx, req, res)
}

// Registry routes resolutions to handlers by category. Categories without a
// registered handler fall through to the fallback.
type Registry struct {
	handlers map[classify.Category]Handler
	fallback Handler
}

// NewRegistry creates a registry with the given fallback handler.
func NewRegistry(fallback Handler) *Registry {
	return &Registry{
		handlers: make(map[classify.Category]Handler),
		fallback: fallback,
	}
}

// Register binds a handler to a category, replacing any previous binding.
func (r *Registry) Register(cat classify.Category, h Handler) {
	r.handlers[cat] = h
}

// Dispatch routes to the category's handler, or the fallback.
func (r *Registry) Dispatch(ctx context.Context, req pipeline.Request, res pipeline.Resolution) (Response, error) {
	h, ok := r.handlers[res.Category]
	if !ok {
		h = r.fallback
	}
	resp, err := h.Handle(ctx, req, res)
	if err != nil {
		return Response{}, err
	}
	resp.Category = res.Category
	resp.Resolution = res
	return resp, nil
}
