// Package mediator routes a request object (a command or a query) to the one
// handler registered for its type and calls it synchronously.
//
// Registration wraps the typed handler in a non-generic closure so that
// handlers for many request types can live in one map:
//
//	m := mediator.New(log)
//	mediator.Register(m, createStudent.Handle)  // func(ctx, students.CreateCommand) result.Result[...]
//
//	res, err := mediator.Send[result.Result[types.StudentResponse]](ctx, m, cmd)
//
// err is only non-nil for wiring problems (no handler, wrong result type)
// or a handler panic. Business outcomes travel inside the handler's own
// result value.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"time"
)

var (
	ErrHandlerNotFound   = errors.New("mediator: no handler registered")
	ErrHandlerRegistered = errors.New("mediator: handler already registered")
	ErrResultType        = errors.New("mediator: unexpected result type")
	ErrHandlerPanic      = errors.New("mediator: handler panicked")
)

// HandlerFunc is the typed shape every use-case handler exposes.
type HandlerFunc[Req, Res any] func(ctx context.Context, req Req) Res

// handlerFunc is the non-generic form stored in the registry.
type handlerFunc func(ctx context.Context, req any) (any, error)

// Mediator is safe for concurrent use. Handlers are registered at start-up
// and read on every request.
type Mediator struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]handlerFunc
	log      *slog.Logger
}

func New(log *slog.Logger) *Mediator {
	return &Mediator{
		handlers: make(map[reflect.Type]handlerFunc),
		log:      log,
	}
}

// Register binds fn to the request type Req. Each type may have exactly one
// handler; a second registration returns ErrHandlerRegistered.
func Register[Req, Res any](m *Mediator, fn HandlerFunc[Req, Res]) error {
	reqType := reflect.TypeFor[Req]()

	wrapped := func(ctx context.Context, req any) (any, error) {
		typed, ok := req.(Req)
		if !ok {
			return nil, fmt.Errorf("mediator: request %T is not %s", req, reqType)
		}
		return fn(ctx, typed), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.handlers[reqType]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerRegistered, reqType)
	}
	m.handlers[reqType] = wrapped
	return nil
}

// MustRegister is Register for start-up wiring, where a duplicate is a bug.
func MustRegister[Req, Res any](m *Mediator, fn HandlerFunc[Req, Res]) {
	if err := Register(m, fn); err != nil {
		panic(err)
	}
}

// Send dispatches req to its handler and returns the handler's result.
// Res must be spelled out by the caller, Req is inferred:
//
//	mediator.Send[result.Result[types.CourseResponse]](ctx, m, courses.GetByIDQuery{ID: id})
func Send[Res, Req any](ctx context.Context, m *Mediator, req Req) (Res, error) {
	var zero Res

	reqType := reflect.TypeOf(req)

	m.mu.RLock()
	fn, ok := m.handlers[reqType]
	m.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w for %s", ErrHandlerNotFound, reqType)
	}

	out, err := m.dispatch(ctx, reqType, fn, req)
	if err != nil {
		return zero, err
	}

	res, ok := out.(Res)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %s",
			ErrResultType, reqType, out, reflect.TypeFor[Res]())
	}
	return res, nil
}

// dispatch calls the handler, timing it and turning a panic into an error
// so a single bad request can never take the process down.
func (m *Mediator) dispatch(ctx context.Context, reqType reflect.Type, fn handlerFunc, req any) (out any, err error) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error("handler panicked",
				slog.String("request", reqType.String()),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			out, err = nil, fmt.Errorf("%w: %s: %v", ErrHandlerPanic, reqType, rec)
		}
	}()

	out, err = fn(ctx, req)

	m.log.Debug("request dispatched",
		slog.String("request", reqType.String()),
		slog.Duration("duration", time.Since(start)),
	)
	return out, err
}
