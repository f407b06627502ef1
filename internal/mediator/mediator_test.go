package mediator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type greetQuery struct{ Name string }

type countCommand struct{ N int }

func newTestMediator() *Mediator {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSend_RoutesByRequestType(t *testing.T) {
	m := newTestMediator()

	MustRegister(m, func(ctx context.Context, q greetQuery) string { return "hello " + q.Name })
	MustRegister(m, func(ctx context.Context, c countCommand) int { return c.N * 2 })

	greeting, err := Send[string](context.Background(), m, greetQuery{Name: "Ana"})
	if err != nil || greeting != "hello Ana" {
		t.Fatalf("expected greeting, got %q (%v)", greeting, err)
	}

	doubled, err := Send[int](context.Background(), m, countCommand{N: 21})
	if err != nil || doubled != 42 {
		t.Fatalf("expected 42, got %d (%v)", doubled, err)
	}
}

func TestSend_NoHandler(t *testing.T) {
	m := newTestMediator()

	_, err := Send[string](context.Background(), m, greetQuery{})
	if !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("expected ErrHandlerNotFound, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	m := newTestMediator()
	fn := func(ctx context.Context, q greetQuery) string { return "" }

	if err := Register(m, fn); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(m, fn); !errors.Is(err, ErrHandlerRegistered) {
		t.Fatalf("expected ErrHandlerRegistered, got %v", err)
	}
}

func TestSend_WrongResultType(t *testing.T) {
	m := newTestMediator()
	MustRegister(m, func(ctx context.Context, q greetQuery) string { return "hi" })

	_, err := Send[int](context.Background(), m, greetQuery{})
	if !errors.Is(err, ErrResultType) {
		t.Fatalf("expected ErrResultType, got %v", err)
	}
}

func TestSend_RecoversPanic(t *testing.T) {
	m := newTestMediator()
	MustRegister(m, func(ctx context.Context, c countCommand) int { panic("boom") })

	_, err := Send[int](context.Background(), m, countCommand{N: 1})
	if !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("expected ErrHandlerPanic, got %v", err)
	}
}

func TestSend_PassesContext(t *testing.T) {
	type key struct{}
	m := newTestMediator()
	MustRegister(m, func(ctx context.Context, q greetQuery) string {
		v, _ := ctx.Value(key{}).(string)
		return v
	})

	ctx := context.WithValue(context.Background(), key{}, "from-ctx")
	got, err := Send[string](ctx, m, greetQuery{})
	if err != nil || got != "from-ctx" {
		t.Fatalf("expected context value, got %q (%v)", got, err)
	}
}
