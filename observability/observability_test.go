package observability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/aalemi-dev/sockettrace/observability"
)

func TestOperationContext(t *testing.T) {
	ctx := observability.OperationContext{
		Component:   "propagation",
		Operation:   "send",
		SubResource: "10.0.0.2:8080",
		Duration:    2 * time.Millisecond,
		Size:        32,
	}

	if ctx.Component != "propagation" {
		t.Errorf("expected component 'propagation', got '%s'", ctx.Component)
	}

	if ctx.Size != 32 {
		t.Errorf("expected size 32, got %d", ctx.Size)
	}
}

func TestNoOpObserver(t *testing.T) {
	observer := observability.NewNoOpObserver()

	// Should not panic
	observer.ObserveOperation(observability.OperationContext{
		Component: "socket",
		Operation: "emit",
	})
}

// Mock observer for testing
type mockObserver struct {
	calls []observability.OperationContext
}

func (m *mockObserver) ObserveOperation(ctx observability.OperationContext) {
	m.calls = append(m.calls, ctx)
}

func TestFunnel(t *testing.T) {
	a, b := &mockObserver{}, &mockObserver{}
	f := observability.Funnel{a, nil, b}

	f.ObserveOperation(observability.OperationContext{
		Component: "registry",
		Operation: "collision",
		Error:     errors.New("leaked"),
	})

	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Fatalf("expected both observers to be called once, got %d and %d", len(a.calls), len(b.calls))
	}

	if b.calls[0].Operation != "collision" {
		t.Errorf("expected operation 'collision', got '%s'", b.calls[0].Operation)
	}
}
