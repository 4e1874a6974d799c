package cache

import (
	"context"
	"errors"
	"testing"
)

// mockCacheService for testing GetOrFetch function
type mockCacheService struct {
	result     any
	err        error
	passThough bool
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if m.passThough {
		return fetchFn(ctx)
	}
	return m.result, m.err
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

func TestGetOrFetch_NilInterfaceReturnsZero(t *testing.T) {
	mock := &mockCacheService{result: nil}

	type SomeInterface interface {
		DoSomething() string
	}

	result, err := GetOrFetch[SomeInterface](context.Background(), mock, "test-key", func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	})

	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}

	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := &mockCacheService{result: "wrong-type"}

	result, err := GetOrFetch[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}

	if result != 0 {
		t.Errorf("expected zero value (0) but got: %v", result)
	}
}

func TestGetOrFetch_PropagatesError(t *testing.T) {
	fetchErr := errors.New("backend down")
	mock := &mockCacheService{err: fetchErr}

	_, err := GetOrFetch[string](context.Background(), mock, "test-key", func(ctx context.Context) (string, error) {
		return "unused", nil
	})

	if !errors.Is(err, fetchErr) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestGetOrFetch_CallsTypedFetch(t *testing.T) {
	mock := &mockCacheService{passThough: true}

	type pair struct{ A, B int }

	result, err := GetOrFetch(context.Background(), mock, "test-key", func(ctx context.Context) (pair, error) {
		return pair{A: 1, B: 2}, nil
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if result != (pair{A: 1, B: 2}) {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestNewCacheService(t *testing.T) {
	svc, err := NewCacheService(DefaultConfig())
	if err != nil {
		t.Fatalf("expected default config to build a service, got %v", err)
	}

	got, err := GetOrFetch(context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "v", nil
	})
	if err != nil || got != "v" {
		t.Errorf("expected v, got %q (%v)", got, err)
	}
}

func TestNewCacheService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}

	svc, err := NewCacheService(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if svc != nil {
		t.Error("expected nil service")
	}
}
