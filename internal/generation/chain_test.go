package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/trendfarm/pkg/logger"
)

func TestFirstSuccessStopsAtFirstWinner(t *testing.T) {
	var called []string
	provider := func(name string, err error) Provider[string] {
		return Provider[string]{Name: name, Run: func(ctx context.Context) (string, error) {
			called = append(called, name)
			if err != nil {
				return "", err
			}
			return "result from " + name, nil
		}}
	}

	providers := []Provider[string]{
		provider("one", errors.New("down")),
		provider("two", errors.New("quota")),
		provider("three", nil),
		provider("four", nil),
	}

	got, name, err := FirstSuccess(context.Background(), logger.Nop(), providers)
	if err != nil {
		t.Fatalf("FirstSuccess() error = %v", err)
	}
	if name != "three" || got != "result from three" {
		t.Errorf("FirstSuccess() = %q, %q", got, name)
	}
	if strings.Join(called, ",") != "one,two,three" {
		t.Errorf("called = %v, want one,two,three", called)
	}
}

func TestFirstSuccessReturnsLastError(t *testing.T) {
	last := errors.New("last failure")
	providers := []Provider[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) { return 0, errors.New("first failure") }},
		{Name: "b", Run: func(ctx context.Context) (int, error) { return 0, last }},
	}

	_, name, err := FirstSuccess(context.Background(), logger.Nop(), providers)
	if !errors.Is(err, last) {
		t.Errorf("Expected last error, got %v", err)
	}
	if strings.Contains(err.Error(), "first failure") {
		t.Errorf("earlier errors should not be surfaced: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want empty", name)
	}
}

func TestFirstSuccessEmpty(t *testing.T) {
	_, _, err := FirstSuccess[[]byte](context.Background(), logger.Nop(), nil)
	if !errors.Is(err, ErrNoProviders) {
		t.Errorf("Expected ErrNoProviders, got %v", err)
	}
}

func TestFirstSuccessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	providers := []Provider[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) {
			cancel()
			return 0, errors.New("down")
		}},
		{Name: "b", Run: func(ctx context.Context) (int, error) {
			t.Error("provider b should not run after cancel")
			return 1, nil
		}},
	}

	if _, _, err := FirstSuccess(ctx, logger.Nop(), providers); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
