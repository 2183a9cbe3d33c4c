package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ok(context.Context) error { return nil }

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("storage", NewSimpleChecker("storage", ok))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", response.Version)
	}
	if len(response.Checks) != 1 {
		t.Errorf("expected 1 check, got %d", len(response.Checks))
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("catalog", NewSimpleChecker("catalog", func(context.Context) error {
		return errors.New("service unavailable")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
}

func TestReport_StatusAggregation(t *testing.T) {
	fail := func(context.Context) error { return errors.New("down") }

	cases := []struct {
		name     string
		checkers map[string]Checker
		want     Status
	}{
		{name: "no checks", checkers: nil, want: StatusHealthy},
		{name: "all healthy", checkers: map[string]Checker{
			"a": NewSimpleChecker("a", ok),
			"b": NewOptionalChecker("b", ok),
		}, want: StatusHealthy},
		{name: "optional failure", checkers: map[string]Checker{
			"a":     NewSimpleChecker("a", ok),
			"kafka": NewOptionalChecker("kafka", fail),
		}, want: StatusDegraded},
		{name: "required failure wins", checkers: map[string]Checker{
			"kafka":   NewOptionalChecker("kafka", fail),
			"storage": NewSimpleChecker("storage", fail),
		}, want: StatusUnhealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler("dev")
			for name, checker := range tc.checkers {
				handler.RegisterChecker(name, checker)
			}

			report := handler.Report(context.Background())
			if report.Status != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, report.Status)
			}
			if len(report.Checks) != len(tc.checkers) {
				t.Fatalf("expected %d checks, got %d", len(tc.checkers), len(report.Checks))
			}
		})
	}
}

func TestReport_CheckTimeout(t *testing.T) {
	handler := NewHandler("dev")
	handler.timeout = 20 * time.Millisecond
	handler.RegisterChecker("slow", NewSimpleChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	report := handler.Report(context.Background())

	if report.Checks["slow"].Status != StatusUnhealthy {
		t.Fatalf("expected timed out check to be unhealthy, got %+v", report.Checks["slow"])
	}
}

func TestResponse_Names(t *testing.T) {
	r := Response{Checks: map[string]Check{"storage": {}, "catalog": {}, "kafka": {}}}

	names := r.Names()

	if len(names) != 3 || names[0] != "catalog" || names[2] != "storage" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestSimpleChecker(t *testing.T) {
	checker := NewSimpleChecker("test", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	check := checker.Check(context.Background())

	if check.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", check.Status)
	}
	if check.DurationMs < 10 {
		t.Errorf("expected duration >= 10ms, got %dms", check.DurationMs)
	}
}

func TestSimpleChecker_Error(t *testing.T) {
	checker := NewSimpleChecker("test", func(context.Context) error {
		return errors.New("test error")
	})

	check := checker.Check(context.Background())

	if check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
	if check.Message != "test error" {
		t.Errorf("expected message 'test error', got %s", check.Message)
	}
}
