package graphql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetguard360/busbooking/internal/session"
)

// recordedPolicy retries immediately and records the delay it was asked to
// wait between attempts.
func recordedPolicy(delays *[]time.Duration) RetryPolicy {
	policy := DefaultRetryPolicy()
	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return policy
}

func TestExecuteSucceedsAfterTwoFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{Endpoint: server.URL, Retry: recordedPolicy(&delays)})

	data, err := client.Execute(context.Background(), SearchTrips, nil, nil)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("data = %s, want {\"ok\":true}", data)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Errorf("backoff delays = %v, want %v", delays, want)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{Endpoint: server.URL, Retry: recordedPolicy(&delays)})

	_, err := client.Execute(context.Background(), ListReservations, map[string]any{"userId": "7"}, nil)
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if queryErr.Attempts != 3 {
		t.Errorf("QueryError.Attempts = %d, want 3", queryErr.Attempts)
	}
	if !strings.Contains(queryErr.Message, "503") {
		t.Errorf("QueryError.Message = %q, want HTTP status detail", queryErr.Message)
	}
	if queryErr.Operation != "reservas" {
		t.Errorf("QueryError.Operation = %q, want reservas", queryErr.Operation)
	}
}

func TestExecutePrefersServiceErrorMessage(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		// Service-reported errors are retryable failures too, and their
		// message wins over the transport detail.
		w.Write([]byte(`{"errors":[{"message":"viaje no encontrado"}]}`))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{Endpoint: server.URL, Retry: recordedPolicy(&delays)})

	_, err := client.Execute(context.Background(), SearchTrips, nil, nil)
	var queryErr *QueryError
	if !errors.As(err, &queryErr) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if queryErr.Message != "viaje no encontrado" {
		t.Errorf("QueryError.Message = %q, want service message", queryErr.Message)
	}
}

func TestExecuteErrorListOnSuccessStatusIsRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Write([]byte(`{"errors":[{"message":"backend busy"}]}`))
			return
		}
		w.Write([]byte(`{"data":{"n":1}}`))
	}))
	defer server.Close()

	var delays []time.Duration
	client := NewClient(Config{Endpoint: server.URL, Retry: recordedPolicy(&delays)})

	if _, err := client.Execute(context.Background(), SearchTrips, nil, nil); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestExecuteAttachesBearerTokenOnAuthOperations(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL})
	sess := session.Session{Token: "tok-123", Username: "ana"}

	if _, err := client.Execute(context.Background(), ListReservations, nil, &sess); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if authHeader != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", authHeader)
	}

	authHeader = ""
	if _, err := client.Execute(context.Background(), SearchTrips, nil, &sess); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if authHeader != "" {
		t.Errorf("search path sent Authorization = %q, want none", authHeader)
	}
}

func TestExecuteStopsWhenContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	policy := DefaultRetryPolicy()
	policy.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}
	client := NewClient(Config{Endpoint: server.URL, Retry: policy})

	_, err := client.Execute(ctx, SearchTrips, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
