package exchangerate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"tandem/internal/domain/currency"
)

func TestGetRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("from = %q, want USD", got)
		}
		if got := r.URL.Query().Get("to"); got != "BRL" {
			t.Errorf("to = %q, want BRL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2024-03-15","rates":{"BRL":5.0412}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	rate, err := client.GetRate(context.Background(), "USD", "BRL")
	if err != nil {
		t.Fatalf("GetRate: %v", err)
	}
	if !rate.Value.Equal(decimal.RequireFromString("5.0412")) {
		t.Errorf("rate = %s, want 5.0412", rate.Value)
	}
	if rate.Source != currency.SourceLive {
		t.Errorf("source = %s, want live", rate.Source)
	}
	if rate.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestGetRateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	if _, err := client.GetRate(context.Background(), "USD", "BRL"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestGetRateMissingPair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	if _, err := client.GetRate(context.Background(), "USD", "BRL"); err == nil {
		t.Fatal("expected error when pair absent")
	}
}

func TestGetRateRejectsNonPositive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"BRL":0}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	if _, err := client.GetRate(context.Background(), "USD", "BRL"); err == nil {
		t.Fatal("expected error on zero rate")
	}
}
