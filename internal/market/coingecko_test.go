package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperr "github.com/ENuel20/SoNa/internal/errors"
	"github.com/ENuel20/SoNa/internal/httpx"
	"github.com/ENuel20/SoNa/internal/retry"
)

func fastClient(srvURL string) *Client {
	c := New(httpx.New(time.Second, 0))
	c.baseURL = srvURL
	c.policy = retry.Policy{MaxAttempts: 1}
	return c
}

func TestPricesParsesQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/simple/price" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("ids") != "solana,sonic-token" || q.Get("vs_currencies") != "usd" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"solana":{"usd":142.35},"sonic-token":{"usd":0.0875}}`))
	}))
	defer srv.Close()

	prices, err := fastClient(srv.URL).Prices(context.Background())
	if err != nil {
		t.Fatalf("Prices failed: %v", err)
	}
	if prices.SolUSD != "142.35" {
		t.Fatalf("sol price = %q", prices.SolUSD)
	}
	if prices.SonicUSD != "0.0875" {
		t.Fatalf("sonic price = %q", prices.SonicUSD)
	}
	if prices.FetchedAt.IsZero() {
		t.Fatal("fetch time not set")
	}
}

func TestPricesServesLastGoodOnFailure(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"solana":{"usd":100},"sonic-token":{"usd":1}}`))
	}))
	defer srv.Close()

	c := fastClient(srv.URL)
	first, err := c.Prices(context.Background())
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	fail.Store(true)
	second, err := c.Prices(context.Background())
	if err != nil {
		t.Fatalf("expected stale fallback, got %v", err)
	}
	if second.SolUSD != first.SolUSD || second.FetchedAt != first.FetchedAt {
		t.Fatalf("fallback quote differs: %+v vs %+v", second, first)
	}
}

func TestPricesFailsWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).Prices(context.Background())
	if !apperr.Is(err, apperr.CodeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
