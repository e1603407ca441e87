package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOracle_SnapshotFetchedOnce(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/v1/prices" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]float64{
			"AK-47 | Slate (Field-Tested)": 4.52,
			"Glock-18 | Sand Dune (Field-Tested)": 0.04,
		})
	}))
	defer srv.Close()

	o := NewOracle(srv.URL, "", 5*time.Second, time.Minute)
	ctx := context.Background()

	price, ok, err := o.Price(ctx, "AK-47 | Slate (Field-Tested)")
	if err != nil || !ok || price != 4.52 {
		t.Fatalf("Price = (%v, %v, %v), want (4.52, true, nil)", price, ok, err)
	}

	// Further lookups, hit or miss, come from the memoized snapshot.
	if _, ok, _ := o.Price(ctx, "Glock-18 | Sand Dune (Field-Tested)"); !ok {
		t.Error("expected second item in snapshot")
	}
	if _, ok, _ := o.Price(ctx, "ghost item"); ok {
		t.Error("unexpected quote for unknown item")
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("snapshot fetches = %d, want 1", n)
	}
}

func TestOracle_APIKeyPassed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"item": 1.00})
	}))
	defer srv.Close()

	o := NewOracle(srv.URL, "secret", 5*time.Second, time.Minute)
	if _, ok, err := o.Price(context.Background(), "item"); err != nil || !ok {
		t.Fatalf("Price with key = (%v, %v), want success", ok, err)
	}
}

func TestOracle_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	o := NewOracle(srv.URL, "", 5*time.Second, time.Minute)
	if _, _, err := o.Price(context.Background(), "item"); err == nil {
		t.Fatal("expected error on cold snapshot failure")
	}
}

func newAuthServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Authoritative) {
	t.Helper()
	srv := httptest.NewServer(handler)
	a := NewAuthoritative(srv.URL, 5*time.Second, time.Millisecond, 2)
	return srv, a
}

func TestAuthoritative_QuoteParsesListing(t *testing.T) {
	srv, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("market_hash_name") != "AK-47 | Slate (Field-Tested)" {
			t.Errorf("market_hash_name = %q", r.URL.Query().Get("market_hash_name"))
		}
		json.NewEncoder(w).Encode(priceOverview{Success: true, LowestPrice: "$4.52"})
	})
	defer srv.Close()

	price, ok, err := a.Quote(context.Background(), "AK-47 | Slate (Field-Tested)")
	if err != nil || !ok || price != 4.52 {
		t.Fatalf("Quote = (%v, %v, %v), want (4.52, true, nil)", price, ok, err)
	}
}

func TestAuthoritative_MedianFallback(t *testing.T) {
	srv, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(priceOverview{Success: true, MedianPrice: "$1.30"})
	})
	defer srv.Close()

	price, ok, _ := a.Quote(context.Background(), "item")
	if !ok || price != 1.30 {
		t.Errorf("Quote = (%v, %v), want median 1.30", price, ok)
	}
}

func TestAuthoritative_NoListingIsNotAnError(t *testing.T) {
	srv, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(priceOverview{Success: false})
	})
	defer srv.Close()

	price, ok, err := a.Quote(context.Background(), "item")
	if err != nil || ok || price != 0 {
		t.Errorf("Quote = (%v, %v, %v), want (0, false, nil)", price, ok, err)
	}
}

func TestAuthoritative_RetriesThrottling(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(priceOverview{Success: true, LowestPrice: "$0.50"})
	}))
	defer srv.Close()

	a := NewAuthoritative(srv.URL, 5*time.Second, time.Millisecond, 2)
	a.retryBase = time.Millisecond // keep the test fast

	price, ok, err := a.Quote(context.Background(), "item")
	if err != nil || !ok || price != 0.50 {
		t.Errorf("Quote = (%v, %v, %v), want (0.50, true, nil)", price, ok, err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
}

func TestAuthoritative_ExhaustedRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewAuthoritative(srv.URL, 5*time.Second, time.Millisecond, 0)
	price, ok, err := a.Quote(context.Background(), "item")
	if err != nil || ok || price != 0 {
		t.Errorf("Quote = (%v, %v, %v), want (0, false, nil) after exhaustion", price, ok, err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("requests = %d, want 1 with zero retries", n)
	}
}

func TestAuthoritative_CancelledContext(t *testing.T) {
	srv, a := newAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(priceOverview{Success: true, LowestPrice: "$1.00"})
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := a.Quote(ctx, "item"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$4.52", 4.52, true},
		{"$0.03", 0.03, true},
		{"1,234.56 USD", 1234.56, true},
		{" $12.00 ", 12.00, true},
		{"", 0, false},
		{"free", 0, false},
	}
	for _, c := range cases {
		got, err := ParsePrice(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParsePrice(%q) = (%v, %v), want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParsePrice(%q) succeeded, want error", c.in)
		}
	}
}
