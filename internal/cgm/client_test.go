package cgm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLatest(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	// Dropping 0.5 mmol every 5 minutes: 9.0 -> 8.5 -> 8.0.
	body := fmt.Sprintf(`[
		{"date": %d, "sgv": 144.1456},
		{"date": %d, "sgv": 153.1547},
		{"date": %d, "sgv": 162.1638}
	]`, now.UnixMilli(), now.Add(-5*time.Minute).UnixMilli(), now.Add(-10*time.Minute).UnixMilli())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/entries/sgv.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "secret" {
			t.Errorf("missing token, got query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	reading, err := NewClient(srv.URL, "secret", nil).Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(reading.Mmol-8.0) > 0.01 {
		t.Errorf("mmol = %v, want ~8.0", reading.Mmol)
	}
	if reading.TrendSlope == nil {
		t.Fatal("expected a trend slope")
	}
	if math.Abs(*reading.TrendSlope - -1.0) > 0.01 {
		t.Errorf("slope = %v, want ~-1.0", *reading.TrendSlope)
	}
}

func TestLatest_SingleEntryNoSlope(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"date": %d, "sgv": 108.1092}]`, now.UnixMilli())
	}))
	defer srv.Close()

	reading, err := NewClient(srv.URL, "", nil).Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if reading.TrendSlope != nil {
		t.Errorf("expected nil slope, got %v", *reading.TrendSlope)
	}
	if math.Abs(reading.Mmol-6.0) > 0.01 {
		t.Errorf("mmol = %v, want ~6.0", reading.Mmol)
	}
}

func TestLatest_EmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, "", nil).Latest(context.Background()); err == nil {
		t.Fatal("expected an error on an empty feed")
	}
}
