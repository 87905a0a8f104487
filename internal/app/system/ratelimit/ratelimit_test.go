package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_WithinLimit(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("request over the limit should be denied")
	}
	// Other keys are independent.
	if !l.Allow("10.0.0.2") {
		t.Error("different key should be allowed")
	}
}

func TestAllow_WindowExpires(t *testing.T) {
	current := time.Now()
	l := New(1, time.Minute)
	l.now = func() time.Time { return current }

	if !l.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k") {
		t.Fatal("second request in window should be denied")
	}

	current = current.Add(2 * time.Minute)
	if !l.Allow("k") {
		t.Error("request after window expiry should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:4321"
	if got := ClientIP(r); got != "192.0.2.10" {
		t.Errorf("ClientIP: got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.1")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Errorf("ClientIP with XFF: got %q", got)
	}
}
