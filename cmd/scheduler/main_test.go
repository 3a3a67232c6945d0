package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthServer(t *testing.T) {
	srv := newHealthServer("0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "TrendFarm Scheduler" {
		t.Errorf("root: %q", rec.Body.String())
	}
}
