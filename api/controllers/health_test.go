package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shoplens/shoplens-backend/pkg/config"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

func healthTestConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(healthTestConfig())(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if env := resp.Header().Get("X-ShopLens-Env"); env != "test" {
		t.Fatalf("unexpected env header %q", env)
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	resp := httptest.NewRecorder()
	handler := HealthReady(healthTestConfig(), testLogger(), &fakePinger{}, &fakePinger{})
	handler(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestHealthReadyDatastoreDown(t *testing.T) {
	resp := httptest.NewRecorder()
	handler := HealthReady(healthTestConfig(), testLogger(), &fakePinger{}, &fakePinger{err: errors.New("redis down")})
	handler(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code == http.StatusOK {
		t.Fatal("expected failure status when a datastore is down")
	}
}
