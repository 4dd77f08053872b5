package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/veterinaryhq/userd/pkg/store"
)

// healthFake implements store.UserStore; only Healthcheck matters here.
type healthFake struct {
	healthErr error
}

func (f *healthFake) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return nil, store.NewNotFoundError("user")
}

func (f *healthFake) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return nil, store.NewNotFoundError("user")
}

func (f *healthFake) CreateUser(ctx context.Context, user *store.User) error { return nil }

func (f *healthFake) GetProfileByUserID(ctx context.Context, userID string) (*store.Profile, error) {
	return nil, store.NewNotFoundError("profile")
}

func (f *healthFake) Healthcheck(ctx context.Context) error { return f.healthErr }

func (f *healthFake) Close() error { return nil }

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "userd" {
		t.Errorf("Expected service 'userd', got '%s'", data["service"])
	}
}

func TestReadiness_NoStore_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestReadiness_HealthyStore_Returns200(t *testing.T) {
	handler := NewHealthHandler(&healthFake{})
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}
}

func TestReadiness_UnhealthyStore_Returns503(t *testing.T) {
	handler := NewHealthHandler(&healthFake{
		healthErr: store.NewUnavailableError("postgres health check failed", errors.New("connection refused")),
	})
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}
	if resp.Error == "" {
		t.Error("Expected error detail in response")
	}
}

func TestRouter_RootRedirectsToHealth(t *testing.T) {
	router := NewRouter(&healthFake{})
	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/health" {
		t.Errorf("Expected redirect to /health, got %q", loc)
	}
}

func TestRouter_ServesHealthRoutes(t *testing.T) {
	router := NewRouter(&healthFake{})

	for _, path := range []string{"/health", "/health/ready"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("GET %s: expected status %d, got %d", path, http.StatusOK, w.Code)
		}
	}
}
