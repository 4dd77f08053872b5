package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Registry state is process-global, so ordering matters: the disabled
// assertions must run before InitRegistry.
func TestRegistryLifecycle(t *testing.T) {
	t.Run("DisabledBeforeInit", func(t *testing.T) {
		assert.False(t, IsEnabled())
		assert.Nil(t, GetRegistry())

		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("EnabledAfterInit", func(t *testing.T) {
		InitRegistry()

		assert.True(t, IsEnabled())
		require.NotNil(t, GetRegistry())

		rec := httptest.NewRecorder()
		Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})

	t.Run("InitIsIdempotent", func(t *testing.T) {
		reg := GetRegistry()
		InitRegistry()
		assert.Same(t, reg, GetRegistry())
	})
}
