package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHTMX(t *testing.T) {
	r := httptest.NewRequest("GET", "/app", nil)
	assert.False(t, IsHTMX(r))
	r.Header.Set("HX-Request", "TRUE")
	assert.True(t, IsHTMX(r))
}

func TestCurrentPath(t *testing.T) {
	r := httptest.NewRequest("GET", "/app/fragment", nil)
	assert.Equal(t, "/app/fragment", currentPath(r))

	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Hx-Current-Url", "https://gatekeeper.example.com/app?tab=1")
	assert.Equal(t, "/app", currentPath(r))

	r.Header.Set("Hx-Current-Url", "")
	assert.Equal(t, "/app/fragment", currentPath(r))
}
