package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/buses", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestEnableCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	open := EnableCORS(next, []string{"*"})
	w := preflight(open, "http://10.0.2.2:3000")
	assert.Equal(t, "http://10.0.2.2:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	strict := EnableCORS(next, []string{"https://ops.example.com"})
	assert.Empty(t, preflight(strict, "https://evil.example.com").Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "https://ops.example.com", preflight(strict, "https://ops.example.com").Header().Get("Access-Control-Allow-Origin"))
}
