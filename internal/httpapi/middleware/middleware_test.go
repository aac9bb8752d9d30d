package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(nil), Metrics())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	return r
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "abc" || w.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected request id abc, got body=%q header=%q", w.Body.String(), w.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_Generates(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))

	if len(w.Header().Get(RequestIDHeader)) != 26 {
		t.Fatalf("expected generated ULID, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestRecovery_Returns500Envelope(t *testing.T) {
	r := newEngine()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := w.Body.String(); got == "" || got[0] != '{' {
		t.Fatalf("expected json body, got %q", got)
	}
}
