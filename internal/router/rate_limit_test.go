package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestRateLimitMiddlewareBlocksAfterLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rule := RateLimitRule{Prefix: "tt:rate:admin_login", WindowSeconds: 60, MaxRequests: 2, BlockSeconds: 120}
	r := gin.New()
	r.Use(RateLimitMiddleware(client, rule, KeyByIP))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})
	call := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.8:4000"
		r.ServeHTTP(w, req)
		return decodeStatusCode(t, w)
	}

	for i := 0; i < 2; i++ {
		if code := call(); code != 0 {
			t.Fatalf("request %d want 0 got %d", i+1, code)
		}
	}
	if code := call(); code != 429 {
		t.Fatalf("over limit want 429 got %d", code)
	}
	if !mr.Exists("ratelimit:block:tt:rate:admin_login:10.0.0.8") {
		t.Fatalf("block key should be set")
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.8:4000"
	r.ServeHTTP(w, req)
	if code := decodeStatusCode(t, w); code != 429 {
		t.Fatalf("blocked request want 429 got %d", code)
	}
	if w.Header().Get("Retry-After") != "120" {
		t.Fatalf("retry-after want 120 got %q", w.Header().Get("Retry-After"))
	}

	mr.FastForward(121 * time.Second)
	if code := call(); code != 0 {
		t.Fatalf("request after block expiry want 0 got %d", code)
	}
}
