package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// deadlineWriter drops handler writes that arrive after the timeout
// response has already gone to the client.
type deadlineWriter struct {
	gin.ResponseWriter
	mu       sync.Mutex
	timedOut bool
	wrote    bool
}

func (w *deadlineWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return
	}
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *deadlineWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(b), nil
	}
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *deadlineWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(s), nil
	}
	w.wrote = true
	return w.ResponseWriter.WriteString(s)
}

// markTimedOut seals the writer against the still-running handler and
// reports whether the timeout response may still be written.
func (w *deadlineWriter) markTimedOut() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timedOut = true
	return !w.wrote
}

// Timeout bounds each request with a deadline
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		w := &deadlineWriter{ResponseWriter: c.Writer}
		c.Writer = w

		done := make(chan struct{})
		go func() {
			c.Next()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded && w.markTimedOut() {
				w.ResponseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.ResponseWriter.WriteHeader(http.StatusGatewayTimeout)
				w.ResponseWriter.Write([]byte(`{"status":"error","message":"request timeout"}`))
			}
		}
	}
}
