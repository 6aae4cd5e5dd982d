package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutRespondsGatewayTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	release := make(chan struct{})
	r := gin.New()
	r.Use(Timeout(30 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-release
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "request timeout")

	// let the handler finish; its late write must not reach the client
	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, body, rec.Body.String())
}

func TestTimeoutLeavesFastRequestsAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Timeout(time.Second))
	r.GET("/fast", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
