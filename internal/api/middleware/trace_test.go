package middleware

import (
	"Snapfeed/internal/pkg/logger"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(logger.TraceIDKey).(string)
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "upstream id kept", header: "req-7f3a_01", keep: true},
		{name: "missing id generated", header: ""},
		{name: "log injection rejected", header: "abc\" level=ERROR"},
		{name: "oversized rejected", header: strings.Repeat("a", maxTraceIDBytes+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(TraceHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(TraceHeader)
			assert.Equal(t, got, seen)
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.True(t, validTraceID(got))
			}
		})
	}
}
