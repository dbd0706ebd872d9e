package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReadOnlyMiddleware blocks requests that would change state: triggering a
// hydration run or writing settings. Lookup and grading are POSTs but only
// read the store, so they stay open.
func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if isReadOnlySafe(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error: "This server is read-only",
			Code:  "read_only",
		})
	}
}

func isReadOnlySafe(method, path string) bool {
	if method != http.MethodPost || !strings.HasPrefix(path, "/api/subjects/") {
		return false
	}
	return path == "/api/subjects/lookup" || strings.HasSuffix(path, "/grade")
}
