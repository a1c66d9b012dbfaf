// File: /middleware/middleware.go
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"vanlife-api/repositories"
)

// ErrorHandler logs errors attached with c.Error and answers with the
// generic server error when the handler wrote nothing.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.WithError(e.Err).
				WithField("method", c.Request.Method).
				WithField("path", c.Request.URL.Path).
				Error("request error")
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message":    "Server Error",
				"statusText": "An unexpected error occurred",
			})
		}
	}
}

// ValidateJSON rejects non-empty bodies that are not JSON, except on
// upload and back-office form endpoints.
func ValidateJSON() gin.HandlerFunc {
	skipPaths := []string{
		"/uploadAvatar",
		"/uploadVanImage",
		"/authorize",
	}

	return func(c *gin.Context) {
		for _, path := range skipPaths {
			if c.Request.URL.Path == path {
				c.Next()
				return
			}
		}

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		contentType := c.GetHeader("Content-Type")
		if !strings.Contains(contentType, "application/json") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message":    "Invalid content type",
				"statusText": "Content-Type must be application/json",
			})
			return
		}

		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"user_agent": c.Request.UserAgent(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// SecurityHeaders middleware adds security headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// StaticCache lets browsers keep files under prefix for a week.
func StaticCache(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Header("Cache-Control", "public, max-age=604800")
		}
		c.Next()
	}
}

const ContextPage = "page"

// PaginationDefaults stores the requested page in the context, with the
// limit capped at repositories.MaxPageLimit.
func PaginationDefaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		c.Set(ContextPage, repositories.NewPage(page, limit))
		c.Next()
	}
}

// PageFrom returns the page set by PaginationDefaults.
func PageFrom(c *gin.Context) repositories.Page {
	if v, ok := c.Get(ContextPage); ok {
		if p, ok := v.(repositories.Page); ok {
			return p
		}
	}
	return repositories.NewPage(1, 0)
}
