package middleware

import (
	"net/http"
	"time"

	"github.com/zakareajob-cpu/zak-crm/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func internalError(c *gin.Context) *apierror.APIError {
	e := apierror.New("internal server error")
	e.RequestID = c.GetString(RequestIDKey)
	return e
}

// ErrorHandler turns errors attached with c.Error into a generic 500 when
// the handler has not written a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, internalError(c))
		}
	}
}

// Recovery converts panics into 500 responses without leaking the panic value.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, internalError(c))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx responses log at error level and
// 4xx at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("client_ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
