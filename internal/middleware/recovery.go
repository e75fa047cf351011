package middleware

import (
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panicking handler into a 500. When the client has
// already gone away nothing is written back.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger := requestLogger(c)
			if err, ok := rec.(error); ok && brokenConnection(err) {
				logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Client connection lost")
				c.Abort()
				return
			}

			logger.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("client_ip", c.ClientIP()).
				Msg("Request panic recovered")

			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, http.StatusInternalServerError, "internal server error"))
		}()
		c.Next()
	}
}

func brokenConnection(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr.Err, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}
