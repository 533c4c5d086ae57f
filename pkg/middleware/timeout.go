package middleware

import (
	"net/http"
	"time"
)

const timeoutBody = `{"error":"request timeout"}`

// Timeout aborts requests that exceed the given duration. Built on
// http.TimeoutHandler, which keeps the slow handler from writing to the
// response after the deadline reply has gone out.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
