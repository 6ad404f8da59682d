package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"buddhist-lent/pledgeboard/internal/auth"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/logging"
)

// Recoverer turns a handler panic into a logged 500 with the usual envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.Error("Handler panicked",
				"request_id", auth.GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			common.RespondError(w, start, nil, constants.MsgInternalError, http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
