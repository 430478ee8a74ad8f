package router

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gaberosenblat15-web/clawdbot-dashboard/internal/pkg/stacktrace"
)

func middlewareRecoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			//nolint:err113,errorlint // sentinel must be re-raised untouched
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			if frames := stacktrace.Internal(0); len(frames) > 0 {
				slog.ErrorContext(r.Context(), "panic while serving request", "path", r.URL.Path, "because", rvr, "stack", frames)
			} else {
				slog.ErrorContext(r.Context(), "panic while serving request", "path", r.URL.Path, "because", rvr, "stack", string(debug.Stack()))
			}

			writeJSON(w, errorResponse{Error: msgInternalServerError}, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
