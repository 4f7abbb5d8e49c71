// Package requestid copies chi's request ID into requestcontext so services
// can read it without importing chi.
package requestid

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"i9score/pkg/requestcontext"
)

// Header echoes the request ID back to the caller.
const Header = "X-Request-Id"

// Middleware must run after chi's middleware.RequestID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set(Header, reqID)
		}
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
