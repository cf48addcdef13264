package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lookouthq/lookout/api/pkg/system"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an id for log correlation. A
// caller-supplied id is honored so ids stay stable across service hops;
// the id is echoed on the response either way.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = system.GenerateRequestID()
		}
		w.Header().Set(requestIDHeader, id)

		logger := log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}
