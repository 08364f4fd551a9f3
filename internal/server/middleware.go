package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gochi-demo/user-rest-api/internal/handlers"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// RequestID tags the request with the caller's X-Request-ID or a fresh
// UUID and attaches a logger carrying it to the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), ctxKey{}, id)
		l := log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
	})
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// SecurityHeaders sets the usual hardening headers on every response.
func SecurityHeaders() func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ContentSecurityPolicy:   "default-src 'self'; base-uri 'self'; frame-ancestors 'self'; object-src 'none'",
		ReferrerPolicy:          "no-referrer",
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		ForceSTSHeader:          true,
	})

	extra := []func(http.Handler) http.Handler{
		middleware.SetHeader("X-DNS-Prefetch-Control", "off"),
		middleware.SetHeader("X-Download-Options", "noopen"),
		middleware.SetHeader("X-Permitted-Cross-Domain-Policies", "none"),
		middleware.SetHeader("X-XSS-Protection", "0"),
		middleware.SetHeader("Cross-Origin-Opener-Policy", "same-origin"),
		middleware.SetHeader("Cross-Origin-Resource-Policy", "same-origin"),
		middleware.SetHeader("Origin-Agent-Cluster", "?1"),
	}

	return func(next http.Handler) http.Handler {
		return sec.Handler(chi.Chain(extra...).Handler(next))
	}
}

// RequestLogger writes one line per request. It is only installed in
// development.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Ctx(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// Recoverer turns a panicking handler into a 500 JSON response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			log.Ctx(r.Context()).Error().
				Interface("panic", rvr).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("handler panicked")

			if r.Header.Get("Connection") != "Upgrade" {
				handlers.WriteError(w, http.StatusInternalServerError, handlers.ErrServerError, "Internal Server Error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// NotFound answers every unmatched path or method.
func NotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "Route not found - "+r.URL.Path)
}
