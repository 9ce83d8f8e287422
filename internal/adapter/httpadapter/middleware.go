package httpadapter

import (
	"net/http"
	"time"

	"filippo.io/csrf/gorilla"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// withProfile resolves the visitor's profile from the signed cookie, issuing a
// fresh profile when the cookie is missing or does not verify.
func (s *Server) withProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(profileCookie); err == nil {
			cl, err := s.parseToken(c.Value)
			if err == nil {
				id = cl.Subject
			} else {
				s.log.Debug("discarding profile cookie", zap.Error(err))
			}
		}

		if id == "" {
			id = uuid.NewString()
			tok, err := s.issueToken(id)
			if err != nil {
				s.internalError(w, r, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     profileCookie,
				Value:    tok,
				Path:     "/",
				MaxAge:   int(s.ttl / time.Second),
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(withProfileID(r.Context(), id)))
	})
}

// newCSRF rejects cross-origin form posts using Fetch metadata headers.
func newCSRF(key []byte, trusted []string, log *zap.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			log.Warn("CSRF validation failed",
				zap.String("reason", reason),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("origin", r.Header.Get("Origin")),
				zap.String("sec_fetch_site", r.Header.Get("Sec-Fetch-Site")),
			)
			http.Error(w, "Forbidden - CSRF validation failed", http.StatusForbidden)
		})),
	}
	if len(trusted) > 0 {
		opts = append(opts, csrf.TrustedOrigins(trusted))
	}
	return csrf.Protect(key, opts...)
}
