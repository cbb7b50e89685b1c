package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const SubjectKey contextKey = "subject"

// Middleware checks bearer tokens. When required is false, requests
// without credentials pass through anonymously; a bad token is still
// rejected. Websocket clients may pass the token as ?token=.
func (s *Service) Middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFrom(r)
			if !ok {
				if required {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			subject, err := s.ValidateToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// tokenFrom returns the presented token. ok is false when no credentials
// were sent at all; an empty token means a malformed header.
func tokenFrom(r *http.Request) (token string, ok bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", true
		}
		return parts[1], true
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	return "", false
}

func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectKey).(string)
	return subject
}
