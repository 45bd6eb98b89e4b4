package session

import (
	"net/http"
	"strings"

	"reports-ui/internal/session"
)

const UsernameHeader = "X-Username"

// Username stores the caller's user name in the request context. The name
// comes from the X-Username header or, failing that, from Basic auth.
// Credentials are not checked here.
func Username() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.TrimSpace(r.Header.Get(UsernameHeader))

			if username == "" {
				if u, _, ok := r.BasicAuth(); ok {
					username = u
				}
			}

			if username != "" {
				r = r.WithContext(session.WithUsername(r.Context(), username))
			}

			next.ServeHTTP(w, r)
		})
	}
}
