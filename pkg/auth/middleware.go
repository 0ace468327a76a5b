package auth

import "net/http"

// Middleware wraps a handler with HTTP basic authentication against
// the given credentials. A nil credentials pointer disables the check.
func Middleware(creds *Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if creds == nil {
				next.ServeHTTP(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok || creds.Verify(username, password) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="spinodb"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
