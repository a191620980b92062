package identity

import (
	"net/http"

	"github.com/google/uuid"
)

// HeaderAccountID is set by the authenticating reverse proxy after it has
// verified the caller.
const HeaderAccountID = "X-Account-ID"

// Middleware extracts the verified account ID from the request and stores it
// in the context. Requests without a valid account ID are rejected with 401;
// no handler behind this middleware runs unauthenticated.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := uuid.Parse(r.Header.Get(HeaderAccountID))
		if err != nil || accountID == uuid.Nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
	})
}
