package auth

import (
	"flockr/domain"
	"net/http"
	"strings"
)

// TokenFromRequest finds the session token of an HTTP request. The
// Authorization header wins; otherwise the token query parameter is used,
// which is where every GET route carries it.
func TokenFromRequest(r *http.Request) domain.Token {
	if header := r.Header.Get("Authorization"); header != "" {
		// Expecting the standard "Bearer <token>" format
		return domain.Token(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
	}
	return domain.Token(r.URL.Query().Get("token"))
}
