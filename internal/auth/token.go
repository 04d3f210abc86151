package auth

import (
	"net/http"
	"strings"
)

const AccessTokenCookie = "access_token"

// ExtractAccessToken reads the bearer token from the access_token cookie or,
// failing that, from the Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
