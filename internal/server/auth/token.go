package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts the bearer credential from an incoming request.
// The Authorization header is the primary channel; websocket upgrades fall
// back to the token query parameter because browsers cannot attach custom
// headers to the handshake. Returns "" when no credential is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := stripBearer(h); ok {
			return t
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func stripBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):], true
	}
	return "", false
}
