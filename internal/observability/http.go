package observability

import (
	"net"
	"net/http"
	"strings"
)

// UserHeader carries the mock-login identity. Browsers cannot set headers on a websocket
// upgrade, so the user_id query parameter is accepted as well.
const UserHeader = "X-User-ID"

// ViewerIDFromRequest returns the claimed mock-login user id, or "" when none was sent.
func ViewerIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(UserHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("user_id"))
}

func RequestIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Request-Id"))
}

// IPFromRequest prefers the first X-Forwarded-For hop over the socket peer.
func IPFromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
