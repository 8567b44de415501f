package ws

import "time"

// ConnInfo identifies one websocket viewer for logs and ws_events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
