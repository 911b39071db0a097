// Package realtime keeps the single server-push WebSocket of a session.
//
// A Channel moves Closed -> Connecting -> Open -> Closed. There is no send
// path, no heartbeat and no reconnection: once the transport closes the
// channel stays Closed until a new session connects a new one. Frames are
// JSON {type, body} documents dispatched one at a time, on the read
// goroutine, to at most one handler per type.
package realtime
