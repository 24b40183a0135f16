package core

// SessionID identifies one live websocket connection. A reconnect always
// gets a fresh SessionID, even for the same username.
type SessionID string
