package domain

// RoomID is an opaque identifier. The relay never checks it against any
// store; a room exists exactly while at least one connection has joined it.
type RoomID string
