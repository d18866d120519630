package core

// Frame is a raw binary payload (an encoded JSON frame).
type Frame []byte

// ConnID identifies one live transport connection.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
