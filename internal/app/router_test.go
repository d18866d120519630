package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcastIncludesSender(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r)

	a, connA := newTestEntry(r, 1)
	b, connB := newTestEntry(r, 2)
	r.Join(a, "r1")
	r.Join(b, "r1")

	rt.Broadcast("r1", map[string]string{"type": "shape"})

	require.Len(t, connA.received(), 1)
	require.Len(t, connB.received(), 1)

	var frame map[string]string
	require.NoError(t, json.Unmarshal(connA.received()[0], &frame))
	require.Equal(t, "shape", frame["type"])
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r)

	a, connA := newTestEntry(r, 1)
	b, connB := newTestEntry(r, 2)
	c, connC := newTestEntry(r, 3)
	r.Join(a, "r1")
	r.Join(b, "r1")
	r.Join(c, "r1")

	rt.BroadcastExcept("r1", a.ID(), map[string]string{"type": "cursor"})

	require.Empty(t, connA.received())
	require.Len(t, connB.received(), 1)
	require.Len(t, connC.received(), 1)
}

func TestBroadcastOnlyReachesRoomMembers(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r)

	a, connA := newTestEntry(r, 1)
	b, connB := newTestEntry(r, 2)
	r.Join(a, "r1")
	r.Join(b, "r2")

	rt.Broadcast("r1", map[string]string{"type": "shape"})

	require.Len(t, connA.received(), 1)
	require.Empty(t, connB.received())
}

func TestFailedSendIsIsolated(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r)

	a, _ := newTestEntry(r, 1)
	b, connB := newTestEntry(r, 2)
	connBroken := &stubConn{fail: true}
	broken := r.Register("c-broken", a.User(), connBroken)

	r.Join(a, "r1")
	r.Join(b, "r1")
	r.Join(broken, "r1")

	rt.Broadcast("r1", map[string]string{"type": "shape"})

	// the broken member drops its frame; everyone else still gets theirs
	require.Len(t, connB.received(), 1)
	require.Empty(t, connBroken.received())
}

func TestBroadcastAfterUnregisterSendsNothing(t *testing.T) {
	r := NewRegistry()
	rt := NewRouter(r)

	a, connA := newTestEntry(r, 1)
	r.Join(a, "r1")
	r.Unregister(a)

	rt.Broadcast("r1", map[string]string{"type": "shape"})

	require.Empty(t, connA.received())
}
