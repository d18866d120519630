package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

type stubConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
	closed bool
}

func (s *stubConn) TrySend(f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send failed")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *stubConn) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *stubConn) received() []core.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

func newTestEntry(r *Registry, n int) (*Entry, *stubConn) {
	conn := &stubConn{}
	user := domain.User{ID: domain.UserID(fmt.Sprintf("u%d", n)), Username: fmt.Sprintf("user%d", n)}
	return r.Register(core.ConnID(fmt.Sprintf("c%d", n)), user, conn), conn
}

func TestRegisterStartsWithNoRooms(t *testing.T) {
	r := NewRegistry()
	e, _ := newTestEntry(r, 1)

	require.Empty(t, r.Rooms(e))
	require.Equal(t, 1, r.Count())
	require.Empty(t, r.MembersOf("r1"))
}

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	e, _ := newTestEntry(r, 1)

	r.Join(e, "r1")
	r.Join(e, "r1")

	require.Equal(t, []domain.RoomID{"r1"}, r.Rooms(e))
	require.Len(t, r.MembersOf("r1"), 1)
}

func TestLeaveUnknownRoomIsNoOp(t *testing.T) {
	r := NewRegistry()
	e, _ := newTestEntry(r, 1)

	r.Join(e, "r1")
	r.Leave(e, "r2")

	require.Equal(t, []domain.RoomID{"r1"}, r.Rooms(e))
}

func TestJoinLeaveReplay(t *testing.T) {
	r := NewRegistry()
	e, _ := newTestEntry(r, 1)

	r.Join(e, "r1")
	r.Join(e, "r2")
	r.Leave(e, "r1")
	r.Join(e, "r2")
	r.Leave(e, "r3")
	r.Join(e, "r1")

	rooms := r.Rooms(e)
	require.ElementsMatch(t, []domain.RoomID{"r1", "r2"}, rooms)
}

func TestMembersOfIsLiveSnapshot(t *testing.T) {
	r := NewRegistry()
	a, _ := newTestEntry(r, 1)
	b, _ := newTestEntry(r, 2)

	r.Join(a, "r1")
	require.Len(t, r.MembersOf("r1"), 1)

	r.Join(b, "r1")
	require.Len(t, r.MembersOf("r1"), 2)

	r.Leave(a, "r1")
	members := r.MembersOf("r1")
	require.Len(t, members, 1)
	require.Equal(t, b.ID(), members[0].ID())
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	r := NewRegistry()
	e, _ := newTestEntry(r, 1)

	r.Join(e, "r1")
	r.Join(e, "r2")
	r.Unregister(e)

	require.Empty(t, r.MembersOf("r1"))
	require.Empty(t, r.MembersOf("r2"))
	require.Equal(t, 0, r.Count())
}

func TestUnregisterConcurrentWithMembersOf(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 50; i++ {
		e, _ := newTestEntry(r, i)
		r.Join(e, "r1")
	}

	var wg sync.WaitGroup
	for _, e := range r.MembersOf("r1") {
		wg.Add(1)
		go func(e *Entry) {
			defer wg.Done()
			r.Unregister(e)
		}(e)
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.MembersOf("r1")
		}()
	}
	wg.Wait()

	require.Empty(t, r.MembersOf("r1"))
}
