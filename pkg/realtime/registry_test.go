package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOnlineOfflineEdges(t *testing.T) {
	r := NewRegistry()

	_, first := r.Register("s1", "alice", nil)
	assert.True(t, first)

	_, first = r.Register("s2", "alice", nil)
	assert.False(t, first, "second device must not re-fire the online edge")

	assert.True(t, r.IsUserOnline("alice"))
	assert.Equal(t, 2, r.SessionCount())
	assert.Len(t, r.SessionsFor("alice"), 2)

	_, last := r.Unregister("s1")
	assert.False(t, last)
	assert.True(t, r.IsUserOnline("alice"))

	_, last = r.Unregister("s2")
	assert.True(t, last, "closing the final device fires the offline edge")
	assert.False(t, r.IsUserOnline("alice"))
	assert.Equal(t, 0, r.SessionCount())
}

func TestRegistryUnregisterUnknownSession(t *testing.T) {
	r := NewRegistry()
	rooms, last := r.Unregister("ghost")
	assert.Nil(t, rooms)
	assert.False(t, last)
}

func TestRegistryRoomMembership(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", "alice", nil)
	r.Register("s2", "bob", nil)

	_, ok := r.JoinRoom("s1", "conv-1")
	require.True(t, ok)
	_, ok = r.JoinRoom("s2", "conv-1")
	require.True(t, ok)

	assert.Len(t, r.SessionsInRoom("conv-1"), 2)

	r.LeaveRoom("s1", "conv-1")
	members := r.SessionsInRoom("conv-1")
	require.Len(t, members, 1)
	assert.Equal(t, "bob", members[0].UserID)

	_, ok = r.JoinRoom("nope", "conv-1")
	assert.False(t, ok)
}

func TestRegistryUnregisterLeavesRooms(t *testing.T) {
	r := NewRegistry()
	r.Register("s1", "alice", nil)
	r.JoinRoom("s1", "conv-1")
	r.JoinRoom("s1", "conv-2")

	rooms, last := r.Unregister("s1")
	assert.True(t, last)
	assert.ElementsMatch(t, []string{"conv-1", "conv-2"}, rooms)
	assert.Empty(t, r.SessionsInRoom("conv-1"))
	assert.Empty(t, r.SessionsInRoom("conv-2"))
}

func TestSessionSend(t *testing.T) {
	r := NewRegistry()
	var got []byte
	s, _ := r.Register("s1", "alice", func(raw []byte) { got = raw })
	s.Send([]byte("hello"))
	assert.Equal(t, []byte("hello"), got)

	// nil send func must be a no-op, server side towers have no socket
	s2, _ := r.Register("s2", "alice", nil)
	s2.Send([]byte("ignored"))
}

func TestRegistryConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			sid := "sess-" + id + string(rune('0'+n/26))
			r.Register(sid, id, nil)
			r.JoinRoom(sid, "conv-shared")
			r.LeaveRoom(sid, "conv-shared")
			r.Unregister(sid)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.SessionCount())
	assert.Empty(t, r.SessionsInRoom("conv-shared"))
}
