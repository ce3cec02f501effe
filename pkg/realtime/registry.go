package realtime

import (
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Session is one live authenticated connection. A user may own several at
// once (multi-device). The send func hands raw frames to the transport layer
// for session-scoped events such as offline replay.
type Session struct {
	ID          string
	UserID      string
	ConnectedAt time.Time

	send func(raw []byte)

	mu    sync.Mutex
	rooms map[string]struct{}
}

func (s *Session) Send(raw []byte) {
	if s.send != nil {
		s.send(raw)
	}
}

func (s *Session) Rooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.rooms))
	for r := range s.rooms {
		out = append(out, r)
	}
	return out
}

func (s *Session) inRoom(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[conversationID]
	return ok
}

type userSessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

type roomIndex struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// Registry is the in-memory "who to reach right now" index: sessions by id,
// by user and by joined room. It is a cache over live connections only and is
// always safe to rebuild from zero; durable state never lives here.
//
// All maps are cmap-sharded, so connection handlers and the background
// sweepers never contend on a single lock.
type Registry struct {
	sessions cmap.ConcurrentMap[string, *Session]
	users    cmap.ConcurrentMap[string, *userSessions]
	rooms    cmap.ConcurrentMap[string, *roomIndex]
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: cmap.New[*Session](),
		users:    cmap.New[*userSessions](),
		rooms:    cmap.New[*roomIndex](),
	}
}

// Register binds a connection to its user. Returns the session and whether it
// is the user's first live session (the "came online" edge).
func (r *Registry) Register(sessionID, userID string, send func(raw []byte)) (*Session, bool) {
	s := &Session{
		ID:          sessionID,
		UserID:      userID,
		ConnectedAt: time.Now(),
		send:        send,
		rooms:       make(map[string]struct{}),
	}
	r.sessions.Set(sessionID, s)

	us := r.users.Upsert(userID, nil, func(exist bool, cur, _ *userSessions) *userSessions {
		if !exist {
			cur = &userSessions{sessions: make(map[string]*Session)}
		}
		return cur
	})

	us.mu.Lock()
	first := len(us.sessions) == 0
	us.sessions[sessionID] = s
	us.mu.Unlock()

	return s, first
}

// Unregister tears down a session on transport close. It removes every room
// membership and reports the rooms left plus whether this was the user's last
// session (the "went offline" edge).
func (r *Registry) Unregister(sessionID string) (rooms []string, last bool) {
	s, ok := r.sessions.Pop(sessionID)
	if !ok {
		return nil, false
	}

	rooms = s.Rooms()
	for _, conversationID := range rooms {
		r.leaveRoom(s, conversationID)
	}

	if us, ok := r.users.Get(s.UserID); ok {
		us.mu.Lock()
		delete(us.sessions, sessionID)
		last = len(us.sessions) == 0
		us.mu.Unlock()
		if last {
			r.users.RemoveCb(s.UserID, func(_ string, cur *userSessions, exists bool) bool {
				if !exists {
					return false
				}
				cur.mu.Lock()
				defer cur.mu.Unlock()
				return len(cur.sessions) == 0
			})
		}
	}

	return rooms, last
}

func (r *Registry) Get(sessionID string) (*Session, bool) {
	return r.sessions.Get(sessionID)
}

// JoinRoom subscribes a session to a conversation room. Authorization is the
// caller's job; the registry only tracks membership.
func (r *Registry) JoinRoom(sessionID, conversationID string) (*Session, bool) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	s.rooms[conversationID] = struct{}{}
	s.mu.Unlock()

	room := r.rooms.Upsert(conversationID, nil, func(exist bool, cur, _ *roomIndex) *roomIndex {
		if !exist {
			cur = &roomIndex{sessions: make(map[string]*Session)}
		}
		return cur
	})
	room.mu.Lock()
	room.sessions[sessionID] = s
	room.mu.Unlock()

	return s, true
}

func (r *Registry) LeaveRoom(sessionID, conversationID string) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.rooms, conversationID)
	s.mu.Unlock()
	r.leaveRoom(s, conversationID)
}

func (r *Registry) leaveRoom(s *Session, conversationID string) {
	room, ok := r.rooms.Get(conversationID)
	if !ok {
		return
	}
	room.mu.Lock()
	delete(room.sessions, s.ID)
	empty := len(room.sessions) == 0
	room.mu.Unlock()
	if empty {
		r.rooms.RemoveCb(conversationID, func(_ string, cur *roomIndex, exists bool) bool {
			if !exists {
				return false
			}
			cur.mu.Lock()
			defer cur.mu.Unlock()
			return len(cur.sessions) == 0
		})
	}
}

func (r *Registry) SessionsFor(userID string) []*Session {
	us, ok := r.users.Get(userID)
	if !ok {
		return nil
	}
	us.mu.Lock()
	defer us.mu.Unlock()
	out := make([]*Session, 0, len(us.sessions))
	for _, s := range us.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) SessionsInRoom(conversationID string) []*Session {
	room, ok := r.rooms.Get(conversationID)
	if !ok {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	out := make([]*Session, 0, len(room.sessions))
	for _, s := range room.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) IsUserOnline(userID string) bool {
	us, ok := r.users.Get(userID)
	if !ok {
		return false
	}
	us.mu.Lock()
	defer us.mu.Unlock()
	return len(us.sessions) > 0
}

func (r *Registry) SessionCount() int {
	return r.sessions.Count()
}
