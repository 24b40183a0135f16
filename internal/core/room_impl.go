package core

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dkeye/PrivChat/internal/domain"
)

// Room is the membership state of one named room.
// All accessors assume the caller holds the room lock, which is the case
// inside every callback the Directory hands a *Room to.
type Room struct {
	mu      sync.Mutex
	room    domain.Room
	byUser  map[string]*memberSession
	bySID   map[SessionID]string
	pending map[SessionID]string
	closed  atomic.Bool
}

func newRoom(room domain.Room) *Room {
	return &Room{
		room:    room,
		byUser:  make(map[string]*memberSession),
		bySID:   make(map[SessionID]string),
		pending: make(map[SessionID]string),
	}
}

func (r *Room) Name() domain.RoomName { return r.room.Name }

func (r *Room) MemberCount() int { return len(r.byUser) }

func (r *Room) PendingCount() int { return len(r.pending) }

// Usernames returns the member list in stable order.
func (r *Room) Usernames() []string {
	out := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// UsernamesExcept is Usernames without the given one.
func (r *Room) UsernamesExcept(username string) []string {
	out := make([]string, 0, len(r.byUser))
	for _, u := range r.Usernames() {
		if u != username {
			out = append(out, u)
		}
	}
	return out
}

// Sessions returns the sessions of all members.
func (r *Room) Sessions() []SessionID {
	out := make([]SessionID, 0, len(r.bySID))
	for sid := range r.bySID {
		out = append(out, sid)
	}
	return out
}

func (r *Room) UsernameOf(sid SessionID) (string, bool) {
	u, ok := r.bySID[sid]
	return u, ok
}

func (r *Room) SessionOf(username string) (SessionID, bool) {
	ms, ok := r.byUser[username]
	if !ok {
		return "", false
	}
	return ms.SID(), true
}

// Owner returns the session holding the owner role.
func (r *Room) Owner() (SessionID, bool) {
	for _, ms := range r.byUser {
		if ms.Meta().IsOwner() {
			return ms.SID(), true
		}
	}
	return "", false
}

func (r *Room) IsOwner(sid SessionID) bool {
	u, ok := r.bySID[sid]
	if !ok {
		return false
	}
	return r.byUser[u].Meta().IsOwner()
}

// Status reports the admission state of a username.
func (r *Room) Status(username string) domain.MembershipStatus {
	if ms, ok := r.byUser[username]; ok {
		return ms.Meta().Status()
	}
	for _, u := range r.pending {
		if u == username {
			return domain.StatusPending
		}
	}
	return domain.StatusUnjoined
}

func (r *Room) info() RoomInfo {
	return RoomInfo{Name: r.room.Name, MemberCount: r.MemberCount(), PendingCount: r.PendingCount()}
}

func (r *Room) addMember(sid SessionID, meta *domain.Member) {
	r.byUser[meta.Username] = newMemberSession(meta, sid)
	r.bySID[sid] = meta.Username
}

// bind puts sid in charge of username. If the username already has a live
// session, that session is unbound and returned.
func (r *Room) bind(sid SessionID, username string, role domain.Role) (SessionID, *domain.Member) {
	if ms, ok := r.byUser[username]; ok {
		old := ms.rebind(sid)
		delete(r.bySID, old)
		r.bySID[sid] = username
		return old, ms.Meta()
	}
	meta := domain.NewMember(username, role)
	r.addMember(sid, meta)
	return "", meta
}

// remove drops sid from members and pending. It reports the member meta when
// sid was the live session of a member.
func (r *Room) remove(sid SessionID) (meta *domain.Member, wasPending bool) {
	if _, ok := r.pending[sid]; ok {
		delete(r.pending, sid)
		wasPending = true
	}
	u, ok := r.bySID[sid]
	if !ok {
		return nil, wasPending
	}
	delete(r.bySID, sid)
	ms := r.byUser[u]
	delete(r.byUser, u)
	return ms.Meta(), wasPending
}
