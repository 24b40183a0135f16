package core

import (
	"crypto/subtle"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/domain"
)

// JoinRequest is one join attempt of a session.
type JoinRequest struct {
	Room     domain.RoomName
	Username string
	Token    domain.Token
	SID      SessionID
}

func (req *JoinRequest) validate() error {
	if req.Username == "" || req.Room == "" || req.Token == "" || req.SID == "" {
		return domain.ErrMissingFields
	}
	username, err := domain.ValidateUsername(req.Username)
	if err != nil {
		return err
	}
	req.Username = username
	if err := req.Room.Validate(); err != nil {
		return err
	}
	return req.Token.Validate()
}

// Admission is the outcome of Directory.Join.
type Admission struct {
	Status   domain.MembershipStatus
	Role     domain.Role
	Username string
	// Created is set when the join created the room.
	Created bool
	// Rejoined is set when the session already was the member of record.
	Rejoined bool
	// Replaced is the session unbound by a takeover.
	Replaced SessionID
	// Owner is the session that has to decide a pending request.
	Owner SessionID
}

type Approval struct {
	Username string
	Replaced SessionID
}

// Departure describes what a session left behind in one room.
type Departure struct {
	Username   string
	WasMember  bool
	WasPending bool
	// Closed is set when the room was torn down by this departure.
	Closed bool
	// Remaining lists the member sessions of a closed room.
	Remaining []SessionID
}

// Directory owns every Room. The map lock only guards the name lookup;
// all state changes of a room run under that room's own lock, so rooms never
// contend with each other.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*Room

	idxMu   sync.Mutex
	touched map[SessionID]map[domain.RoomName]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:   make(map[domain.RoomName]*Room),
		touched: make(map[SessionID]map[domain.RoomName]struct{}),
	}
}

// lookup returns the open room locked, or nil.
func (d *Directory) lookup(name domain.RoomName) *Room {
	d.mu.RLock()
	r, ok := d.rooms[name]
	d.mu.RUnlock()
	if !ok {
		return nil
	}
	r.mu.Lock()
	if r.closed.Load() {
		r.mu.Unlock()
		return nil
	}
	return r
}

// acquire returns the named room locked, creating it when absent or closed.
func (d *Directory) acquire(name domain.RoomName, token domain.Token) (*Room, bool) {
	for {
		if r := d.lookup(name); r != nil {
			return r, false
		}
		d.mu.Lock()
		if cur, ok := d.rooms[name]; ok && !cur.closed.Load() {
			// Lost a creation race; never lock a room while holding d.mu.
			d.mu.Unlock()
			continue
		}
		r := newRoom(domain.Room{Name: name, Token: token})
		r.mu.Lock()
		d.rooms[name] = r
		d.mu.Unlock()
		return r, true
	}
}

func (d *Directory) drop(r *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cur, ok := d.rooms[r.Name()]; ok && cur == r {
		delete(d.rooms, r.Name())
	}
}

func (d *Directory) touch(sid SessionID, name domain.RoomName) {
	d.idxMu.Lock()
	defer d.idxMu.Unlock()
	set, ok := d.touched[sid]
	if !ok {
		set = make(map[domain.RoomName]struct{})
		d.touched[sid] = set
	}
	set[name] = struct{}{}
}

func (d *Directory) untouch(sid SessionID, name domain.RoomName) {
	d.idxMu.Lock()
	defer d.idxMu.Unlock()
	if set, ok := d.touched[sid]; ok {
		delete(set, name)
		if len(set) == 0 {
			delete(d.touched, sid)
		}
	}
}

func (d *Directory) forget(sid SessionID) []domain.RoomName {
	d.idxMu.Lock()
	defer d.idxMu.Unlock()
	set := d.touched[sid]
	delete(d.touched, sid)
	out := make([]domain.RoomName, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoomsOf lists the rooms a session is a member of or pending in.
func (d *Directory) RoomsOf(sid SessionID) []domain.RoomName {
	d.idxMu.Lock()
	defer d.idxMu.Unlock()
	out := make([]domain.RoomName, 0, len(d.touched[sid]))
	for name := range d.touched[sid] {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Join runs admission for one attempt. emit is called under the room lock
// with the outcome and is not called when an error is returned.
func (d *Directory) Join(req JoinRequest, emit func(*Room, Admission)) (Admission, error) {
	if err := req.validate(); err != nil {
		return Admission{}, err
	}

	r, created := d.acquire(req.Room, req.Token)
	defer r.mu.Unlock()

	var adm Admission
	switch {
	case created:
		r.addMember(req.SID, domain.NewMember(req.Username, domain.RoleOwner))
		adm = Admission{Status: domain.StatusMember, Role: domain.RoleOwner, Username: req.Username, Created: true}
		log.Info().Str("module", "core.room").Str("room", string(req.Room)).Str("sid", string(req.SID)).Str("user", req.Username).Msg("room created")

	case subtle.ConstantTimeCompare([]byte(r.room.Token), []byte(req.Token)) != 1:
		log.Info().Str("module", "core.room").Str("room", string(req.Room)).Str("sid", string(req.SID)).Msg("join with invalid token")
		return Admission{}, domain.ErrInvalidToken

	default:
		if u, ok := r.bySID[req.SID]; ok {
			if u != req.Username {
				return Admission{}, domain.ErrAlreadyMember
			}
			meta := r.byUser[u].Meta()
			adm = Admission{Status: meta.Status(), Role: meta.Role, Username: u, Rejoined: true}
			break
		}
		if _, ok := r.byUser[req.Username]; ok {
			delete(r.pending, req.SID)
			old, meta := r.bind(req.SID, req.Username, domain.RoleMember)
			d.untouch(old, r.Name())
			adm = Admission{Status: domain.StatusRestored, Role: meta.Role, Username: req.Username, Replaced: old}
			log.Info().Str("module", "core.room").Str("room", string(req.Room)).Str("sid", string(req.SID)).Str("replaced", string(old)).Str("user", req.Username).Msg("session taken over")
			break
		}
		r.pending[req.SID] = req.Username
		owner, _ := r.Owner()
		adm = Admission{Status: domain.StatusPending, Username: req.Username, Owner: owner}
		log.Info().Str("module", "core.room").Str("room", string(req.Room)).Str("sid", string(req.SID)).Str("user", req.Username).Msg("join pending")
	}

	d.touch(req.SID, r.Name())
	if emit != nil {
		emit(r, adm)
	}
	return adm, nil
}

// Approve moves a pending request into the member set. Only the owner may.
func (d *Directory) Approve(name domain.RoomName, by, requester SessionID, emit func(*Room, Approval)) error {
	r := d.lookup(name)
	if r == nil {
		return domain.ErrRoomNotFound
	}
	defer r.mu.Unlock()

	if !r.IsOwner(by) {
		return domain.ErrUnauthorized
	}
	username, ok := r.pending[requester]
	if !ok {
		return domain.ErrNotPending
	}
	delete(r.pending, requester)

	// The username may have been claimed while the request waited.
	old, _ := r.bind(requester, username, domain.RoleMember)
	if old != "" {
		d.untouch(old, name)
	}
	log.Info().Str("module", "core.room").Str("room", string(name)).Str("sid", string(requester)).Str("user", username).Msg("join approved")
	if emit != nil {
		emit(r, Approval{Username: username, Replaced: old})
	}
	return nil
}

// Reject discards a pending request. Only the owner may.
func (d *Directory) Reject(name domain.RoomName, by, requester SessionID, emit func(*Room, string)) error {
	r := d.lookup(name)
	if r == nil {
		return domain.ErrRoomNotFound
	}
	defer r.mu.Unlock()

	if !r.IsOwner(by) {
		return domain.ErrUnauthorized
	}
	username, ok := r.pending[requester]
	if !ok {
		return domain.ErrNotPending
	}
	delete(r.pending, requester)
	d.untouch(requester, name)
	log.Info().Str("module", "core.room").Str("room", string(name)).Str("sid", string(requester)).Str("user", username).Msg("join rejected")
	if emit != nil {
		emit(r, username)
	}
	return nil
}

// LeaveRoom removes the session from one room.
func (d *Directory) LeaveRoom(name domain.RoomName, sid SessionID, emit func(*Room, Departure)) error {
	d.untouch(sid, name)
	return d.leave(name, sid, emit)
}

// Leave removes the session from every room it is a member of or pending in.
func (d *Directory) Leave(sid SessionID, emit func(*Room, Departure)) {
	for _, name := range d.forget(sid) {
		if err := d.leave(name, sid, emit); err != nil {
			log.Debug().Err(err).Str("module", "core.room").Str("room", string(name)).Str("sid", string(sid)).Msg("leave skipped")
		}
	}
}

func (d *Directory) leave(name domain.RoomName, sid SessionID, emit func(*Room, Departure)) error {
	r := d.lookup(name)
	if r == nil {
		return domain.ErrRoomNotFound
	}

	meta, wasPending := r.remove(sid)
	if meta == nil && !wasPending {
		r.mu.Unlock()
		return domain.ErrNotMember
	}

	dep := Departure{WasPending: wasPending}
	if meta != nil {
		dep.Username = meta.Username
		dep.WasMember = true
		dep.Closed = meta.IsOwner() || len(r.byUser) == 0
	}
	if dep.Closed {
		dep.Remaining = r.Sessions()
		for _, other := range dep.Remaining {
			d.untouch(other, name)
		}
		for p := range r.pending {
			d.untouch(p, name)
		}
		clear(r.pending)
	}

	if emit != nil {
		emit(r, dep)
	}
	if dep.Closed {
		r.closed.Store(true)
	}
	r.mu.Unlock()

	if dep.Closed {
		d.drop(r)
		log.Info().Str("module", "core.room").Str("room", string(name)).Str("sid", string(sid)).Msg("room closed")
	} else {
		log.Info().Str("module", "core.room").Str("room", string(name)).Str("sid", string(sid)).Bool("member", dep.WasMember).Msg("left room")
	}
	return nil
}

// With runs fn under the room lock.
func (d *Directory) With(name domain.RoomName, fn func(*Room) error) error {
	r := d.lookup(name)
	if r == nil {
		return domain.ErrRoomNotFound
	}
	defer r.mu.Unlock()
	return fn(r)
}

// Status reports the admission state of username in the named room.
func (d *Directory) Status(name domain.RoomName, username string) domain.MembershipStatus {
	status := domain.StatusUnjoined
	_ = d.With(name, func(r *Room) error {
		status = r.Status(username)
		return nil
	})
	return status
}

func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.closed.Load() {
			out = append(out, r.info())
		}
		r.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
