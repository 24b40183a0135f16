package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/domain"
)

type sessionEntry struct {
	Rooms  map[domain.RoomName]struct{}
	Signal core.SignalConnection
	// Client is the browser cookie token; several sessions may share it.
	Client string
	Cancel context.CancelFunc
}

// Registry tracks live sessions and room broadcast groups. It is the
// core.Relay the orchestrator talks to.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	groups   map[domain.RoomName]map[core.SessionID]struct{}
	policy   Policy
}

var _ core.Relay = (*Registry)(nil)

func NewRegistry(policy Policy) *Registry {
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		groups:   make(map[domain.RoomName]map[core.SessionID]struct{}),
		policy:   policy,
	}
}

func (r *Registry) Bind(sid core.SessionID, sig core.SignalConnection, client string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		Rooms:  make(map[domain.RoomName]struct{}),
		Signal: sig,
		Client: client,
		Cancel: cancel,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("client", client).Msg("bound session")
}

// Unbind forgets the session and removes it from every group.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	for room := range e.Rooms {
		r.leaveGroupLocked(sid, room)
	}
	delete(r.sessions, sid)
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) GetSignal(sid core.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Signal, true
	}
	return nil, false
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// GroupsOf lists the broadcast groups the session is in.
func (r *Registry) GroupsOf(sid core.SessionID) []domain.RoomName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomName, 0, len(e.Rooms))
	for room := range e.Rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) MembersOfRoom(room domain.RoomName) []core.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SessionID, 0, len(r.groups[room]))
	for sid := range r.groups[room] {
		out = append(out, sid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) JoinGroup(sid core.SessionID, room domain.RoomName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	g, ok := r.groups[room]
	if !ok {
		g = make(map[core.SessionID]struct{})
		r.groups[room] = g
	}
	g[sid] = struct{}{}
	e.Rooms[room] = struct{}{}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("joined group")
}

func (r *Registry) LeaveGroup(sid core.SessionID, room domain.RoomName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveGroupLocked(sid, room)
}

func (r *Registry) leaveGroupLocked(sid core.SessionID, room domain.RoomName) {
	if g, ok := r.groups[room]; ok {
		delete(g, sid)
		if len(g) == 0 {
			delete(r.groups, room)
		}
	}
	if e, ok := r.sessions[sid]; ok {
		delete(e.Rooms, room)
	}
}

func encode(event any) (core.Frame, error) {
	switch v := event.(type) {
	case core.Frame:
		return v, nil
	case []byte:
		return v, nil
	}
	return json.Marshal(event)
}

func (r *Registry) SendTo(sid core.SessionID, event any) {
	data, err := encode(event)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("encode event")
		return
	}
	sig, ok := r.GetSignal(sid)
	if !ok {
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("send to unknown session")
		return
	}
	if err := sig.TrySend(data); err != nil {
		r.onSendError("", sid, err)
	}
}

func (r *Registry) Broadcast(room domain.RoomName, except core.SessionID, event any) {
	data, err := encode(event)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Msg("encode event")
		return
	}

	type failure struct {
		sid core.SessionID
		err error
	}
	var (
		failed []failure
		sent   int
	)
	r.mu.RLock()
	for sid := range r.groups[room] {
		if sid == except {
			continue
		}
		e, ok := r.sessions[sid]
		if !ok {
			continue
		}
		if err := e.Signal.TrySend(data); err != nil {
			failed = append(failed, failure{sid, err})
			continue
		}
		sent++
	}
	r.mu.RUnlock()

	for _, f := range failed {
		r.onSendError(room, f.sid, f.err)
	}
	log.Debug().Str("module", "app.registry").Str("room", string(room)).Str("from", string(except)).Int("sent_to", sent).Int("dropped", len(failed)).Msg("broadcast result")
}

func (r *Registry) onSendError(room domain.RoomName, sid core.SessionID, err error) {
	if !errors.Is(err, core.ErrBackpressure) {
		log.Debug().Err(err).Str("module", "app.registry").Str("sid", string(sid)).Msg("send failed")
		return
	}
	switch r.policy.OnBackPressure(room, sid) {
	case KickMember:
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("slow consumer kicked")
		r.Disconnect(sid)
	case DropFrame, NoAction:
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("frame dropped")
	}
}

// Disconnect closes the session's transport after its queue drains.
// Membership cleanup follows from the adapter noticing the closed socket.
func (r *Registry) Disconnect(sid core.SessionID) {
	sig, ok := r.GetSignal(sid)
	if !ok {
		return
	}
	sig.Close()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("disconnect requested")
}

// CloseAll disconnects every live session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	sigs := make([]core.SignalConnection, 0, len(r.sessions))
	for _, e := range r.sessions {
		sigs = append(sigs, e.Signal)
	}
	r.mu.RUnlock()
	for _, s := range sigs {
		s.Close()
	}
}
