package core

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/PrivChat/internal/domain"
)

// Receipt is the delivery state handed back to the sender.
type Receipt struct {
	Sender      SessionID
	DeliveredTo []string
	SeenBy      []string
	AllSeen     bool
}

type record struct {
	sender      SessionID
	senderName  string
	deliveredTo []string
	seenBy      []string
}

func (m *record) delivered(username string) bool { return slices.Contains(m.deliveredTo, username) }
func (m *record) seen(username string) bool      { return slices.Contains(m.seenBy, username) }

// ledger holds the records of one room.
type ledger struct {
	mu       sync.Mutex
	messages map[domain.MessageID]*record
	// deleted ids stay reserved for the life of the room.
	tombstones map[domain.MessageID]struct{}
}

// Tracker owns per-message delivery and seen state. It never looks at
// message content.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*ledger
}

func NewTracker() *Tracker {
	return &Tracker{rooms: make(map[domain.RoomName]*ledger)}
}

func (t *Tracker) ledger(room domain.RoomName, create bool) *ledger {
	t.mu.RLock()
	l, ok := t.rooms[room]
	t.mu.RUnlock()
	if ok || !create {
		return l
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if l, ok = t.rooms[room]; ok {
		return l
	}
	l = &ledger{
		messages:   make(map[domain.MessageID]*record),
		tombstones: make(map[domain.MessageID]struct{}),
	}
	t.rooms[room] = l
	return l
}

// RecordSend creates the record of a new message. recipients is everyone
// else in the room at send time; that is what delivered means here.
func (t *Tracker) RecordSend(room domain.RoomName, id domain.MessageID, sender SessionID, senderName string, recipients []string) (Receipt, error) {
	if err := id.Validate(); err != nil {
		return Receipt{}, err
	}
	l := t.ledger(room, true)
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.messages[id]; ok {
		return Receipt{}, domain.ErrDuplicateMessage
	}
	if _, ok := l.tombstones[id]; ok {
		return Receipt{}, domain.ErrDuplicateMessage
	}
	m := &record{
		sender:      sender,
		senderName:  senderName,
		deliveredTo: slices.Clone(recipients),
		seenBy:      []string{},
	}
	if m.deliveredTo == nil {
		m.deliveredTo = []string{}
	}
	l.messages[id] = m
	log.Debug().Str("module", "core.tracker").Str("room", string(room)).Str("message", string(id)).Int("recipients", len(recipients)).Msg("message recorded")
	return Receipt{Sender: sender, DeliveredTo: slices.Clone(m.deliveredTo), SeenBy: []string{}}, nil
}

// RecordSeen adds username to the seen set. Repeating an ack changes nothing.
// memberCount is the current size of the room, sender included.
func (t *Tracker) RecordSeen(room domain.RoomName, id domain.MessageID, username string, memberCount int) (Receipt, error) {
	l := t.ledger(room, false)
	if l == nil {
		return Receipt{}, domain.ErrUnknownMessage
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.messages[id]
	if !ok {
		return Receipt{}, domain.ErrUnknownMessage
	}
	if username == m.senderName {
		return Receipt{}, domain.ErrUnauthorized
	}
	if !m.seen(username) {
		// Seen implies received.
		if !m.delivered(username) {
			m.deliveredTo = append(m.deliveredTo, username)
		}
		m.seenBy = append(m.seenBy, username)
	}
	return Receipt{
		Sender:      m.sender,
		DeliveredTo: slices.Clone(m.deliveredTo),
		SeenBy:      slices.Clone(m.seenBy),
		AllSeen:     len(m.seenBy) == memberCount-1,
	}, nil
}

func (t *Tracker) authorizeLocked(l *ledger, id domain.MessageID, requester SessionID) (*record, error) {
	m, ok := l.messages[id]
	if !ok {
		return nil, domain.ErrUnknownMessage
	}
	if m.sender != requester {
		return nil, domain.ErrUnauthorized
	}
	return m, nil
}

// Authorize checks that requester is the session that sent the message.
func (t *Tracker) Authorize(room domain.RoomName, id domain.MessageID, requester SessionID) error {
	l := t.ledger(room, false)
	if l == nil {
		return domain.ErrUnknownMessage
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := t.authorizeLocked(l, id, requester)
	return err
}

// Delete removes the record when requester is its sender session.
func (t *Tracker) Delete(room domain.RoomName, id domain.MessageID, requester SessionID) error {
	l := t.ledger(room, false)
	if l == nil {
		return domain.ErrUnknownMessage
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := t.authorizeLocked(l, id, requester); err != nil {
		return err
	}
	delete(l.messages, id)
	l.tombstones[id] = struct{}{}
	log.Debug().Str("module", "core.tracker").Str("room", string(room)).Str("message", string(id)).Msg("message deleted")
	return nil
}

// Status returns a copy of the ledger entry.
func (t *Tracker) Status(room domain.RoomName, id domain.MessageID) (domain.MessageStatus, bool) {
	l := t.ledger(room, false)
	if l == nil {
		return domain.MessageStatus{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.messages[id]
	if !ok {
		return domain.MessageStatus{}, false
	}
	return domain.MessageStatus{
		Room:        room,
		ID:          id,
		Sender:      m.senderName,
		DeliveredTo: slices.Clone(m.deliveredTo),
		SeenBy:      slices.Clone(m.seenBy),
	}, true
}

// DropRoom forgets every record of a room.
func (t *Tracker) DropRoom(room domain.RoomName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, room)
}
