package core

import "github.com/dkeye/PrivChat/internal/domain"

// memberSession pairs a member's meta with the session currently bound to it.
type memberSession struct {
	meta *domain.Member
	sid  SessionID
}

func newMemberSession(meta *domain.Member, sid SessionID) *memberSession {
	return &memberSession{meta: meta, sid: sid}
}

func (m *memberSession) Meta() *domain.Member { return m.meta }
func (m *memberSession) SID() SessionID       { return m.sid }

// rebind moves the member onto a new session and returns the replaced one.
func (m *memberSession) rebind(sid SessionID) SessionID {
	old := m.sid
	m.sid = sid
	m.meta.Restored = true
	return old
}
