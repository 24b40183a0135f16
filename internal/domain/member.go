package domain

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// MembershipStatus is the admission state of a username within one room.
type MembershipStatus string

const (
	StatusUnjoined MembershipStatus = "unjoined"
	StatusPending  MembershipStatus = "pending"
	StatusMember   MembershipStatus = "member"
	StatusRestored MembershipStatus = "restored"
)

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	Username string
	Role     Role
	// Restored is set once the username has been taken over by a newer connection.
	Restored bool
	JoinedAt time.Time
}

// NewMember stamps JoinedAt.
func NewMember(username string, role Role) *Member {
	return &Member{Username: username, Role: role, JoinedAt: time.Now()}
}

func (m *Member) Status() MembershipStatus {
	if m.Restored {
		return StatusRestored
	}
	return StatusMember
}

func (m *Member) IsOwner() bool { return m.Role == RoleOwner }
