package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/PrivChat/internal/domain"
)

func join(t *testing.T, d *Directory, room, user, token string, sid SessionID) Admission {
	t.Helper()
	adm, err := d.Join(JoinRequest{Room: domain.RoomName(room), Username: user, Token: domain.Token(token), SID: sid}, nil)
	require.NoError(t, err)
	return adm
}

// aliceAndBob builds r1/t1 owned by alice (s-alice) with bob (s-bob) approved.
func aliceAndBob(t *testing.T) *Directory {
	t.Helper()
	d := NewDirectory()
	join(t, d, "r1", "alice", "t1", "s-alice")
	join(t, d, "r1", "bob", "t1", "s-bob")
	require.NoError(t, d.Approve("r1", "s-alice", "s-bob", nil))
	return d
}

func members(t *testing.T, d *Directory, room domain.RoomName) []string {
	t.Helper()
	var out []string
	require.NoError(t, d.With(room, func(r *Room) error {
		out = r.Usernames()
		return nil
	}))
	return out
}

func TestDirectory_FirstJoinCreatesRoom(t *testing.T) {
	d := NewDirectory()
	var emitted []Admission
	adm, err := d.Join(JoinRequest{Room: "r1", Username: "alice", Token: "t1", SID: "s1"}, func(r *Room, a Admission) {
		emitted = append(emitted, a)
		assert.Equal(t, []string{"alice"}, r.Usernames())
		assert.True(t, r.IsOwner("s1"))
	})
	require.NoError(t, err)

	assert.True(t, adm.Created)
	assert.Equal(t, domain.RoleOwner, adm.Role)
	assert.Equal(t, domain.StatusMember, adm.Status)
	assert.Len(t, emitted, 1)
	assert.Equal(t, []domain.RoomName{"r1"}, d.RoomsOf("s1"))
	assert.Equal(t, []RoomInfo{{Name: "r1", MemberCount: 1}}, d.List())
}

func TestDirectory_JoinValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     JoinRequest
		wantErr error
	}{
		{name: "missing username", req: JoinRequest{Room: "r1", Token: "t1", SID: "s1"}, wantErr: domain.ErrMissingFields},
		{name: "missing room", req: JoinRequest{Username: "a", Token: "t1", SID: "s1"}, wantErr: domain.ErrMissingFields},
		{name: "missing token", req: JoinRequest{Room: "r1", Username: "a", SID: "s1"}, wantErr: domain.ErrMissingFields},
		{name: "blank username", req: JoinRequest{Room: "r1", Username: "   ", Token: "t1", SID: "s1"}, wantErr: domain.ErrUsernameEmpty},
		{name: "long username", req: JoinRequest{Room: "r1", Username: fmt.Sprintf("%040d", 1), Token: "t1", SID: "s1"}, wantErr: domain.ErrUsernameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory()
			_, err := d.Join(tt.req, func(*Room, Admission) { t.Fatal("emit on invalid join") })
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, d.List())
		})
	}
}

func TestDirectory_InvalidTokenChangesNothing(t *testing.T) {
	d := aliceAndBob(t)

	_, err := d.Join(JoinRequest{Room: "r1", Username: "eve", Token: "wrong", SID: "s-eve"}, func(*Room, Admission) {
		t.Fatal("emit on invalid token")
	})
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	assert.Equal(t, []string{"alice", "bob"}, members(t, d, "r1"))
	assert.Equal(t, domain.StatusUnjoined, d.Status("r1", "eve"))
	assert.Empty(t, d.RoomsOf("s-eve"))
	assert.Equal(t, []RoomInfo{{Name: "r1", MemberCount: 2}}, d.List())
}

func TestDirectory_PendingThenApprove(t *testing.T) {
	d := NewDirectory()
	join(t, d, "r1", "alice", "t1", "s-alice")

	adm := join(t, d, "r1", "bob", "t1", "s-bob")
	assert.Equal(t, domain.StatusPending, adm.Status)
	assert.Equal(t, SessionID("s-alice"), adm.Owner)
	assert.Equal(t, domain.StatusPending, d.Status("r1", "bob"))
	assert.Equal(t, []string{"alice"}, members(t, d, "r1"))

	var approved Approval
	require.NoError(t, d.Approve("r1", "s-alice", "s-bob", func(r *Room, a Approval) {
		approved = a
		assert.Equal(t, []string{"alice", "bob"}, r.Usernames())
	}))
	assert.Equal(t, "bob", approved.Username)
	assert.Empty(t, approved.Replaced)
	assert.Equal(t, domain.StatusMember, d.Status("r1", "bob"))

	// A second approve finds nothing pending.
	require.ErrorIs(t, d.Approve("r1", "s-alice", "s-bob", nil), domain.ErrNotPending)
}

func TestDirectory_OnlyOwnerDecides(t *testing.T) {
	d := aliceAndBob(t)
	join(t, d, "r1", "carol", "t1", "s-carol")

	require.ErrorIs(t, d.Approve("r1", "s-bob", "s-carol", nil), domain.ErrUnauthorized)
	require.ErrorIs(t, d.Reject("r1", "s-bob", "s-carol", nil), domain.ErrUnauthorized)
	require.ErrorIs(t, d.Approve("nope", "s-alice", "s-carol", nil), domain.ErrRoomNotFound)
	assert.Equal(t, domain.StatusPending, d.Status("r1", "carol"))
}

func TestDirectory_Reject(t *testing.T) {
	d := NewDirectory()
	join(t, d, "r1", "alice", "t1", "s-alice")
	join(t, d, "r1", "bob", "t1", "s-bob")

	var rejected string
	require.NoError(t, d.Reject("r1", "s-alice", "s-bob", func(_ *Room, u string) { rejected = u }))
	assert.Equal(t, "bob", rejected)
	assert.Equal(t, domain.StatusUnjoined, d.Status("r1", "bob"))
	assert.Empty(t, d.RoomsOf("s-bob"))
}

func TestDirectory_ConcurrentApproveSucceedsOnce(t *testing.T) {
	d := NewDirectory()
	join(t, d, "r1", "alice", "t1", "s-alice")
	join(t, d, "r1", "bob", "t1", "s-bob")

	var (
		mu   sync.Mutex
		oks  int
		wg   conc.WaitGroup
		emit int
	)
	for i := 0; i < 32; i++ {
		wg.Go(func() {
			err := d.Approve("r1", "s-alice", "s-bob", func(*Room, Approval) { emit++ })
			if err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	assert.Equal(t, 1, emit)
	assert.Equal(t, []string{"alice", "bob"}, members(t, d, "r1"))
}

func TestDirectory_TakeoverKeepsOneLiveSession(t *testing.T) {
	d := aliceAndBob(t)

	const n = 24
	var (
		mu       sync.Mutex
		replaced = map[SessionID]int{}
		wg       conc.WaitGroup
	)
	for i := 0; i < n; i++ {
		sid := SessionID(fmt.Sprintf("s-bob-%d", i))
		wg.Go(func() {
			adm, err := d.Join(JoinRequest{Room: "r1", Username: "bob", Token: "t1", SID: sid}, nil)
			assert.NoError(t, err)
			assert.Equal(t, domain.StatusRestored, adm.Status)
			mu.Lock()
			replaced[adm.Replaced]++
			mu.Unlock()
		})
	}
	wg.Wait()

	var live SessionID
	require.NoError(t, d.With("r1", func(r *Room) error {
		var ok bool
		live, ok = r.SessionOf("bob")
		require.True(t, ok)
		assert.Equal(t, 2, r.MemberCount())
		return nil
	}))

	// Every session but the live one was replaced exactly once.
	assert.Len(t, replaced, n)
	assert.NotContains(t, replaced, live)
	assert.Contains(t, replaced, SessionID("s-bob"))
	for sid, c := range replaced {
		assert.Equal(t, 1, c, sid)
	}
	assert.Equal(t, domain.StatusRestored, d.Status("r1", "bob"))
	assert.Empty(t, d.RoomsOf("s-bob"))
}

func TestDirectory_RejoinSameSession(t *testing.T) {
	d := aliceAndBob(t)

	adm := join(t, d, "r1", "bob", "t1", "s-bob")
	assert.True(t, adm.Rejoined)
	assert.Empty(t, adm.Replaced)
	assert.Equal(t, domain.StatusMember, adm.Status)

	_, err := d.Join(JoinRequest{Room: "r1", Username: "robert", Token: "t1", SID: "s-bob"}, nil)
	require.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestDirectory_OwnerTakeoverKeepsRole(t *testing.T) {
	d := aliceAndBob(t)

	adm := join(t, d, "r1", "alice", "t1", "s-alice-2")
	assert.Equal(t, domain.StatusRestored, adm.Status)
	assert.Equal(t, domain.RoleOwner, adm.Role)
	assert.Equal(t, SessionID("s-alice"), adm.Replaced)

	// The replaced session is gone; leaving with it changes nothing.
	d.Leave("s-alice", func(*Room, Departure) { t.Fatal("replaced session still bound") })
	require.NoError(t, d.With("r1", func(r *Room) error {
		assert.True(t, r.IsOwner("s-alice-2"))
		assert.False(t, r.IsOwner("s-alice"))
		return nil
	}))
}

func TestDirectory_MemberLeaveKeepsRoom(t *testing.T) {
	d := aliceAndBob(t)

	var dep Departure
	d.Leave("s-bob", func(r *Room, got Departure) {
		dep = got
		assert.Equal(t, []string{"alice"}, r.Usernames())
	})
	assert.Equal(t, "bob", dep.Username)
	assert.True(t, dep.WasMember)
	assert.False(t, dep.Closed)
	assert.Equal(t, []string{"alice"}, members(t, d, "r1"))
}

func TestDirectory_LeaveDropsPending(t *testing.T) {
	d := aliceAndBob(t)
	join(t, d, "r1", "carol", "t1", "s-carol")

	var dep Departure
	d.Leave("s-carol", func(_ *Room, got Departure) { dep = got })
	assert.True(t, dep.WasPending)
	assert.False(t, dep.WasMember)
	assert.Equal(t, domain.StatusUnjoined, d.Status("r1", "carol"))
	require.ErrorIs(t, d.Approve("r1", "s-alice", "s-carol", nil), domain.ErrNotPending)
}

func TestDirectory_OwnerLeaveClosesRoom(t *testing.T) {
	d := aliceAndBob(t)
	join(t, d, "r1", "carol", "t1", "s-carol")

	var dep Departure
	d.Leave("s-alice", func(_ *Room, got Departure) { dep = got })
	assert.True(t, dep.Closed)
	assert.Equal(t, []SessionID{"s-bob"}, dep.Remaining)

	assert.Empty(t, d.List())
	assert.Empty(t, d.RoomsOf("s-bob"))
	assert.Empty(t, d.RoomsOf("s-carol"))
	require.ErrorIs(t, d.With("r1", func(*Room) error { return nil }), domain.ErrRoomNotFound)

	// The old name+token no longer admits anyone into the old room: bob
	// starts a brand new room as its owner.
	adm := join(t, d, "r1", "bob", "t1", "s-bob")
	assert.True(t, adm.Created)
	assert.Equal(t, domain.RoleOwner, adm.Role)
}

func TestDirectory_LeaveRoomOnlyTouchesOneRoom(t *testing.T) {
	d := aliceAndBob(t)
	join(t, d, "r2", "bob", "t2", "s-bob")

	require.NoError(t, d.LeaveRoom("r1", "s-bob", nil))
	assert.Equal(t, []domain.RoomName{"r2"}, d.RoomsOf("s-bob"))
	assert.Equal(t, []string{"alice"}, members(t, d, "r1"))
	require.ErrorIs(t, d.LeaveRoom("r1", "s-bob", nil), domain.ErrNotMember)
}

func TestDirectory_RoomsAreIndependent(t *testing.T) {
	d := NewDirectory()
	var wg conc.WaitGroup
	for i := 0; i < 16; i++ {
		room := fmt.Sprintf("room-%d", i)
		wg.Go(func() {
			for j := 0; j < 8; j++ {
				sid := SessionID(fmt.Sprintf("%s-s%d", room, j))
				_, err := d.Join(JoinRequest{Room: domain.RoomName(room), Username: fmt.Sprintf("u%d", j), Token: "t", SID: sid}, nil)
				assert.NoError(t, err)
			}
		})
	}
	wg.Wait()

	list := d.List()
	require.Len(t, list, 16)
	for _, info := range list {
		assert.Equal(t, 1, info.MemberCount)
		assert.Equal(t, 7, info.PendingCount)
	}
}
