package orch

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dkeye/PrivChat/internal/core"
	"github.com/dkeye/PrivChat/internal/core/mocks"
	"github.com/dkeye/PrivChat/internal/domain"
)

// With a strict mock any relay call not expected below fails the test.
func TestMutationByOtherSessionReachesNoOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	relay := mocks.NewMockRelay(ctrl)
	o := New(core.NewDirectory(), core.NewTracker(), relay)

	relay.EXPECT().JoinGroup(gomock.Any(), gomock.Any()).AnyTimes()
	relay.EXPECT().SendTo(gomock.Any(), gomock.Any()).AnyTimes()
	relay.EXPECT().Broadcast(domain.RoomName("r1"), core.SessionID(""), gomock.AssignableToTypeOf(core.RoomUsers{})).Times(2)
	relay.EXPECT().Broadcast(domain.RoomName("r1"), core.SessionID("s-bob"), gomock.AssignableToTypeOf(core.Message{})).Times(1)

	require.NoError(t, o.Join("s-alice", "r1", "alice", "t1"))
	require.NoError(t, o.Join("s-bob", "r1", "bob", "t1"))
	require.NoError(t, o.Approve("s-alice", "r1", "s-bob"))
	require.NoError(t, o.Send("s-bob", "r1", "m1", json.RawMessage(`"hi"`)))

	require.ErrorIs(t, o.Edit("s-alice", "r1", "m1", json.RawMessage(`"pwned"`)), domain.ErrUnauthorized)
	require.ErrorIs(t, o.Delete("s-alice", "r1", "m1"), domain.ErrUnauthorized)
	require.ErrorIs(t, o.Edit("s-alice", "r1", "nope", json.RawMessage(`"x"`)), domain.ErrUnknownMessage)

	st, ok := o.Tracker.Status("r1", "m1")
	require.True(t, ok)
	require.Equal(t, "bob", st.Sender)
}

func TestUnauthorizedApproveIsSilent(t *testing.T) {
	ctrl := gomock.NewController(t)
	relay := mocks.NewMockRelay(ctrl)
	o := New(core.NewDirectory(), core.NewTracker(), relay)

	relay.EXPECT().JoinGroup(core.SessionID("s-alice"), domain.RoomName("r1"))
	relay.EXPECT().SendTo(gomock.Any(), gomock.Any()).Times(3)
	relay.EXPECT().Broadcast(domain.RoomName("r1"), core.SessionID(""), gomock.Any())

	require.NoError(t, o.Join("s-alice", "r1", "alice", "t1"))
	require.NoError(t, o.Join("s-bob", "r1", "bob", "t1"))

	// Only the owner decides; refused decisions produce no traffic.
	err := o.Approve("s-bob", "r1", "s-bob")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	o.Report("s-bob", err)
	err = o.Reject("s-alice", "r1", "s-nobody")
	require.ErrorIs(t, err, domain.ErrNotPending)
	o.Report("s-alice", err)

	require.Equal(t, domain.StatusPending, o.Rooms.Status("r1", "bob"))
}
