package app

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/PrivChat/internal/core"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	limit  int
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnClosed
	}
	if f.limit > 0 && len(f.frames) >= f.limit {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSignal) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSignal) types(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, fr := range f.frames {
		var head struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(fr, &head))
		out = append(out, head.Type)
	}
	return out
}

func TestRegistry_BroadcastSkipsSender(t *testing.T) {
	reg := NewRegistry(nil)
	a, b, c := &fakeSignal{}, &fakeSignal{}, &fakeSignal{}
	reg.Bind("a", a, "client-1", nil)
	reg.Bind("b", b, "client-2", nil)
	reg.Bind("c", c, "client-3", nil)
	reg.JoinGroup("a", "r1")
	reg.JoinGroup("b", "r1")
	reg.JoinGroup("c", "r2")

	reg.Broadcast("r1", "a", core.Typing{Type: core.EventTyping, Room: "r1", Username: "alice"})

	assert.Empty(t, a.types(t))
	assert.Equal(t, []string{core.EventTyping}, b.types(t))
	assert.Empty(t, c.types(t))
	assert.Equal(t, []core.SessionID{"a", "b"}, reg.MembersOfRoom("r1"))
}

func TestRegistry_SendToUnknownSessionIsNoop(t *testing.T) {
	reg := NewRegistry(nil)
	assert.NotPanics(t, func() {
		reg.SendTo("ghost", core.Notice{Type: core.EventNotice})
		reg.Disconnect("ghost")
		reg.JoinGroup("ghost", "r1")
	})
	assert.Empty(t, reg.MembersOfRoom("r1"))
}

func TestRegistry_SlowConsumerIsKicked(t *testing.T) {
	reg := NewRegistry(SimplePolicy{})
	fast, slow := &fakeSignal{}, &fakeSignal{limit: 1}
	reg.Bind("fast", fast, "", nil)
	reg.Bind("slow", slow, "", nil)
	reg.JoinGroup("fast", "r1")
	reg.JoinGroup("slow", "r1")

	ev := core.Typing{Type: core.EventTyping, Room: "r1", Username: "x"}
	reg.Broadcast("r1", "", ev)
	assert.False(t, slow.isClosed())
	reg.Broadcast("r1", "", ev)

	assert.True(t, slow.isClosed())
	assert.False(t, fast.isClosed())
	assert.Len(t, fast.types(t), 2)
}

func TestRegistry_LenientPolicyDropsFrame(t *testing.T) {
	reg := NewRegistry(PolicyByName("drop"))
	slow := &fakeSignal{limit: 1}
	reg.Bind("slow", slow, "", nil)

	reg.SendTo("slow", core.Notice{Type: core.EventNotice})
	reg.SendTo("slow", core.Notice{Type: core.EventNotice})

	assert.False(t, slow.isClosed())
	assert.Len(t, slow.types(t), 1)
}

func TestRegistry_UnbindLeavesGroupsAndCancels(t *testing.T) {
	reg := NewRegistry(nil)
	ctx, cancel := context.WithCancel(context.Background())
	reg.Bind("a", &fakeSignal{}, "", cancel)
	reg.JoinGroup("a", "r1")
	reg.JoinGroup("a", "r2")
	assert.Equal(t, 1, reg.Count())

	reg.Unbind("a")

	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.MembersOfRoom("r1"))
	assert.Empty(t, reg.GroupsOf("a"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := NewRegistry(nil)
	a, b := &fakeSignal{}, &fakeSignal{}
	reg.Bind("a", a, "", nil)
	reg.Bind("b", b, "", nil)

	reg.CloseAll()

	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
}

func TestPolicyByName(t *testing.T) {
	assert.IsType(t, LenientPolicy{}, PolicyByName("drop"))
	assert.IsType(t, SimplePolicy{}, PolicyByName("kick"))
	assert.IsType(t, SimplePolicy{}, PolicyByName(""))
}
