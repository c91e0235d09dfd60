package hub

import (
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), port)
}

func TestRegister_RejectsDuplicateNick(t *testing.T) {
	h := New(nil)
	_, err := h.Register("Alice", addr(1))
	require.NoError(t, err)

	_, err = h.Register("Alice", addr(2))
	assert.ErrorIs(t, err, ErrNickInUse)
}

func TestRemove_ClosesMailboxAndFreesNick(t *testing.T) {
	h := New(nil)
	mb, err := h.Register("Alice", addr(1))
	require.NoError(t, err)

	h.Remove("Alice", mb)

	_, found := h.LookupNick("Alice")
	assert.False(t, found)

	_, err = h.Register("Alice", addr(2))
	assert.NoError(t, err)

	_, ok := mb.Next(nil)
	assert.False(t, ok)
}

func TestRename_RejectsTakenNick(t *testing.T) {
	h := New(nil)
	_, err := h.Register("Alice", addr(1))
	require.NoError(t, err)
	_, err = h.Register("Bob", addr(2))
	require.NoError(t, err)

	err = h.Rename("Alice", "Bob")
	assert.ErrorIs(t, err, ErrNickInUse)

	_, found := h.LookupNick("Alice")
	assert.True(t, found, "failed rename must not disturb the existing member")
}

func TestRename_ToOwnCurrentNickIsNoOp(t *testing.T) {
	h := New(nil)
	_, err := h.Register("Alice", addr(1))
	require.NoError(t, err)

	err = h.Rename("Alice", "Alice")
	assert.NoError(t, err)

	_, found := h.LookupNick("Alice")
	assert.True(t, found)
}

func TestRename_MovesMailboxToNewNick(t *testing.T) {
	h := New(nil)
	mb, err := h.Register("Alice", addr(1))
	require.NoError(t, err)

	require.NoError(t, h.Rename("Alice", "Eve"))

	_, found := h.LookupNick("Alice")
	assert.False(t, found)

	mb.Enqueue(Event{Kind: EventSent, Text: "hi"})
	h.BroadcastTo("Eve", Event{Kind: EventSent, Text: "hi2"})
	ev, ok := mb.Next(nil)
	require.True(t, ok)
	assert.Equal(t, "hi", ev.Text)
}

func TestSnapshotNicks_SortedAndComplete(t *testing.T) {
	h := New(nil)
	_, _ = h.Register("Zeta", addr(1))
	_, _ = h.Register("Alpha", addr(2))
	_, _ = h.Register("Mu", addr(3))

	assert.Equal(t, []string{"Alpha", "Mu", "Zeta"}, h.SnapshotNicks())
}

func TestBroadcastOthers_ExcludesSender(t *testing.T) {
	h := New(nil)
	aliceMB, _ := h.Register("Alice", addr(1))
	bobMB, _ := h.Register("Bob", addr(2))

	h.BroadcastOthers("Alice", Event{Kind: EventSent, FromNick: "Alice", Text: "hi"})

	_, ok := aliceMB.Next(closedChan())
	assert.False(t, ok, "sender must not receive its own broadcast")

	ev, ok := bobMB.Next(nil)
	require.True(t, ok)
	assert.Equal(t, "hi", ev.Text)
}

func TestBroadcastTo_UnknownNickReturnsFalse(t *testing.T) {
	h := New(nil)
	assert.False(t, h.BroadcastTo("Nobody", Event{Kind: EventSent}))
}

func TestSetTopicAndTopic(t *testing.T) {
	h := New(nil)
	h.SetTopic("about cats")
	assert.Equal(t, "about cats", h.Topic())
}

func TestSetTopic_TrimsWhitespace(t *testing.T) {
	h := New(nil)
	got := h.SetTopic("  about cats  ")
	assert.Equal(t, "about cats", got)
	assert.Equal(t, "about cats", h.Topic())
}

func TestHub_ConcurrentRegisterAndBroadcastDoesNotRace(t *testing.T) {
	h := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nick := "User" + string(rune('A'+i))
			mb, err := h.Register(nick, addr(uint16(1000+i)))
			if err != nil {
				return
			}
			h.BroadcastOthers(nick, Event{Kind: EventSent, FromNick: nick})
			time.Sleep(time.Millisecond)
			h.Remove(nick, mb)
		}(i)
	}
	wg.Wait()
	assert.Empty(t, h.SnapshotNicks())
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
