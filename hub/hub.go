// Package hub implements the concurrent fan-out at the center of the chat
// server: channel membership, the current topic, and event broadcast. A Hub
// is shared by every connection's session goroutine; all of its exported
// methods are safe for concurrent use.
package hub

import (
	"errors"
	"net/netip"
	"sort"
	"strings"
	"sync"
)

// ErrNickInUse is returned by Register and Rename when the requested
// nickname is already held by another member.
var ErrNickInUse = errors.New("nickname already in use")

// ErrNickNotFound is returned when a nickname doesn't match any current
// member, e.g. from WhoIs or an internal lookup.
var ErrNickNotFound = errors.New("nickname not found")

type member struct {
	nick    string
	addr    netip.AddrPort
	mailbox *Mailbox
}

// Hub holds channel-wide state: the member roster, the current topic, and
// the catalog of recognized command names. The zero value is not usable;
// construct with New.
type Hub struct {
	mu       sync.Mutex
	members  map[string]*member
	topic    string
	commands []string
}

// New returns an empty Hub with no topic set. commands is the catalog
// reported by CommandList; the caller owns the slice and must not mutate it
// afterward.
func New(commands []string) *Hub {
	return &Hub{
		members:  make(map[string]*member),
		commands: commands,
	}
}

// Commands returns the command catalog this Hub was constructed with.
func (h *Hub) Commands() []string {
	return h.commands
}

// Register adds a new member under nick with its own mailbox, returning
// ErrNickInUse if the nickname is already taken. On success it returns the
// Mailbox the caller should drain for this connection's lifetime.
func (h *Hub) Register(nick string, addr netip.AddrPort) (*Mailbox, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, taken := h.members[nick]; taken {
		return nil, ErrNickInUse
	}

	mb := NewMailbox()
	h.members[nick] = &member{nick: nick, addr: addr, mailbox: mb}
	return mb, nil
}

// Remove takes a member out of the roster and closes its mailbox. It is a
// no-op if nick is not a current member, or if the current holder of nick
// has a different mailbox (e.g. it was already replaced by a later
// Register under the same name, which should not happen in practice since
// Register refuses to reuse a live nickname).
func (h *Hub) Remove(nick string, mb *Mailbox) {
	h.mu.Lock()
	m, ok := h.members[nick]
	if ok && m.mailbox == mb {
		delete(h.members, nick)
	}
	h.mu.Unlock()
	mb.Close()
}

// Rename moves a member from oldNick to newNick, returning ErrNickInUse if
// newNick is already held by a different member. Renaming to one's own
// current nickname succeeds as a no-op.
func (h *Hub) Rename(oldNick, newNick string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if oldNick == newNick {
		if _, ok := h.members[oldNick]; !ok {
			return ErrNickNotFound
		}
		return nil
	}

	if _, taken := h.members[newNick]; taken {
		return ErrNickInUse
	}

	m, ok := h.members[oldNick]
	if !ok {
		return ErrNickNotFound
	}

	delete(h.members, oldNick)
	m.nick = newNick
	h.members[newNick] = m
	return nil
}

// SetTopic replaces the channel topic, trimming leading and trailing
// whitespace first, and returns the trimmed value actually stored.
func (h *Hub) SetTopic(topic string) string {
	trimmed := strings.TrimSpace(topic)
	h.mu.Lock()
	h.topic = trimmed
	h.mu.Unlock()
	return trimmed
}

// Topic returns the current channel topic.
func (h *Hub) Topic() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.topic
}

// LookupNick returns the address registered for nick, and whether it was
// found.
func (h *Hub) LookupNick(nick string) (netip.AddrPort, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.members[nick]
	if !ok {
		return netip.AddrPort{}, false
	}
	return m.addr, true
}

// SnapshotNicks returns every current member's nickname, sorted so output
// is deterministic for NickList responses.
func (h *Hub) SnapshotNicks() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	nicks := make([]string, 0, len(h.members))
	for nick := range h.members {
		nicks = append(nicks, nick)
	}
	sort.Strings(nicks)
	return nicks
}

// BroadcastAll delivers ev to every current member, the sender included;
// callers that want to exclude the sender use BroadcastOthers.
//
// The hub lock is held only long enough to copy the recipient list; it is
// released before any mailbox is enqueued to, so a slow or closed mailbox
// never stalls another session's broadcast.
func (h *Hub) BroadcastAll(ev Event) {
	for _, mb := range h.snapshotMailboxes("") {
		mb.Enqueue(ev)
	}
}

// BroadcastOthers delivers ev to every current member except the one
// holding exceptNick.
func (h *Hub) BroadcastOthers(exceptNick string, ev Event) {
	for _, mb := range h.snapshotMailboxes(exceptNick) {
		mb.Enqueue(ev)
	}
}

// BroadcastTo delivers ev to the single member holding nick, if any. It
// reports whether a member was found.
func (h *Hub) BroadcastTo(nick string, ev Event) bool {
	h.mu.Lock()
	m, ok := h.members[nick]
	h.mu.Unlock()
	if !ok {
		return false
	}
	m.mailbox.Enqueue(ev)
	return true
}

func (h *Hub) snapshotMailboxes(exceptNick string) []*Mailbox {
	h.mu.Lock()
	defer h.mu.Unlock()
	mailboxes := make([]*Mailbox, 0, len(h.members))
	for nick, m := range h.members {
		if nick == exceptNick {
			continue
		}
		mailboxes = append(mailboxes, m.mailbox)
	}
	return mailboxes
}
