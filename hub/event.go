package hub

import "net/netip"

// EventKind distinguishes the cases of an Event delivered through a
// Mailbox.
type EventKind int

const (
	// EventSent is a chat line from another participant.
	EventSent EventKind = iota
	// EventTopicChanged is the channel topic being replaced.
	EventTopicChanged
	// EventNickChanged is a participant renaming, including a session
	// renaming itself.
	EventNickChanged
	// EventWhoIs is the reply to a WhoIs lookup, delivered only to the
	// requester.
	EventWhoIs
	// EventClientConnected announces a new participant to everyone already
	// on the channel.
	EventClientConnected
	// EventClientDisconnected announces a participant's departure.
	EventClientDisconnected
	// EventNickList is a refreshed roster snapshot, published to everyone
	// after a rename takes effect.
	EventNickList
)

// Event is a tagged union delivered through a Mailbox. Only the field
// relevant to Kind is populated.
type Event struct {
	Kind EventKind

	// EventSent, EventTopicChanged: the nick of whoever caused the event.
	FromNick string
	Text     string

	// EventTopicChanged
	Topic string

	// EventNickChanged
	OldNick string
	NewNick string

	// EventWhoIs
	WhoIsNick  string
	WhoIsAddr  netip.AddrPort
	WhoIsFound bool

	// EventClientConnected / EventClientDisconnected
	Nick string

	// EventNickList
	Nicks []string
}
