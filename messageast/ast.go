// Package messageast parses chat message text into a small typed AST. The
// same tree is walked both by the server, to decide whether a line of text
// is a recognized command, and by a client, to decide how to render mentions
// and commands differently from plain text.
package messageast

// Span is a half-open range over grapheme clusters, [Start, End). Position 0
// is the first grapheme cluster of the message; a Span never counts a byte
// or a rune twice if the underlying text contains multi-rune clusters such
// as flag emoji or combining accents.
type Span struct {
	Start int
	End   int
}

// contains reports whether pos falls within the span.
func (s Span) contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// NodeKind distinguishes the cases of a Node.
type NodeKind int

const (
	// KindText is a run of plain words together with any whitespace between
	// or around them. A sigil word that does not lex as a command or mention
	// (a bare sigil, or "/name" after position 0) is plain text too.
	KindText NodeKind = iota
	// KindWhitespace is a run of one or more whitespace grapheme clusters.
	KindWhitespace
	// KindCommand is a /name token. Name excludes the leading slash.
	KindCommand
	// KindMentionUser is an @name token. Name excludes the leading at-sign.
	KindMentionUser
	// KindMentionChannel is a #name token. Name excludes the leading hash.
	KindMentionChannel
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindWhitespace:
		return "Whitespace"
	case KindCommand:
		return "Command"
	case KindMentionUser:
		return "MentionUser"
	case KindMentionChannel:
		return "MentionChannel"
	default:
		return "Unknown"
	}
}

// Node is one element of a parsed Message. Text holds the node's raw
// grapheme-cluster text, sigil included for Command and Mention nodes. Name
// holds the same text with the sigil stripped; it is empty for Text and
// Whitespace nodes.
type Node struct {
	Kind NodeKind
	Span Span
	Text string
	Name string
}

// Message is a fully parsed line of chat text. IsCommand is true when the
// first node is a KindCommand node at position 0, per the rule that a
// command only counts at the very start of the line; a "/name" word
// appearing later in the text never lexes as a command at all, and is left
// as an ordinary KindText node in Nodes.
type Message struct {
	Raw         string
	IsCommand   bool
	CommandName string
	Nodes       []Node
}

// AllNodes returns every node of the message in left-to-right order.
func (m Message) AllNodes() []Node {
	return m.Nodes
}

// NodeAtPos returns the node whose span contains the grapheme-cluster
// position pos, and whether one was found. Whitespace nodes never match: a
// position inside a Whitespace node reports no node, the same as a position
// past the end of the message. Whitespace that Parse merged into a Text node
// belongs to that Text node and does match.
func (m Message) NodeAtPos(pos int) (Node, bool) {
	for _, n := range m.Nodes {
		if n.Kind == KindWhitespace {
			continue
		}
		if n.Span.contains(pos) {
			return n, true
		}
	}
	return Node{}, false
}
