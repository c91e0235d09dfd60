package messageast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainText(t *testing.T) {
	msg := Parse("hello world")
	require.False(t, msg.IsCommand)
	// Text and the whitespace between words merge into one Text node.
	require.Len(t, msg.Nodes, 1)
	assert.Equal(t, KindText, msg.Nodes[0].Kind)
	assert.Equal(t, "hello world", msg.Nodes[0].Text)
	assert.Equal(t, Span{0, 11}, msg.Nodes[0].Span)
}

func TestParse_LeadingCommandMakesMessageACommand(t *testing.T) {
	msg := Parse("/nick Gamma")
	require.True(t, msg.IsCommand)
	assert.Equal(t, "nick", msg.CommandName)
	require.Len(t, msg.Nodes, 2)
	assert.Equal(t, KindCommand, msg.Nodes[0].Kind)
	assert.Equal(t, Span{0, 5}, msg.Nodes[0].Span)
	assert.Equal(t, "nick", msg.Nodes[0].Name)
}

func TestParse_CommandNotAtStartIsNotAMessageCommand(t *testing.T) {
	msg := Parse("see /nick over there")
	assert.False(t, msg.IsCommand)
	assert.Empty(t, msg.CommandName)

	// A "/" word that doesn't start at position 0 never lexes as a command
	// at all; it's plain text, same as any other word, and merges with its
	// neighbors into one Text node.
	require.Len(t, msg.Nodes, 1)
	assert.Equal(t, KindText, msg.Nodes[0].Kind)
	assert.Equal(t, "see /nick over there", msg.Nodes[0].Text)
}

func TestParse_MentionUserAndChannel(t *testing.T) {
	msg := Parse("hey @alice check #general")
	var user, channel *Node
	for i := range msg.Nodes {
		switch msg.Nodes[i].Kind {
		case KindMentionUser:
			user = &msg.Nodes[i]
		case KindMentionChannel:
			channel = &msg.Nodes[i]
		}
	}
	require.NotNil(t, user)
	require.NotNil(t, channel)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "@alice", user.Text)
	assert.Equal(t, "general", channel.Name)
	assert.Equal(t, "#general", channel.Text)
}

// Spec case 5: "/start #room test @bob" — a leading command followed by a
// channel mention, plain text, and a user mention. The command and mentions
// are their own nodes; " test " (text plus its surrounding whitespace) is one
// Text node.
func TestParse_StartRoomTestBob(t *testing.T) {
	msg := Parse("/start #room test @bob")
	require.True(t, msg.IsCommand)
	assert.Equal(t, "start", msg.CommandName)

	kinds := make([]NodeKind, len(msg.Nodes))
	for i, n := range msg.Nodes {
		kinds[i] = n.Kind
	}
	assert.Equal(t, []NodeKind{
		KindCommand, KindWhitespace, KindMentionChannel, KindText, KindMentionUser,
	}, kinds)
}

// Spec case 6: "/a /b c" — only the very first word counts as a command;
// the second slash is not at position 0, so it and everything after it is
// plain text, merged into a single trailing Text node.
func TestParse_OnlyFirstCommandCounts(t *testing.T) {
	msg := Parse("/a /b c")
	require.True(t, msg.IsCommand)
	assert.Equal(t, "a", msg.CommandName)

	require.Len(t, msg.Nodes, 2)
	assert.Equal(t, KindCommand, msg.Nodes[0].Kind)
	assert.Equal(t, "a", msg.Nodes[0].Name)
	assert.Equal(t, KindText, msg.Nodes[1].Kind)
	assert.Equal(t, " /b c", msg.Nodes[1].Text)
}

func TestParse_MidWordSigilDoesNotSplitWord(t *testing.T) {
	msg := Parse("foo@bar")
	require.Len(t, msg.Nodes, 1)
	assert.Equal(t, KindText, msg.Nodes[0].Kind)
	assert.Equal(t, "foo@bar", msg.Nodes[0].Text)
}

func TestParse_BareSigilWithNoNameIsText(t *testing.T) {
	msg := Parse("look at @ over there")
	assert.False(t, msg.IsCommand)
	for _, n := range msg.Nodes {
		assert.NotEqual(t, KindMentionUser, n.Kind)
	}
}

func TestParse_SpansCoverEntireMessageWithNoGapsOrOverlaps(t *testing.T) {
	for _, raw := range []string{
		"hello world", "/nick Gamma", "hey @alice check #general",
		"/start #room test @bob", "/a /b c", "  leading and trailing  ",
		"héllo 👋 world",
	} {
		t.Run(raw, func(t *testing.T) {
			msg := Parse(raw)
			want := 0
			for _, n := range msg.Nodes {
				assert.Equal(t, want, n.Span.Start, "gap or overlap before node %+v", n)
				want = n.Span.End
			}
			assert.Equal(t, graphemeLen(raw), want, "spans must cover the whole message")
		})
	}
}

func TestMessage_NodeAtPos(t *testing.T) {
	msg := Parse("/nick Gamma")
	n, ok := msg.NodeAtPos(0)
	require.True(t, ok)
	assert.Equal(t, KindCommand, n.Kind)

	n, ok = msg.NodeAtPos(6)
	require.True(t, ok)
	assert.Equal(t, KindText, n.Kind)
	assert.Equal(t, " Gamma", n.Text)

	_, ok = msg.NodeAtPos(100)
	assert.False(t, ok)
}

func TestMessage_NodeAtPos_WhitespaceNeverMatches(t *testing.T) {
	msg := Parse("/nick @bob")
	_, ok := msg.NodeAtPos(5)
	assert.False(t, ok, "position 5 is the Whitespace node between /nick and @bob")
}

func graphemeLen(s string) int {
	return len(graphemeClusters(s))
}
