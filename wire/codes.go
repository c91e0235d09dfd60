package wire

import "fmt"

// Code is the 16-bit semantic code attached to every outbound Response. The
// numbering is wire-stable; never renumber an existing code.
type Code uint16

const (
	CodeAckMessage   Code = 0
	CodeWelcome      Code = 1
	CodeYourNick     Code = 2
	CodeHello        Code = 3
	CodeGoodbye      Code = 4
	CodePong         Code = 5
	CodeDisconnected Code = 6

	CodeChatMessageOk      Code = 200
	CodeNickChange         Code = 201
	CodeTopicChange        Code = 202
	CodeTopicChangeMessage Code = 203
	CodeCommandList        Code = 204
	CodeNickList           Code = 205
	CodeWhoIs              Code = 206

	CodeCommandNotFound Code = 300
	CodeInvalidArgument Code = 301
	CodeNickInUse       Code = 302
	CodeWhoIsError      Code = 303
)

func (c Code) String() string {
	switch c {
	case CodeAckMessage:
		return "AckMessage"
	case CodeWelcome:
		return "Welcome"
	case CodeYourNick:
		return "YourNick"
	case CodeHello:
		return "Hello"
	case CodeGoodbye:
		return "Goodbye"
	case CodePong:
		return "Pong"
	case CodeDisconnected:
		return "Disconnected"
	case CodeChatMessageOk:
		return "ChatMessageOk"
	case CodeNickChange:
		return "NickChange"
	case CodeTopicChange:
		return "TopicChange"
	case CodeTopicChangeMessage:
		return "TopicChangeMessage"
	case CodeCommandList:
		return "CommandList"
	case CodeNickList:
		return "NickList"
	case CodeWhoIs:
		return "WhoIs"
	case CodeCommandNotFound:
		return "CommandNotFound"
	case CodeInvalidArgument:
		return "InvalidArgument"
	case CodeNickInUse:
		return "NickInUse"
	case CodeWhoIsError:
		return "WhoIsError"
	default:
		return fmt.Sprintf("Code(%d)", uint16(c))
	}
}

// Commands is the static catalog of recognized command names, reported to
// clients in the CommandList response. Session dispatch does not consult it:
// requests arrive as typed variants, and chat text that parses as a leading
// command is answered with CommandNotFound whatever its name.
var Commands = []string{"ping", "nick", "topic", "whois", "disconnect"}
