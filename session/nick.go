package session

import (
	"math/rand/v2"
	"strings"
)

const randomNickLength = 16

// randomNick generates a 16-letter A-Z nickname for a newly connected
// session that hasn't yet chosen one, per the channel's no-registration
// model: every participant starts with an assigned identity and may rename
// with NewNick afterward.
func randomNick() string {
	var b strings.Builder
	b.Grow(randomNickLength)
	for i := 0; i < randomNickLength; i++ {
		b.WriteByte(byte('A' + rand.IntN(26)))
	}
	return b.String()
}
