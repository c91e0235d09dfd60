package session

import "github.com/auldridge/driftline/hub"

// pumpMailbox adapts a Mailbox's blocking Next into a channel so a
// session's run loop can select over it alongside incoming request frames
// and context cancellation. The returned channel is closed once the
// mailbox is closed and drained or done fires.
func pumpMailbox(mb *hub.Mailbox, done <-chan struct{}) <-chan hub.Event {
	out := make(chan hub.Event)
	go func() {
		defer close(out)
		for {
			ev, ok := mb.Next(done)
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}()
	return out
}
