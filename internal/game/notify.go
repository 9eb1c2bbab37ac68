package game

import (
	"time"

	"github.com/tomz197/soulstaff/internal/config"
)

const maxNotifications = 4

type notice struct {
	text    string
	expires time.Duration
}

// notifications is a small ring of recent messages. The oldest message is
// dropped when it is full.
type notifications struct {
	items []notice
}

func (n *notifications) push(text string, now time.Duration) {
	if len(n.items) == maxNotifications {
		copy(n.items, n.items[1:])
		n.items = n.items[:maxNotifications-1]
	}
	n.items = append(n.items, notice{text: text, expires: now + config.NotificationTime})
}

func (n *notifications) expire(now time.Duration) {
	kept := n.items[:0]
	for _, it := range n.items {
		if it.expires > now {
			kept = append(kept, it)
		}
	}
	n.items = kept
}

func (n *notifications) texts() []string {
	out := make([]string, len(n.items))
	for i, it := range n.items {
		out[i] = it.text
	}
	return out
}

// notify shows a message to the player.
func (s *Session) notify(text string) {
	s.notes.push(text, s.clock)
}

// Notifications returns the live messages, oldest first.
func (s *Session) Notifications() []string {
	return s.notes.texts()
}
