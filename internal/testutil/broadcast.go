package testutil

import "sync"

// Emitted is one live event captured by RecordingBroadcaster.
type Emitted struct {
	UserID  string
	Event   string
	Payload any
}

// RecordingBroadcaster implements live.Broadcaster and records every
// emitted event so tests can assert on delivery without a websocket.
type RecordingBroadcaster struct {
	mu     sync.Mutex
	events []Emitted
}

func (b *RecordingBroadcaster) EmitToUser(userID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, Emitted{UserID: userID, Event: event, Payload: payload})
}

// Events returns a copy of everything emitted so far.
func (b *RecordingBroadcaster) Events() []Emitted {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Emitted, len(b.events))
	copy(out, b.events)
	return out
}

// EventsFor returns the events emitted to a single user's room.
func (b *RecordingBroadcaster) EventsFor(userID string) []Emitted {
	var out []Emitted
	for _, e := range b.Events() {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
