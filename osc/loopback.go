package osc

import (
	"sort"
	"sync"

	liveosc "github.com/dinchak/go-liveosc"
)

// Message is one recorded outbound send.
type Message struct {
	Address string
	Args    liveosc.Args
}

// Loopback is an in-memory Transport. Outbound sends are recorded instead
// of leaving the process; inbound traffic is injected with Deliver, which
// fans out to subscribers synchronously on the caller's goroutine. Sends
// are never looped back to subscribers - the two directions are separate,
// like the two sides of a datagram socket.
type Loopback struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]liveosc.Handler
	sent   []Message
}

// NewLoopback creates an empty loopback transport.
func NewLoopback() *Loopback {
	return &Loopback{subs: make(map[string]map[int]liveosc.Handler)}
}

// Send records the outgoing message.
func (l *Loopback) Send(address string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, Message{Address: address, Args: liveosc.Args(args)})
	return nil
}

// Subscribe registers h for address.
func (l *Loopback) Subscribe(address string, h liveosc.Handler) liveosc.Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	m, ok := l.subs[address]
	if !ok {
		m = make(map[int]liveosc.Handler)
		l.subs[address] = m
	}
	m[l.nextID] = h
	return liveosc.Subscription{Address: address, ID: l.nextID}
}

// Unsubscribe removes exactly the handler sub identifies.
func (l *Loopback) Unsubscribe(sub liveosc.Subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.subs[sub.Address]; ok {
		delete(m, sub.ID)
	}
}

// Deliver injects one inbound message, invoking every current subscriber
// of the address in registration order.
func (l *Loopback) Deliver(address string, args ...any) {
	l.mu.Lock()
	m := l.subs[address]
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]liveosc.Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m[id])
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(liveosc.Args(args))
	}
}

// Sent returns every send recorded so far.
func (l *Loopback) Sent() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.sent))
	copy(out, l.sent)
	return out
}

// SentTo returns the recorded sends on one address.
func (l *Loopback) SentTo(address string) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Message
	for _, m := range l.sent {
		if m.Address == address {
			out = append(out, m)
		}
	}
	return out
}

// Reset clears the send log (subscriptions are kept).
func (l *Loopback) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = nil
}

// SubscriberCount returns how many handlers are registered for address.
func (l *Loopback) SubscriberCount(address string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs[address])
}
