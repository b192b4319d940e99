package liveosc

// listenerSet tracks the transport subscriptions one entity owns. Each
// entity registers its handlers through listen at construction and destroy
// removes exactly those handlers, so a destroyed entity's handlers are no
// longer registered at all - a late reply for it is silently inert. No
// entity ever touches another entity's subscriptions.
type listenerSet struct {
	transport Transport
	subs      []Subscription
	destroyed bool
}

func newListenerSet(t Transport) listenerSet {
	return listenerSet{transport: t}
}

func (l *listenerSet) listen(address string, h Handler) {
	if l.destroyed {
		return
	}
	l.subs = append(l.subs, l.transport.Subscribe(address, h))
}

// send is the outbound half: fire-and-forget, no local state change.
func (l *listenerSet) send(address string, args ...any) error {
	return l.transport.Send(address, args...)
}

// destroy removes every subscription this set registered. Safe to call
// more than once.
func (l *listenerSet) destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	for _, sub := range l.subs {
		l.transport.Unsubscribe(sub)
	}
	l.subs = nil
}
