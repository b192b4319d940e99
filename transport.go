package liveosc

// Handler receives the decoded argument list of one inbound message.
// Handlers run to completion before the next message is dispatched.
type Handler func(args Args)

// Subscription identifies one registered handler so exactly that handler
// can be removed later.
type Subscription struct {
	Address string
	ID      int
}

// Transport is the datagram boundary the mirror talks through. Send is
// fire-and-forget; delivery is at-most-once and unordered. Subscribe fans
// every message on an address out to all subscribers of that address - the
// transport does no demultiplexing between same-shaped entities, each
// handler filters by its own identity arguments.
type Transport interface {
	Send(address string, args ...any) error
	Subscribe(address string, h Handler) Subscription
	Unsubscribe(sub Subscription)
}

// Args is the flat positional argument list of one inbound message, decoded
// from the wire into Go values. The accessors tolerate the wire's numeric
// types (int32, float32) as well as plain Go ints and floats, and return the
// zero value for an out-of-range index or a mismatched type, so handlers
// never have to guard a read.
type Args []any

// Len returns the number of arguments.
func (a Args) Len() int {
	return len(a)
}

// Int returns the argument at i as an int.
func (a Args) Int(i int) int {
	if i < 0 || i >= len(a) {
		return 0
	}
	switch v := a[i].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return 0
}

// Float returns the argument at i as a float64.
func (a Args) Float(i int) float64 {
	if i < 0 || i >= len(a) {
		return 0
	}
	switch v := a[i].(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// String returns the argument at i as a string.
func (a Args) String(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	if s, ok := a[i].(string); ok {
		return s
	}
	return ""
}

// Bool returns the argument at i as a bool (nonzero means true).
func (a Args) Bool(i int) bool {
	return a.Int(i) != 0
}
