package liveosc

// Change is the payload delivered to event callbacks. Value and Prev are
// always set (Prev is the value that was stored before this specific
// update). The identity fields are filled in as they apply to the emitting
// entity: ID is the entity's index within its parent collection, TrackID
// the owning track or return for clip and device events, Num the parameter
// or send index for batched messages, and Name the parameter or clip name
// when the message carries one.
type Change struct {
	Value   any
	Prev    any
	ID      int
	TrackID int
	Num     int
	Name    string
}

// emitter is a synchronous fan-out channel. Every entity owns one for its
// local events, and the Song owns a second one acting as the global sink.
type emitter struct {
	handlers map[string][]func(Change)
	anyFns   []func(event string, c Change)
}

func newEmitter() *emitter {
	return &emitter{handlers: make(map[string][]func(Change))}
}

// On registers fn for one named event.
func (e *emitter) On(event string, fn func(Change)) {
	e.handlers[event] = append(e.handlers[event], fn)
}

// OnAny registers fn for every event this emitter carries.
func (e *emitter) OnAny(fn func(event string, c Change)) {
	e.anyFns = append(e.anyFns, fn)
}

func (e *emitter) emit(event string, c Change) {
	for _, fn := range e.handlers[event] {
		fn(c)
	}
	for _, fn := range e.anyFns {
		fn(event, c)
	}
}
