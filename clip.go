package liveosc

// Clip slot states, as LiveOSC reports them.
const (
	ClipEmpty     = 0 // no clip in the slot
	ClipStopped   = 1 // clip present, not playing
	ClipPlaying   = 2
	ClipTriggered = 3 // launch quantized, waiting for the beat
)

// Clip mirrors one clip slot. A slot exists for every (track, scene) pair
// even when empty; emptiness is the ClipEmpty state, not a missing entry.
type Clip struct {
	*emitter

	ls      listenerSet
	song    *Song
	trackID int // owning track, for address construction only
	id      int // scene index

	name      string
	state     int
	length    float64
	loopStart float64
	loopEnd   float64
	looping   bool
}

// newClip subscribes the slot's address set and requests its state.
// Caller holds the song mutex.
func newClip(song *Song, trackID, id int) *Clip {
	c := &Clip{
		emitter: newEmitter(),
		ls:      newListenerSet(song.ls.transport),
		song:    song,
		trackID: trackID,
		id:      id,
	}

	c.ls.listen(addrClipInfo, c.onInfo)
	c.ls.listen(addrClipLoopStart, c.onLoopStart)
	c.ls.listen(addrClipLoopEnd, c.onLoopEnd)
	c.ls.listen(addrClipLoopState, c.onLoopState)
	c.ls.listen(addrNameClip, c.onName)

	c.ls.send(addrClipInfo, c.trackID, c.id)
	c.ls.send(addrClipLoopStart, c.trackID, c.id)
	c.ls.send(addrClipLoopEnd, c.trackID, c.id)
	c.ls.send(addrClipLoopState, c.trackID, c.id)
	c.ls.send(addrNameClip, c.trackID, c.id)

	return c
}

// ID returns the clip's scene index.
func (c *Clip) ID() int {
	return c.id
}

// TrackID returns the owning track's index.
func (c *Clip) TrackID() int {
	return c.trackID
}

// On registers fn for one of the clip's events.
func (c *Clip) On(event string, fn func(Change)) {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	c.emitter.On(event, fn)
}

// OnAny registers fn for every event the clip emits.
func (c *Clip) OnAny(fn func(event string, c Change)) {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	c.emitter.OnAny(fn)
}

// destroy removes the clip's subscriptions. The track clears its own
// reference. Caller holds the song mutex.
func (c *Clip) destroy() {
	c.ls.destroy()
}

// matches is the identity filter: clip messages lead with (trackId, clipId).
func (c *Clip) matches(args Args) bool {
	return args.Int(0) == c.trackID && args.Int(1) == c.id
}

func (c *Clip) onInfo(args Args) {
	if args.Len() < 3 || !c.matches(args) {
		return
	}
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	c.applyState(args.Int(2))
	if args.Len() > 3 {
		c.applyLength(args.Float(3))
	}
}

// applyState publishes one playback-state change. Caller holds the song
// mutex; also driven by the track's composite info message.
func (c *Clip) applyState(v int) {
	c.song.publish(c.emitter, "state", "clip:state", Change{Value: v, Prev: c.state, ID: c.id, TrackID: c.trackID}, func() {
		c.state = v
	})
}

// applyLength publishes one length change. Caller holds the song mutex.
func (c *Clip) applyLength(v float64) {
	c.song.publish(c.emitter, "length", "clip:length", Change{Value: v, Prev: c.length, ID: c.id, TrackID: c.trackID}, func() {
		c.length = v
	})
}

func (c *Clip) onLoopStart(args Args) {
	if args.Len() < 3 || !c.matches(args) {
		return
	}
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	v := args.Float(2)
	c.song.publish(c.emitter, "loopstart", "clip:loopstart", Change{Value: v, Prev: c.loopStart, ID: c.id, TrackID: c.trackID}, func() {
		c.loopStart = v
	})
}

func (c *Clip) onLoopEnd(args Args) {
	if args.Len() < 3 || !c.matches(args) {
		return
	}
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	v := args.Float(2)
	c.song.publish(c.emitter, "loopend", "clip:loopend", Change{Value: v, Prev: c.loopEnd, ID: c.id, TrackID: c.trackID}, func() {
		c.loopEnd = v
	})
}

func (c *Clip) onLoopState(args Args) {
	if args.Len() < 3 || !c.matches(args) {
		return
	}
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	v := args.Bool(2)
	c.song.publish(c.emitter, "loopstate", "clip:loopstate", Change{Value: v, Prev: c.looping, ID: c.id, TrackID: c.trackID}, func() {
		c.looping = v
	})
}

func (c *Clip) onName(args Args) {
	if args.Len() < 3 || !c.matches(args) {
		return
	}
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	v := args.String(2)
	c.song.publish(c.emitter, "name", "clip:name", Change{Value: v, Prev: c.name, ID: c.id, TrackID: c.trackID}, func() {
		c.name = v
	})
}

// Outbound commands

// Play launches the clip.
func (c *Clip) Play() error {
	return c.ls.send(addrPlayClipSlot, c.trackID, c.id)
}

// Stop stops the clip.
func (c *Clip) Stop() error {
	return c.ls.send(addrStopClip, c.trackID, c.id)
}

// SetLoopStart moves the loop start point (in beats).
func (c *Clip) SetLoopStart(v float64) error {
	return c.ls.send(addrClipLoopStart, c.trackID, c.id, v)
}

// SetLoopEnd moves the loop end point (in beats).
func (c *Clip) SetLoopEnd(v float64) error {
	return c.ls.send(addrClipLoopEnd, c.trackID, c.id, v)
}

// SetLooping toggles looping.
func (c *Clip) SetLooping(on bool) error {
	return c.ls.send(addrClipLoopState, c.trackID, c.id, boolArg(on))
}

// View focuses the clip in Live's UI.
func (c *Clip) View() error {
	return c.ls.send(addrClipView, c.trackID, c.id)
}

// Snapshot accessors

// Name returns the mirrored clip name.
func (c *Clip) Name() string {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.name
}

// State returns the slot's playback state (ClipEmpty..ClipTriggered).
func (c *Clip) State() int {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.state
}

// Length returns the mirrored clip length in beats.
func (c *Clip) Length() float64 {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.length
}

// LoopStart returns the mirrored loop start point.
func (c *Clip) LoopStart() float64 {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.loopStart
}

// LoopEnd returns the mirrored loop end point.
func (c *Clip) LoopEnd() float64 {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.loopEnd
}

// Looping reports whether the clip loops.
func (c *Clip) Looping() bool {
	c.song.mu.Lock()
	defer c.song.mu.Unlock()
	return c.looping
}
