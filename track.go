package liveosc

import (
	"go.uber.org/zap"
)

// Track mirrors one Live track: mixer state (volume, pan, mute, solo, arm,
// sends), one Clip slot per scene, and the track's device chain. Track ids
// are positional and only valid until the next structural rebuild.
type Track struct {
	*emitter

	ls   listenerSet
	song *Song
	kind chanKind
	id   int

	name      string
	volume    float64
	pan       float64
	mute      bool
	solo      bool
	arm       bool
	sends     map[int]float64
	clips     []*Clip
	devices   []*Device
	numScenes int
}

// newTrack subscribes the track's address set, builds its clip slots, and
// requests its current state. Caller holds the song mutex.
func newTrack(song *Song, id, numScenes int) *Track {
	t := &Track{
		emitter: newEmitter(),
		ls:      newListenerSet(song.ls.transport),
		song:    song,
		kind:    kindTrack,
		id:      id,
		sends:   make(map[int]float64),
	}

	t.ls.listen(t.kind.addr("/volume"), t.onVolume)
	t.ls.listen(t.kind.addr("/pan"), t.onPan)
	t.ls.listen(t.kind.addr("/mute"), t.onMute)
	t.ls.listen(t.kind.addr("/solo"), t.onSolo)
	t.ls.listen(t.kind.addr("/arm"), t.onArm)
	t.ls.listen(t.kind.addr("/send"), t.onSend)
	t.ls.listen(t.kind.addr("/devicelist"), t.onDevicelist)
	t.ls.listen(addrNameTrack, t.onName)
	t.ls.listen(addrTrackInfo, t.onInfo)

	t.buildClips(numScenes)

	t.ls.send(t.kind.addr("/volume"), t.id)
	t.ls.send(t.kind.addr("/pan"), t.id)
	t.ls.send(t.kind.addr("/mute"), t.id)
	t.ls.send(t.kind.addr("/solo"), t.id)
	t.ls.send(t.kind.addr("/arm"), t.id)
	t.ls.send(t.kind.addr("/send"), t.id)
	t.ls.send(addrNameTrack, t.id)
	t.ls.send(addrTrackInfo, t.id)
	t.ls.send(t.kind.addr("/devicelist"), t.id)

	return t
}

// ID returns the track's index in the song.
func (t *Track) ID() int {
	return t.id
}

// On registers fn for one of the track's events.
func (t *Track) On(event string, fn func(Change)) {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	t.emitter.On(event, fn)
}

// OnAny registers fn for every event the track emits.
func (t *Track) OnAny(fn func(event string, c Change)) {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	t.emitter.OnAny(fn)
}

// destroy removes the track's subscriptions and recursively destroys its
// clips and devices. The song clears its own reference. Caller holds the
// song mutex.
func (t *Track) destroy() {
	t.ls.destroy()
	for _, c := range t.clips {
		c.destroy()
	}
	t.clips = nil
	for _, d := range t.devices {
		d.destroy()
	}
	t.devices = nil
}

func (t *Track) buildClips(numScenes int) {
	t.numScenes = numScenes
	t.clips = make([]*Clip, 0, numScenes)
	for i := 0; i < numScenes; i++ {
		t.clips = append(t.clips, newClip(t.song, t.id, i))
	}
}

// setNumScenes rebuilds the clip list to hold exactly n slots. The scene
// count always comes from the song. Caller holds the song mutex.
func (t *Track) setNumScenes(n int) {
	for _, c := range t.clips {
		c.destroy()
	}
	t.buildClips(n)
}

// rebuildChildren is the structural-change path: every clip and device under
// this track may be stale, so tear them all down and repopulate from
// scratch. Reconstructed children re-request their own state. Caller holds
// the song mutex.
func (t *Track) rebuildChildren() {
	for _, c := range t.clips {
		c.destroy()
	}
	t.buildClips(t.numScenes)

	for _, d := range t.devices {
		d.destroy()
	}
	t.devices = nil
	t.ls.send(t.kind.addr("/devicelist"), t.id)
}

// Inbound handlers. Every handler first checks the leading track-id
// argument: the transport fans each address out to all tracks, so a track
// self-selects and drops everything else.

func (t *Track) onVolume(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	v := args.Float(1)
	t.song.publish(t.emitter, "volume", "track:volume", Change{Value: v, Prev: t.volume, ID: t.id}, func() {
		t.volume = v
	})
}

func (t *Track) onPan(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	v := args.Float(1)
	t.song.publish(t.emitter, "pan", "track:pan", Change{Value: v, Prev: t.pan, ID: t.id}, func() {
		t.pan = v
	})
}

func (t *Track) onMute(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	v := args.Bool(1)
	t.song.publish(t.emitter, "mute", "track:mute", Change{Value: v, Prev: t.mute, ID: t.id}, func() {
		t.mute = v
	})
}

func (t *Track) onSolo(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	v := args.Bool(1)
	t.song.publish(t.emitter, "solo", "track:solo", Change{Value: v, Prev: t.solo, ID: t.id}, func() {
		t.solo = v
	})
}

func (t *Track) onArm(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	t.applyArm(args.Bool(1))
}

// applyArm publishes one arm change. Caller holds the song mutex.
func (t *Track) applyArm(v bool) {
	t.song.publish(t.emitter, "arm", "track:arm", Change{Value: v, Prev: t.arm, ID: t.id}, func() {
		t.arm = v
	})
}

// onSend consumes (trackId, index, level) pairs: one pair per send, stride
// 2 after the id. A single-send notification is just a one-pair batch.
func (t *Track) onSend(args Args) {
	if args.Len() < 3 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	for i := 1; i+1 < args.Len(); i += 2 {
		num := args.Int(i)
		v := args.Float(i + 1)
		prev := t.sends[num]
		t.song.publish(t.emitter, "send", "track:send", Change{Value: v, Prev: prev, ID: t.id, Num: num}, func() {
			t.sends[num] = v
		})
	}
}

// onName fires in Live not only for renames but whenever the track's
// structure changed (clips or devices added/removed), so after publishing
// the name change the whole subtree is rebuilt.
func (t *Track) onName(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	v := args.String(1)
	t.song.publish(t.emitter, "name", "track:name", Change{Value: v, Prev: t.name, ID: t.id}, func() {
		t.name = v
	})
	t.song.log.Debug("track structure refresh", zap.Int("track", t.id), zap.String("name", v))
	t.rebuildChildren()
}

// onInfo handles the composite info message: (trackId, arm, then one
// (clipId, state, length) triple per clip). It fans out into one discrete
// change per field it carries.
func (t *Track) onInfo(args Args) {
	if args.Len() < 2 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	t.applyArm(args.Bool(1))
	for i := 2; i+2 < args.Len(); i += 3 {
		id := args.Int(i)
		if id < 0 || id >= len(t.clips) {
			continue
		}
		c := t.clips[id]
		c.applyState(args.Int(i + 1))
		c.applyLength(args.Float(i + 2))
	}
}

func (t *Track) onDevicelist(args Args) {
	if args.Len() < 1 || args.Int(0) != t.id {
		return
	}
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	for _, d := range t.devices {
		d.destroy()
	}
	t.devices = nil
	for i := 1; i+1 < args.Len(); i += 2 {
		t.devices = append(t.devices, newDevice(t.song, t.kind, t.id, args.Int(i), args.String(i+1)))
	}
	t.song.log.Debug("track devices rebuilt", zap.Int("track", t.id), zap.Int("count", len(t.devices)))
}

// Outbound commands

// SetVolume sets the track volume (0..1).
func (t *Track) SetVolume(v float64) error {
	return t.ls.send(t.kind.addr("/volume"), t.id, v)
}

// SetPan sets the track pan (-1..1).
func (t *Track) SetPan(v float64) error {
	return t.ls.send(t.kind.addr("/pan"), t.id, v)
}

// SetMute mutes or unmutes the track.
func (t *Track) SetMute(on bool) error {
	return t.ls.send(t.kind.addr("/mute"), t.id, boolArg(on))
}

// SetSolo solos or unsolos the track.
func (t *Track) SetSolo(on bool) error {
	return t.ls.send(t.kind.addr("/solo"), t.id, boolArg(on))
}

// SetArm arms or disarms the track for recording.
func (t *Track) SetArm(on bool) error {
	return t.ls.send(t.kind.addr("/arm"), t.id, boolArg(on))
}

// SetSend sets the level of send num on this track.
func (t *Track) SetSend(num int, level float64) error {
	return t.ls.send(t.kind.addr("/send"), t.id, num, level)
}

// Stop stops whatever clip is playing on this track.
func (t *Track) Stop() error {
	return t.ls.send(addrStopTrack, t.id)
}

// View focuses this track in Live's UI.
func (t *Track) View() error {
	return t.ls.send(addrTrackView, t.id)
}

// Snapshot accessors

// Name returns the mirrored track name.
func (t *Track) Name() string {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.name
}

// Volume returns the mirrored track volume.
func (t *Track) Volume() float64 {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.volume
}

// Pan returns the mirrored track pan.
func (t *Track) Pan() float64 {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.pan
}

// Mute reports whether the track is muted.
func (t *Track) Mute() bool {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.mute
}

// Solo reports whether the track is soloed.
func (t *Track) Solo() bool {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.solo
}

// Arm reports whether the track is record-armed.
func (t *Track) Arm() bool {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.arm
}

// Send returns the mirrored level of send num.
func (t *Track) Send(num int) float64 {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	return t.sends[num]
}

// Clips returns the track's clip slots, one per scene.
func (t *Track) Clips() []*Clip {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	out := make([]*Clip, len(t.clips))
	copy(out, t.clips)
	return out
}

// Clip returns the clip slot at scene id, or nil.
func (t *Track) Clip(id int) *Clip {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	if id < 0 || id >= len(t.clips) {
		return nil
	}
	return t.clips[id]
}

// Devices returns the track's device chain.
func (t *Track) Devices() []*Device {
	t.song.mu.Lock()
	defer t.song.mu.Unlock()
	out := make([]*Device, len(t.devices))
	copy(out, t.devices)
	return out
}

// boolArg encodes a flag the way LiveOSC expects it on the wire.
func boolArg(on bool) int {
	if on {
		return 1
	}
	return 0
}
