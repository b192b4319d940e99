package liveosc

import (
	"go.uber.org/zap"
)

// Return mirrors one return track: mixer state and a device chain, no
// clips. Return addresses hang off /live/return with the same layouts as
// track addresses.
type Return struct {
	*emitter

	ls   listenerSet
	song *Song
	kind chanKind
	id   int

	name    string
	volume  float64
	pan     float64
	mute    bool
	solo    bool
	sends   map[int]float64
	devices []*Device
}

// newReturn subscribes the return's address set and requests its current
// state. Caller holds the song mutex.
func newReturn(song *Song, id int) *Return {
	r := &Return{
		emitter: newEmitter(),
		ls:      newListenerSet(song.ls.transport),
		song:    song,
		kind:    kindReturn,
		id:      id,
		sends:   make(map[int]float64),
	}

	r.ls.listen(r.kind.addr("/volume"), r.onVolume)
	r.ls.listen(r.kind.addr("/pan"), r.onPan)
	r.ls.listen(r.kind.addr("/mute"), r.onMute)
	r.ls.listen(r.kind.addr("/solo"), r.onSolo)
	r.ls.listen(r.kind.addr("/send"), r.onSend)
	r.ls.listen(r.kind.addr("/devicelist"), r.onDevicelist)
	r.ls.listen(addrNameReturn, r.onName)

	r.ls.send(r.kind.addr("/volume"), r.id)
	r.ls.send(r.kind.addr("/pan"), r.id)
	r.ls.send(r.kind.addr("/mute"), r.id)
	r.ls.send(r.kind.addr("/solo"), r.id)
	r.ls.send(r.kind.addr("/send"), r.id)
	r.ls.send(addrNameReturn, r.id)
	r.ls.send(r.kind.addr("/devicelist"), r.id)

	return r
}

// ID returns the return track's index in the song.
func (r *Return) ID() int {
	return r.id
}

// On registers fn for one of the return's events.
func (r *Return) On(event string, fn func(Change)) {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	r.emitter.On(event, fn)
}

// OnAny registers fn for every event the return emits.
func (r *Return) OnAny(fn func(event string, c Change)) {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	r.emitter.OnAny(fn)
}

// destroy removes the return's subscriptions and destroys its devices.
// The song clears its own reference. Caller holds the song mutex.
func (r *Return) destroy() {
	r.ls.destroy()
	for _, d := range r.devices {
		d.destroy()
	}
	r.devices = nil
}

// Inbound handlers; the leading argument is the return id.

func (r *Return) onVolume(args Args) {
	if args.Len() < 2 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	v := args.Float(1)
	r.song.publish(r.emitter, "volume", "return:volume", Change{Value: v, Prev: r.volume, ID: r.id}, func() {
		r.volume = v
	})
}

func (r *Return) onPan(args Args) {
	if args.Len() < 2 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	v := args.Float(1)
	r.song.publish(r.emitter, "pan", "return:pan", Change{Value: v, Prev: r.pan, ID: r.id}, func() {
		r.pan = v
	})
}

func (r *Return) onMute(args Args) {
	if args.Len() < 2 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	v := args.Bool(1)
	r.song.publish(r.emitter, "mute", "return:mute", Change{Value: v, Prev: r.mute, ID: r.id}, func() {
		r.mute = v
	})
}

func (r *Return) onSolo(args Args) {
	if args.Len() < 2 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	v := args.Bool(1)
	r.song.publish(r.emitter, "solo", "return:solo", Change{Value: v, Prev: r.solo, ID: r.id}, func() {
		r.solo = v
	})
}

func (r *Return) onSend(args Args) {
	if args.Len() < 3 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	for i := 1; i+1 < args.Len(); i += 2 {
		num := args.Int(i)
		v := args.Float(i + 1)
		prev := r.sends[num]
		r.song.publish(r.emitter, "send", "return:send", Change{Value: v, Prev: prev, ID: r.id, Num: num}, func() {
			r.sends[num] = v
		})
	}
}

// onName fires for renames and for structural changes to the device chain,
// so the device list is rebuilt after the name change goes out.
func (r *Return) onName(args Args) {
	if args.Len() < 2 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	v := args.String(1)
	r.song.publish(r.emitter, "name", "return:name", Change{Value: v, Prev: r.name, ID: r.id}, func() {
		r.name = v
	})
	r.song.log.Debug("return structure refresh", zap.Int("return", r.id), zap.String("name", v))
	for _, d := range r.devices {
		d.destroy()
	}
	r.devices = nil
	r.ls.send(r.kind.addr("/devicelist"), r.id)
}

func (r *Return) onDevicelist(args Args) {
	if args.Len() < 1 || args.Int(0) != r.id {
		return
	}
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	for _, d := range r.devices {
		d.destroy()
	}
	r.devices = nil
	for i := 1; i+1 < args.Len(); i += 2 {
		r.devices = append(r.devices, newDevice(r.song, r.kind, r.id, args.Int(i), args.String(i+1)))
	}
	r.song.log.Debug("return devices rebuilt", zap.Int("return", r.id), zap.Int("count", len(r.devices)))
}

// Outbound commands

// SetVolume sets the return volume (0..1).
func (r *Return) SetVolume(v float64) error {
	return r.ls.send(r.kind.addr("/volume"), r.id, v)
}

// SetPan sets the return pan (-1..1).
func (r *Return) SetPan(v float64) error {
	return r.ls.send(r.kind.addr("/pan"), r.id, v)
}

// SetMute mutes or unmutes the return.
func (r *Return) SetMute(on bool) error {
	return r.ls.send(r.kind.addr("/mute"), r.id, boolArg(on))
}

// SetSolo solos or unsolos the return.
func (r *Return) SetSolo(on bool) error {
	return r.ls.send(r.kind.addr("/solo"), r.id, boolArg(on))
}

// SetSend sets the level of send num on this return.
func (r *Return) SetSend(num int, level float64) error {
	return r.ls.send(r.kind.addr("/send"), r.id, num, level)
}

// View focuses this return in Live's UI.
func (r *Return) View() error {
	return r.ls.send(addrReturnView, r.id)
}

// Snapshot accessors

// Name returns the mirrored return name.
func (r *Return) Name() string {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.name
}

// Volume returns the mirrored return volume.
func (r *Return) Volume() float64 {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.volume
}

// Pan returns the mirrored return pan.
func (r *Return) Pan() float64 {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.pan
}

// Mute reports whether the return is muted.
func (r *Return) Mute() bool {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.mute
}

// Solo reports whether the return is soloed.
func (r *Return) Solo() bool {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.solo
}

// Send returns the mirrored level of send num.
func (r *Return) Send(num int) float64 {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	return r.sends[num]
}

// Devices returns the return's device chain.
func (r *Return) Devices() []*Device {
	r.song.mu.Lock()
	defer r.song.mu.Unlock()
	out := make([]*Device, len(r.devices))
	copy(out, r.devices)
	return out
}
