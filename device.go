package liveosc

import (
	"errors"
	"fmt"
)

// ErrNoSuchParam is returned when a parameter-by-name lookup matches
// nothing in the device's current parameter table.
var ErrNoSuchParam = errors.New("no such parameter")

// Param is one mirrored device parameter. Entries appear lazily, on the
// first notification touching their index.
type Param struct {
	Value float64
	Name  string
	Min   float64
	Max   float64
}

// Device mirrors one effect or instrument. The owner id is the track or
// return the device sits on (-1 for the master chain); master devices use a
// different address root and carry no owner argument on the wire, an
// asymmetry the kind table preserves.
type Device struct {
	*emitter

	ls      listenerSet
	song    *Song
	kind    chanKind
	ownerID int
	id      int

	name   string
	params map[int]*Param
	byName map[string]int
}

// newDevice subscribes the device's address set and requests its parameter
// table. Caller holds the song mutex.
func newDevice(song *Song, kind chanKind, ownerID, id int, name string) *Device {
	d := &Device{
		emitter: newEmitter(),
		ls:      newListenerSet(song.ls.transport),
		song:    song,
		kind:    kind,
		ownerID: ownerID,
		id:      id,
		name:    name,
		params:  make(map[int]*Param),
		byName:  make(map[string]int),
	}

	d.ls.listen(d.kind.addr("/device/param"), d.onParam)
	d.ls.listen(d.kind.addr("/device/range"), d.onRange)

	d.ls.send(d.kind.addr("/device"), d.identity()...)
	d.ls.send(d.kind.addr("/device/range"), d.identity()...)

	return d
}

// ID returns the device's index in its owner's chain.
func (d *Device) ID() int {
	return d.id
}

// Name returns the device name Live reported in the device list.
func (d *Device) Name() string {
	return d.name
}

// On registers fn for one of the device's events.
func (d *Device) On(event string, fn func(Change)) {
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	d.emitter.On(event, fn)
}

// OnAny registers fn for every event the device emits.
func (d *Device) OnAny(fn func(event string, c Change)) {
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	d.emitter.OnAny(fn)
}

// destroy removes the device's subscriptions. The owner clears its own
// reference. Caller holds the song mutex.
func (d *Device) destroy() {
	d.ls.destroy()
}

// identity is the leading argument list scoping a message to this device:
// (ownerId, deviceId) for track and return devices, (deviceId) for master.
func (d *Device) identity() []any {
	return append(d.kind.identity(d.ownerID), d.id)
}

// matches is the identity filter for inbound messages.
func (d *Device) matches(args Args) bool {
	i := 0
	if d.kind.hasID {
		if args.Int(0) != d.ownerID {
			return false
		}
		i = 1
	}
	return args.Int(i) == d.id
}

// body returns the arguments after the identity path.
func (d *Device) body(args Args) Args {
	return args[d.kind.identityLen()+1:]
}

// onParam consumes (identity..., then (index, value, name) triples, stride
// 3). One discrete change is published per triple; parameter entries are
// created lazily.
func (d *Device) onParam(args Args) {
	if args.Len() < d.kind.identityLen()+4 || !d.matches(args) {
		return
	}
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	body := d.body(args)
	for i := 0; i+2 < body.Len(); i += 3 {
		num := body.Int(i)
		v := body.Float(i + 1)
		name := body.String(i + 2)
		p := d.param(num)
		if name != "" {
			delete(d.byName, p.Name)
			p.Name = name
			d.byName[name] = num
		}
		c := Change{Value: v, Prev: p.Value, ID: d.id, TrackID: d.ownerID, Num: num, Name: p.Name}
		d.song.publish(d.emitter, "param", "device:param", c, func() {
			p.Value = v
		})
	}
}

// onRange consumes (identity..., then (index, min, max) triples, stride 3).
// Min and max are tracked fields like any other: each gets its own change.
func (d *Device) onRange(args Args) {
	if args.Len() < d.kind.identityLen()+4 || !d.matches(args) {
		return
	}
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	body := d.body(args)
	for i := 0; i+2 < body.Len(); i += 3 {
		num := body.Int(i)
		min := body.Float(i + 1)
		max := body.Float(i + 2)
		p := d.param(num)
		cmin := Change{Value: min, Prev: p.Min, ID: d.id, TrackID: d.ownerID, Num: num, Name: p.Name}
		d.song.publish(d.emitter, "min", "device:min", cmin, func() {
			p.Min = min
		})
		cmax := Change{Value: max, Prev: p.Max, ID: d.id, TrackID: d.ownerID, Num: num, Name: p.Name}
		d.song.publish(d.emitter, "max", "device:max", cmax, func() {
			p.Max = max
		})
	}
}

// param returns the entry at num, creating it on first touch. Caller holds
// the song mutex.
func (d *Device) param(num int) *Param {
	p, ok := d.params[num]
	if !ok {
		p = &Param{}
		d.params[num] = p
	}
	return p
}

// Outbound commands

// SetParam asks Live to set parameter num to v. Pure send; the mirrored
// value changes when the notification comes back.
func (d *Device) SetParam(num int, v float64) error {
	return d.ls.send(d.kind.addr("/device"), append(d.identity(), num, v)...)
}

// SetParamByName resolves name against the current parameter table and
// sets that parameter. This is the one outbound path with a local
// precondition: an unresolved name returns ErrNoSuchParam and nothing is
// sent.
func (d *Device) SetParamByName(name string, v float64) error {
	d.song.mu.Lock()
	num, ok := d.byName[name]
	d.song.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q on device %d", ErrNoSuchParam, name, d.id)
	}
	return d.SetParam(num, v)
}

// View focuses the device in Live's UI.
func (d *Device) View() error {
	return d.ls.send(d.kind.addr("/device/view"), d.identity()...)
}

// Snapshot accessors

// Param returns a copy of the parameter at num.
func (d *Device) Param(num int) (Param, bool) {
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	p, ok := d.params[num]
	if !ok {
		return Param{}, false
	}
	return *p, true
}

// ParamByName returns a copy of the named parameter.
func (d *Device) ParamByName(name string) (Param, bool) {
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	num, ok := d.byName[name]
	if !ok {
		return Param{}, false
	}
	return *d.params[num], true
}

// Params returns a copy of the whole sparse parameter table.
func (d *Device) Params() map[int]Param {
	d.song.mu.Lock()
	defer d.song.mu.Unlock()
	out := make(map[int]Param, len(d.params))
	for num, p := range d.params {
		out[num] = *p
	}
	return out
}
