package liveosc

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultReadyWait is how long a refresh waits before emitting "ready".
// The wait lets the fan-out of count-driven child construction settle; it
// is a heuristic, not a completion proof, and consumers must tolerate
// updates arriving after ready fires.
const DefaultReadyWait = 400 * time.Millisecond

// Song mirrors the whole Live set: all tracks, returns and master-chain
// devices, plus the transport-level state (tempo, playing, beat, selected
// scene). It is the aggregate root - construct exactly one per session and
// tear it down with Destroy.
type Song struct {
	*emitter // entity-local events

	global    *emitter
	ls        listenerSet
	log       *zap.Logger
	readyWait time.Duration

	mu         sync.Mutex
	tracks     []*Track
	returns    []*Return
	devices    []*Device // master chain
	numScenes  int
	tempo      float64
	songTime   float64
	beat       int
	scene      int
	playing    bool
	volume     float64 // master
	pan        float64
	readyGen   int
	readyTimer *time.Timer
}

// Option configures a Song at construction.
type Option func(*Song)

// WithLogger routes the mirror's diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(s *Song) { s.log = log }
}

// WithReadyWait overrides the delay before a refresh emits "ready".
func WithReadyWait(d time.Duration) Option {
	return func(s *Song) { s.readyWait = d }
}

// New builds the mirror on t, subscribes the song-level address set, and
// immediately issues a full refresh.
func New(t Transport, opts ...Option) *Song {
	s := &Song{
		emitter:   newEmitter(),
		global:    newEmitter(),
		ls:        newListenerSet(t),
		log:       zap.NewNop(),
		readyWait: DefaultReadyWait,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ls.listen(addrStartup, s.onStartup)
	s.ls.listen(addrShutdown, s.onShutdown)
	s.ls.listen(addrRefresh, s.onRefresh)
	s.ls.listen(addrTracks, s.onTracks)
	s.ls.listen(addrReturns, s.onReturns)
	s.ls.listen(addrScenes, s.onScenes)
	s.ls.listen(addrTempo, s.onTempo)
	s.ls.listen(addrTime, s.onTime)
	s.ls.listen(addrBeat, s.onBeat)
	s.ls.listen(addrScene, s.onScene)
	s.ls.listen(addrPlay, s.onPlay)
	s.ls.listen(kindMaster.addr("/volume"), s.onMasterVolume)
	s.ls.listen(kindMaster.addr("/pan"), s.onMasterPan)
	s.ls.listen(kindMaster.addr("/devicelist"), s.onMasterDevicelist)

	s.Refresh()
	return s
}

// On registers fn for one of the song's own events.
func (s *Song) On(event string, fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter.On(event, fn)
}

// OnAny registers fn for every event the song emits locally.
func (s *Song) OnAny(fn func(event string, c Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitter.OnAny(fn)
}

// OnGlobal registers fn on the song-wide sink for one "kind:field" event.
func (s *Song) OnGlobal(event string, fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.On(event, fn)
}

// OnAnyGlobal registers fn for every event crossing the song-wide sink.
func (s *Song) OnAnyGlobal(fn func(event string, c Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.OnAny(fn)
}

// publish runs the change sequence for one tracked mutation: the entity's
// local event fires with {value, prev}, the field is stored, then the
// enriched payload goes out on the song-wide sink.
func (s *Song) publish(local *emitter, localEvent, globalEvent string, c Change, store func()) {
	local.emit(localEvent, c)
	if store != nil {
		store()
	}
	s.global.emit(globalEvent, c)
}

// Refresh tears down the whole mirrored graph and requests everything
// again: counts, tempo, master state, master devices. Collections stay
// empty until count replies repopulate them. Safe to call repeatedly, even
// before earlier replies arrive.
func (s *Song) Refresh() error {
	s.mu.Lock()
	if s.ls.destroyed {
		s.mu.Unlock()
		return nil
	}
	s.teardownChildrenLocked()
	// Stop does not cover a timer that already fired and is waiting on the
	// mutex; the generation check in emitReady does.
	if s.readyTimer != nil {
		s.readyTimer.Stop()
	}
	s.readyGen++
	gen := s.readyGen
	s.readyTimer = time.AfterFunc(s.readyWait, func() { s.emitReady(gen) })
	s.mu.Unlock()

	s.log.Debug("refresh: requesting full state")
	for _, addr := range []string{
		addrTracks,
		addrReturns,
		addrScenes,
		addrTempo,
		kindMaster.addr("/volume"),
		kindMaster.addr("/pan"),
		kindMaster.addr("/devicelist"),
	} {
		if err := s.ls.send(addr); err != nil {
			return err
		}
	}
	return nil
}

// Destroy tears down the graph and removes the Song's own subscriptions.
// Idempotent; the Song is unusable afterwards.
func (s *Song) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyTimer != nil {
		s.readyTimer.Stop()
		s.readyTimer = nil
	}
	s.teardownChildrenLocked()
	s.ls.destroy()
}

// teardownChildrenLocked destroys every owned child and clears the
// collections. Caller holds s.mu.
func (s *Song) teardownChildrenLocked() {
	for _, t := range s.tracks {
		t.destroy()
	}
	s.tracks = nil
	for _, r := range s.returns {
		r.destroy()
	}
	s.returns = nil
	for _, d := range s.devices {
		d.destroy()
	}
	s.devices = nil
}

// emitReady fires the ready probe for one refresh generation. An invocation
// from a timer that a later refresh superseded is dropped.
func (s *Song) emitReady(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ls.destroyed || gen != s.readyGen {
		return
	}
	s.log.Info("mirror ready", zap.Int("tracks", len(s.tracks)), zap.Int("returns", len(s.returns)))
	s.publish(s.emitter, "ready", "ready", Change{}, nil)
}

// Inbound handlers

func (s *Song) onStartup(args Args) {
	s.log.Info("remote application startup")
	s.Refresh()
}

func (s *Song) onRefresh(args Args) {
	s.Refresh()
}

func (s *Song) onShutdown(args Args) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("remote application shutdown")
	s.teardownChildrenLocked()
	s.publish(s.emitter, "shutdown", "shutdown", Change{}, nil)
}

func (s *Song) onTracks(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := args.Int(0)
	prev := len(s.tracks)
	for _, t := range s.tracks {
		t.destroy()
	}
	tracks := make([]*Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, newTrack(s, i, s.numScenes))
	}
	s.tracks = tracks
	s.log.Debug("tracks rebuilt", zap.Int("count", n))
	s.publish(s.emitter, "tracks", "song:tracks", Change{Value: n, Prev: prev}, nil)
}

func (s *Song) onReturns(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := args.Int(0)
	prev := len(s.returns)
	for _, r := range s.returns {
		r.destroy()
	}
	returns := make([]*Return, 0, n)
	for i := 0; i < n; i++ {
		returns = append(returns, newReturn(s, i))
	}
	s.returns = returns
	s.log.Debug("returns rebuilt", zap.Int("count", n))
	s.publish(s.emitter, "returns", "song:returns", Change{Value: n, Prev: prev}, nil)
}

func (s *Song) onScenes(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := args.Int(0)
	prev := s.numScenes
	s.publish(s.emitter, "scenes", "song:scenes", Change{Value: n, Prev: prev}, func() {
		s.numScenes = n
	})
	if n != prev {
		// Scene count is the sole authority for clip slots: every track's
		// clip list is rebuilt.
		for _, t := range s.tracks {
			t.setNumScenes(n)
		}
	}
}

func (s *Song) onTempo(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Float(0)
	s.publish(s.emitter, "tempo", "song:tempo", Change{Value: v, Prev: s.tempo}, func() {
		s.tempo = v
	})
}

func (s *Song) onTime(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Float(0)
	s.publish(s.emitter, "time", "song:time", Change{Value: v, Prev: s.songTime}, func() {
		s.songTime = v
	})
}

func (s *Song) onBeat(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Int(0)
	s.publish(s.emitter, "beat", "song:beat", Change{Value: v, Prev: s.beat}, func() {
		s.beat = v
	})
}

func (s *Song) onScene(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Int(0)
	s.publish(s.emitter, "scene", "song:scene", Change{Value: v, Prev: s.scene}, func() {
		s.scene = v
	})
}

func (s *Song) onPlay(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// LiveOSC convention: 2 = playing, 1 = stopped.
	v := args.Int(0) == 2
	s.publish(s.emitter, "play", "song:play", Change{Value: v, Prev: s.playing}, func() {
		s.playing = v
	})
}

func (s *Song) onMasterVolume(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Float(0)
	s.publish(s.emitter, "volume", "master:volume", Change{Value: v, Prev: s.volume}, func() {
		s.volume = v
	})
}

func (s *Song) onMasterPan(args Args) {
	if args.Len() < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := args.Float(0)
	s.publish(s.emitter, "pan", "master:pan", Change{Value: v, Prev: s.pan}, func() {
		s.pan = v
	})
}

func (s *Song) onMasterDevicelist(args Args) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		d.destroy()
	}
	s.devices = nil
	// Pairs of (device index, name).
	for i := 0; i+1 < args.Len(); i += 2 {
		s.devices = append(s.devices, newDevice(s, kindMaster, -1, args.Int(i), args.String(i+1)))
	}
	s.log.Debug("master devices rebuilt", zap.Int("count", len(s.devices)))
}

// Outbound commands (pure sends; the mirrored field changes only when the
// resulting notification arrives back)

// Play starts global playback.
func (s *Song) Play() error {
	return s.ls.send(addrPlay)
}

// Stop stops global playback.
func (s *Song) Stop() error {
	return s.ls.send(addrStop)
}

// SetTempo asks Live to change the set's tempo.
func (s *Song) SetTempo(bpm float64) error {
	return s.ls.send(addrTempo, bpm)
}

// PlayScene launches every clip in scene n.
func (s *Song) PlayScene(n int) error {
	return s.ls.send(addrPlayScene, n)
}

// SetVolume sets the master channel volume (0..1).
func (s *Song) SetVolume(v float64) error {
	return s.ls.send(kindMaster.addr("/volume"), v)
}

// SetPan sets the master channel pan (-1..1).
func (s *Song) SetPan(v float64) error {
	return s.ls.send(kindMaster.addr("/pan"), v)
}

// View focuses the master channel in Live's UI.
func (s *Song) View() error {
	return s.ls.send(addrMasterView)
}

// Snapshot accessors

// Tracks returns the current track list.
func (s *Song) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// Track returns the track at index id, or nil.
func (s *Song) Track(id int) *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.tracks) {
		return nil
	}
	return s.tracks[id]
}

// Returns returns the current return-track list.
func (s *Song) Returns() []*Return {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Return, len(s.returns))
	copy(out, s.returns)
	return out
}

// Return returns the return track at index id, or nil.
func (s *Song) Return(id int) *Return {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.returns) {
		return nil
	}
	return s.returns[id]
}

// Devices returns the master-chain device list.
func (s *Song) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// NumScenes returns the scene count Live last reported.
func (s *Song) NumScenes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numScenes
}

// Tempo returns the mirrored tempo in BPM.
func (s *Song) Tempo() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// Time returns the mirrored song position.
func (s *Song) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.songTime
}

// Beat returns the last beat number Live reported.
func (s *Song) Beat() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beat
}

// Scene returns the selected scene index.
func (s *Song) Scene() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Playing reports whether global playback is running.
func (s *Song) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Volume returns the mirrored master volume.
func (s *Song) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Pan returns the mirrored master pan.
func (s *Song) Pan() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pan
}
