// Package midi turns a MIDI controller into a control surface for the
// mirror: fader CCs drive track volume, pan and sends, pad notes launch
// clips. Everything goes out as commands on the song's transport; the
// mirror updates when Live's notifications come back, so moving a fader on
// a disconnected remote changes nothing locally.
package midi

import (
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
	"go.uber.org/zap"

	liveosc "github.com/dinchak/go-liveosc"
)

// CC layout: eight channel strips of volume, pan and first-send controls.
const (
	ccVolumeBase = 0  // CC 0-7: track 0-7 volume
	ccPanBase    = 8  // CC 8-15: track 0-7 pan
	ccSendBase   = 16 // CC 16-23: track 0-7 send 0
	numStrips    = 8

	gridWidth = 8 // pad grid: note = scene*gridWidth + track
)

// Bridge maps MIDI input onto song commands.
type Bridge struct {
	song *liveosc.Song
	log  *zap.Logger

	mu       sync.Mutex
	stopFunc func()
}

// NewBridge creates a bridge driving song.
func NewBridge(song *liveosc.Song, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{song: song, log: log}
}

// Run opens the named input port and starts translating. portName matches
// case-insensitively on a substring, the way ports are usually addressed.
func (b *Bridge) Run(portName string) error {
	inPort, err := findInPort(portName)
	if err != nil {
		return err
	}

	stop, err := gomidi.ListenTo(inPort, b.handle)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	b.mu.Lock()
	b.stopFunc = stop
	b.mu.Unlock()
	b.log.Info("midi bridge running", zap.String("port", inPort.String()))
	return nil
}

// Stop closes the input port.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopFunc != nil {
		b.stopFunc()
		b.stopFunc = nil
	}
}

func (b *Bridge) handle(msg gomidi.Message, timestampms int32) {
	var channel, key, velocity, cc, val uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
		b.launchClip(int(key))
	case msg.GetControlChange(&channel, &cc, &val):
		b.handleCC(int(cc), float64(val)/127.0)
	}
}

// launchClip maps a pad note onto a clip slot and launches it.
func (b *Bridge) launchClip(key int) {
	trackID := key % gridWidth
	sceneID := key / gridWidth
	track := b.song.Track(trackID)
	if track == nil {
		return
	}
	clip := track.Clip(sceneID)
	if clip == nil {
		return
	}
	b.log.Debug("launch clip", zap.Int("track", trackID), zap.Int("scene", sceneID))
	clip.Play()
}

func (b *Bridge) handleCC(cc int, v float64) {
	switch {
	case cc >= ccVolumeBase && cc < ccVolumeBase+numStrips:
		if t := b.song.Track(cc - ccVolumeBase); t != nil {
			t.SetVolume(v)
		}
	case cc >= ccPanBase && cc < ccPanBase+numStrips:
		if t := b.song.Track(cc - ccPanBase); t != nil {
			t.SetPan(v*2 - 1)
		}
	case cc >= ccSendBase && cc < ccSendBase+numStrips:
		if t := b.song.Track(cc - ccSendBase); t != nil {
			t.SetSend(0, v)
		}
	}
}

// findInPort matches a substring of the port name, case-insensitive.
func findInPort(name string) (drivers.In, error) {
	for _, in := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input port matching %q", name)
}

// InPorts lists the available MIDI input port names.
func InPorts() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}
