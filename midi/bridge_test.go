package midi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	liveosc "github.com/dinchak/go-liveosc"
	"github.com/dinchak/go-liveosc/osc"
)

func newBridge(t *testing.T) (*Bridge, *osc.Loopback) {
	t.Helper()
	lb := osc.NewLoopback()
	song := liveosc.New(lb, liveosc.WithReadyWait(time.Hour))
	t.Cleanup(song.Destroy)
	lb.Deliver("/live/scenes", 4)
	lb.Deliver("/live/tracks", 4)
	lb.Reset()
	return NewBridge(song, nil), lb
}

func TestCCMapsToVolume(t *testing.T) {
	b, lb := newBridge(t)

	b.handle(gomidi.ControlChange(0, 2, 127), 0)

	sent := lb.SentTo("/live/volume")
	require.Len(t, sent, 1)
	assert.Equal(t, 2, sent[0].Args.Int(0))
	assert.Equal(t, 1.0, sent[0].Args.Float(1))
}

func TestCCMapsToPanCentered(t *testing.T) {
	b, lb := newBridge(t)

	b.handle(gomidi.ControlChange(0, ccPanBase+1, 0), 0)

	sent := lb.SentTo("/live/pan")
	require.Len(t, sent, 1)
	assert.Equal(t, 1, sent[0].Args.Int(0))
	assert.Equal(t, -1.0, sent[0].Args.Float(1))
}

func TestCCMapsToSend(t *testing.T) {
	b, lb := newBridge(t)

	b.handle(gomidi.ControlChange(0, ccSendBase, 127), 0)

	sent := lb.SentTo("/live/send")
	require.Len(t, sent, 1)
	assert.Equal(t, 0, sent[0].Args.Int(0))
	assert.Equal(t, 0, sent[0].Args.Int(1))
	assert.Equal(t, 1.0, sent[0].Args.Float(2))
}

func TestNoteLaunchesClip(t *testing.T) {
	b, lb := newBridge(t)

	// note = scene*gridWidth + track: note 9 is track 1, scene 1.
	b.handle(gomidi.NoteOn(0, 9, 100), 0)

	sent := lb.SentTo("/live/play/clipslot")
	require.Len(t, sent, 1)
	assert.Equal(t, 1, sent[0].Args.Int(0))
	assert.Equal(t, 1, sent[0].Args.Int(1))
}

func TestOutOfRangeInputIsDropped(t *testing.T) {
	b, lb := newBridge(t)

	b.handle(gomidi.ControlChange(0, ccVolumeBase+6, 64), 0) // track 6 of 4
	b.handle(gomidi.NoteOn(0, 127, 100), 0)                  // scene 15 of 4
	b.handle(gomidi.ControlChange(0, 99, 64), 0)             // unmapped CC

	assert.Empty(t, lb.Sent())
}

func TestNoteOffIsIgnored(t *testing.T) {
	b, lb := newBridge(t)

	b.handle(gomidi.NoteOn(0, 0, 0), 0) // velocity 0 means release
	assert.Empty(t, lb.Sent())
}
