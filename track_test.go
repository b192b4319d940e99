package liveosc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liveosc "github.com/dinchak/go-liveosc"
)

func TestTrackIdentityFilter(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 2)

	lb.Deliver("/live/volume", 1, 0.9)
	assert.Zero(t, song.Track(0).Volume(), "message for track 1 must not touch track 0")
	assert.Equal(t, 0.9, song.Track(1).Volume())
}

func TestTrackMixerFields(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 1)
	tr := song.Track(0)

	lb.Deliver("/live/volume", 0, 0.7)
	lb.Deliver("/live/pan", 0, -0.25)
	lb.Deliver("/live/mute", 0, 1)
	lb.Deliver("/live/solo", 0, 1)
	lb.Deliver("/live/arm", 0, 1)
	lb.Deliver("/live/name/track", 0, "Bass")

	assert.Equal(t, 0.7, tr.Volume())
	assert.Equal(t, -0.25, tr.Pan())
	assert.True(t, tr.Mute())
	assert.True(t, tr.Solo())
	assert.True(t, tr.Arm())
	assert.Equal(t, "Bass", tr.Name())
}

func TestSendBatchFansOut(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 1)
	tr := song.Track(0)

	var got []liveosc.Change
	tr.On("send", func(c liveosc.Change) {
		got = append(got, c)
	})

	// One message, three (index, level) pairs: three discrete events.
	lb.Deliver("/live/send", 0, 0, 0.1, 1, 0.2, 2, 0.3)

	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.Num)
		assert.Equal(t, 0.0, c.Prev)
	}
	assert.Equal(t, 0.2, tr.Send(1))

	// A later single-send notification carries the right prev.
	got = nil
	lb.Deliver("/live/send", 0, 1, 0.5)
	require.Len(t, got, 1)
	assert.Equal(t, 0.2, got[0].Prev)
	assert.Equal(t, 0.5, got[0].Value)
}

func TestNameChangeRebuildsSubtree(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 2)
	lb.Deliver("/live/tracks", 1)
	lb.Deliver("/live/devicelist", 0, 0, "Operator")
	tr := song.Track(0)

	oldClips := tr.Clips()
	require.Len(t, oldClips, 2)
	require.Len(t, tr.Devices(), 1)

	var oldClipEvents int
	oldClips[0].On("state", func(c liveosc.Change) { oldClipEvents++ })

	lb.Reset()
	lb.Deliver("/live/name/track", 0, "Renamed")

	// Clip slots were rebuilt: same count, fresh instances.
	newClips := tr.Clips()
	require.Len(t, newClips, 2)
	for i := range newClips {
		assert.NotSame(t, oldClips[i], newClips[i])
	}

	// Device list is unknown until the re-requested list arrives.
	assert.Empty(t, tr.Devices())
	assert.NotEmpty(t, lb.SentTo("/live/devicelist"), "device list must be re-requested")

	// The destroyed clip's handlers are gone: a matching message reaches
	// only the new occupant of the slot.
	lb.Deliver("/live/clip/info", 0, 0, liveosc.ClipPlaying)
	assert.Zero(t, oldClipEvents)
	assert.Equal(t, liveosc.ClipPlaying, newClips[0].State())
}

func TestTrackInfoCompositeFansOut(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 2)
	lb.Deliver("/live/tracks", 1)
	tr := song.Track(0)

	var events []string
	tr.On("arm", func(c liveosc.Change) { events = append(events, "arm") })
	song.OnGlobal("clip:state", func(c liveosc.Change) { events = append(events, "state") })
	song.OnGlobal("clip:length", func(c liveosc.Change) { events = append(events, "length") })

	// (trackId, arm, then one (clipId, state, length) triple per clip).
	lb.Deliver("/live/track/info", 0, 1, 0, 2, 4.0, 1, 0, 0.0)

	assert.True(t, tr.Arm())
	assert.Equal(t, liveosc.ClipPlaying, tr.Clip(0).State())
	assert.Equal(t, 4.0, tr.Clip(0).Length())
	assert.Equal(t, liveosc.ClipEmpty, tr.Clip(1).State())
	// One discrete event per field, not one aggregate.
	assert.Equal(t, []string{"arm", "state", "length", "state", "length"}, events)
}

func TestDevicelistBuildsDevices(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 1)
	tr := song.Track(0)

	lb.Deliver("/live/devicelist", 0, 0, "Operator", 1, "Reverb")
	devices := tr.Devices()
	require.Len(t, devices, 2)
	assert.Equal(t, "Operator", devices[0].Name())
	assert.Equal(t, 1, devices[1].ID())

	// A fresh list replaces the old one wholesale.
	lb.Deliver("/live/devicelist", 0, 0, "Wavetable")
	devices = tr.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, "Wavetable", devices[0].Name())
}

func TestTrackCommands(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 2)
	tr := song.Track(1)
	lb.Reset()

	require.NoError(t, tr.SetVolume(0.3))
	require.NoError(t, tr.SetMute(true))
	require.NoError(t, tr.SetSend(2, 0.6))
	require.NoError(t, tr.Stop())
	require.NoError(t, tr.View())

	vol := lb.SentTo("/live/volume")
	require.Len(t, vol, 1)
	assert.Equal(t, 1, vol[0].Args.Int(0))
	assert.Equal(t, 0.3, vol[0].Args.Float(1))

	mute := lb.SentTo("/live/mute")
	require.Len(t, mute, 1)
	assert.Equal(t, 1, mute[0].Args.Int(1))

	send := lb.SentTo("/live/send")
	require.Len(t, send, 1)
	assert.Equal(t, []int{1, 2}, []int{send[0].Args.Int(0), send[0].Args.Int(1)})
	assert.Equal(t, 0.6, send[0].Args.Float(2))

	// Commands never mutate the mirror.
	assert.Zero(t, tr.Volume())
	assert.False(t, tr.Mute())

	assert.Len(t, lb.SentTo("/live/stop/track"), 1)
	assert.Len(t, lb.SentTo("/live/track/view"), 1)
}

func TestReturnMirrorsAndRebuilds(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/returns", 2)
	r := song.Return(1)
	require.NotNil(t, r)

	lb.Deliver("/live/return/volume", 1, 0.45)
	lb.Deliver("/live/return/name", 1, "ignored") // not a protocol address
	lb.Deliver("/live/name/return", 1, "Delay")
	lb.Deliver("/live/return/devicelist", 1, 0, "Echo")

	assert.Equal(t, 0.45, r.Volume())
	assert.Equal(t, "Delay", r.Name())
	require.Len(t, r.Devices(), 1)

	// Structural name change drops the device chain and re-requests it.
	lb.Reset()
	lb.Deliver("/live/name/return", 1, "Delay B")
	assert.Empty(t, r.Devices())
	assert.NotEmpty(t, lb.SentTo("/live/return/devicelist"))

	// Identity filter: return 0 is untouched throughout.
	assert.Zero(t, song.Return(0).Volume())
}
