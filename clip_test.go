package liveosc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liveosc "github.com/dinchak/go-liveosc"
)

func TestClipIdentityFilter(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 2)
	lb.Deliver("/live/tracks", 2)

	lb.Deliver("/live/clip/info", 1, 1, liveosc.ClipPlaying)

	assert.Equal(t, liveosc.ClipPlaying, song.Track(1).Clip(1).State())
	assert.Equal(t, liveosc.ClipEmpty, song.Track(1).Clip(0).State())
	assert.Equal(t, liveosc.ClipEmpty, song.Track(0).Clip(1).State())
}

func TestClipLoopState(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 1)
	lb.Deliver("/live/tracks", 1)
	c := song.Track(0).Clip(0)

	var got []liveosc.Change
	c.On("loopstart", func(ch liveosc.Change) { got = append(got, ch) })

	lb.Deliver("/live/clip/loopstart", 0, 0, 1.0)
	lb.Deliver("/live/clip/loopend", 0, 0, 5.0)
	lb.Deliver("/live/clip/loopstate", 0, 0, 1)
	lb.Deliver("/live/name/clip", 0, 0, "Verse")

	assert.Equal(t, 1.0, c.LoopStart())
	assert.Equal(t, 5.0, c.LoopEnd())
	assert.True(t, c.Looping())
	assert.Equal(t, "Verse", c.Name())

	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Prev)
	assert.Equal(t, 1.0, got[0].Value)
}

func TestClipEventsCarryTrackID(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 3)
	lb.Deliver("/live/tracks", 2)

	var got []liveosc.Change
	song.OnGlobal("clip:state", func(c liveosc.Change) { got = append(got, c) })

	lb.Deliver("/live/clip/info", 1, 2, liveosc.ClipTriggered)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].TrackID)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, liveosc.ClipTriggered, got[0].Value)
}

func TestClipCommands(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/scenes", 2)
	lb.Deliver("/live/tracks", 1)
	c := song.Track(0).Clip(1)
	lb.Reset()

	require.NoError(t, c.Play())
	require.NoError(t, c.Stop())
	require.NoError(t, c.SetLoopStart(2.0))
	require.NoError(t, c.SetLooping(true))
	require.NoError(t, c.View())

	play := lb.SentTo("/live/play/clipslot")
	require.Len(t, play, 1)
	assert.Equal(t, 0, play[0].Args.Int(0))
	assert.Equal(t, 1, play[0].Args.Int(1))

	assert.Len(t, lb.SentTo("/live/stop/clip"), 1)
	assert.Len(t, lb.SentTo("/live/clip/view"), 1)

	loop := lb.SentTo("/live/clip/loopstart")
	require.Len(t, loop, 1)
	assert.Equal(t, 2.0, loop[0].Args.Float(2))

	// Playback state is untouched until Live notifies.
	assert.Equal(t, liveosc.ClipEmpty, c.State())
}
