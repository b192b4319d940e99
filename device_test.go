package liveosc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	liveosc "github.com/dinchak/go-liveosc"
	"github.com/dinchak/go-liveosc/osc"
)

// trackDevice builds one track with one device on it.
func trackDevice(t *testing.T) (*liveosc.Song, *osc.Loopback, *liveosc.Device) {
	t.Helper()
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 1)
	lb.Deliver("/live/devicelist", 0, 0, "Operator")
	devices := song.Track(0).Devices()
	require.Len(t, devices, 1)
	return song, lb, devices[0]
}

func TestDeviceRequestsParamsOnConstruction(t *testing.T) {
	_, lb, _ := trackDevice(t)

	sent := lb.SentTo("/live/device")
	require.Len(t, sent, 1)
	assert.Equal(t, 0, sent[0].Args.Int(0))
	assert.Equal(t, 0, sent[0].Args.Int(1))
	assert.Len(t, lb.SentTo("/live/device/range"), 1)
}

func TestParamBatchFansOut(t *testing.T) {
	_, lb, d := trackDevice(t)

	var got []liveosc.Change
	d.On("param", func(c liveosc.Change) { got = append(got, c) })

	// (trackId, deviceId, then (index, value, name) triples).
	lb.Deliver("/live/device/param", 0, 0, 0, 0.5, "Attack", 1, 0.7, "Decay")

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Num)
	assert.Equal(t, "Attack", got[0].Name)
	assert.Equal(t, 0.5, got[0].Value)
	assert.Equal(t, 1, got[1].Num)

	// Entries are created lazily, on first touch.
	p, ok := d.Param(1)
	require.True(t, ok)
	assert.Equal(t, 0.7, p.Value)
	assert.Equal(t, "Decay", p.Name)
	_, ok = d.Param(2)
	assert.False(t, ok)

	// A later single-param update carries the right prev.
	got = nil
	lb.Deliver("/live/device/param", 0, 0, 0, 0.6, "Attack")
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Prev)
	assert.Equal(t, 0.6, got[0].Value)
}

func TestParamRange(t *testing.T) {
	_, lb, d := trackDevice(t)

	lb.Deliver("/live/device/range", 0, 0, 0, 20.0, 20000.0)
	lb.Deliver("/live/device/param", 0, 0, 0, 440.0, "Frequency")

	p, ok := d.ParamByName("Frequency")
	require.True(t, ok)
	assert.Equal(t, 20.0, p.Min)
	assert.Equal(t, 20000.0, p.Max)
	assert.Equal(t, 440.0, p.Value)
}

func TestRangeBatchFansOut(t *testing.T) {
	song, lb, d := trackDevice(t)

	var local []liveosc.Change
	d.On("min", func(c liveosc.Change) { local = append(local, c) })
	d.On("max", func(c liveosc.Change) { local = append(local, c) })
	var global []string
	song.OnGlobal("device:min", func(c liveosc.Change) { global = append(global, "min") })
	song.OnGlobal("device:max", func(c liveosc.Change) { global = append(global, "max") })

	// (trackId, deviceId, then (index, min, max) triples).
	lb.Deliver("/live/device/range", 0, 0, 0, 20.0, 20000.0, 1, 0.0, 1.0)

	require.Len(t, local, 4)
	assert.Equal(t, 20.0, local[0].Value)
	assert.Equal(t, 20000.0, local[1].Value)
	assert.Equal(t, 1, local[2].Num)
	assert.Equal(t, []string{"min", "max", "min", "max"}, global)

	// A later update carries the stored prev.
	local = nil
	lb.Deliver("/live/device/range", 0, 0, 0, 30.0, 15000.0)
	require.Len(t, local, 2)
	assert.Equal(t, 20.0, local[0].Prev)
	assert.Equal(t, 20000.0, local[1].Prev)

	p, ok := d.Param(0)
	require.True(t, ok)
	assert.Equal(t, 30.0, p.Min)
	assert.Equal(t, 15000.0, p.Max)
}

func TestDeviceIdentityFilter(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/tracks", 2)
	lb.Deliver("/live/devicelist", 0, 0, "A")
	lb.Deliver("/live/devicelist", 1, 0, "B")

	lb.Deliver("/live/device/param", 1, 0, 0, 0.9, "Gain")

	_, ok := song.Track(0).Devices()[0].Param(0)
	assert.False(t, ok, "device on track 0 must drop track 1 traffic")
	p, ok := song.Track(1).Devices()[0].Param(0)
	require.True(t, ok)
	assert.Equal(t, 0.9, p.Value)
}

func TestSetParamByName(t *testing.T) {
	_, lb, d := trackDevice(t)
	lb.Deliver("/live/device/param", 0, 0, 3, 0.5, "Dry/Wet")
	lb.Reset()

	require.NoError(t, d.SetParamByName("Dry/Wet", 0.8))
	sent := lb.SentTo("/live/device")
	require.Len(t, sent, 1)
	assert.Equal(t, []int{0, 0, 3}, []int{sent[0].Args.Int(0), sent[0].Args.Int(1), sent[0].Args.Int(2)})
	assert.Equal(t, 0.8, sent[0].Args.Float(3))

	// The send is not an update: the mirrored value waits for the
	// notification.
	p, _ := d.Param(3)
	assert.Equal(t, 0.5, p.Value)
}

func TestSetParamByNameUnresolved(t *testing.T) {
	_, lb, d := trackDevice(t)
	lb.Reset()

	err := d.SetParamByName("No Such Knob", 0.8)
	require.ErrorIs(t, err, liveosc.ErrNoSuchParam)
	assert.Empty(t, lb.SentTo("/live/device"), "an unresolved name must not send")
}

func TestMasterDeviceAddressing(t *testing.T) {
	song, lb := newSong(t)
	lb.Deliver("/live/master/devicelist", 0, "Limiter")
	d := song.Devices()[0]

	// No leading owner id on master device messages.
	lb.Deliver("/live/master/device/param", 0, 0, 0.3, "Gain")
	p, ok := d.Param(0)
	require.True(t, ok)
	assert.Equal(t, 0.3, p.Value)

	lb.Reset()
	require.NoError(t, d.SetParam(0, 0.4))
	sent := lb.SentTo("/live/master/device")
	require.Len(t, sent, 1)
	require.Equal(t, 3, sent[0].Args.Len())
	assert.Equal(t, 0, sent[0].Args.Int(0))
	assert.Equal(t, 0, sent[0].Args.Int(1))
	assert.Equal(t, 0.4, sent[0].Args.Float(2))
}

func TestParamRenameUpdatesNameIndex(t *testing.T) {
	_, lb, d := trackDevice(t)

	lb.Deliver("/live/device/param", 0, 0, 0, 0.5, "Macro 1")
	lb.Deliver("/live/device/param", 0, 0, 0, 0.5, "Cutoff")

	_, ok := d.ParamByName("Macro 1")
	assert.False(t, ok, "stale name must not resolve")
	_, ok = d.ParamByName("Cutoff")
	assert.True(t, ok)
}
