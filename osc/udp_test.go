package osc

import (
	"testing"

	goosc "github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/assert"

	liveosc "github.com/dinchak/go-liveosc"
)

func TestWireArgTypes(t *testing.T) {
	assert.Equal(t, int32(3), wireArg(3))
	assert.Equal(t, int32(3), wireArg(int64(3)))
	assert.Equal(t, float32(0.5), wireArg(0.5))
	assert.Equal(t, "Bass", wireArg("Bass"))
	assert.Equal(t, int32(1), wireArg(true))
	assert.Equal(t, int32(0), wireArg(false))
}

func TestUDPDispatchFansOut(t *testing.T) {
	u := NewUDP("127.0.0.1", DefaultSendPort, DefaultListenPort)

	var got []liveosc.Args
	u.Subscribe("/live/tempo", func(args liveosc.Args) { got = append(got, args) })
	sub := u.Subscribe("/live/tempo", func(args liveosc.Args) { got = append(got, args) })
	u.Unsubscribe(sub)

	// Feed the dispatcher directly with a decoded message, the way the
	// read loop does.
	u.dispatch("/live/tempo", liveosc.Args{float32(126.0)})

	assert.Len(t, got, 1)
	assert.Equal(t, 126.0, got[0].Float(0))
}

func TestUDPCloseStopsDispatch(t *testing.T) {
	u := NewUDP("127.0.0.1", DefaultSendPort, DefaultListenPort)

	var got int
	u.Subscribe("/live/beat", func(args liveosc.Args) { got++ })
	u.Close()
	u.dispatch("/live/beat", liveosc.Args{int32(1)})

	assert.Zero(t, got)
}

func TestInboundArgsDecode(t *testing.T) {
	// Wire arguments arrive as int32/float32/string; Args must read them
	// as Go values.
	msg := goosc.NewMessage("/live/device/param")
	msg.Append(int32(0))
	msg.Append(int32(2))
	msg.Append(float32(0.75))
	msg.Append("Cutoff")
	args := liveosc.Args(msg.Arguments)

	assert.Equal(t, 0, args.Int(0))
	assert.Equal(t, 2, args.Int(1))
	assert.InDelta(t, 0.75, args.Float(2), 1e-6)
	assert.Equal(t, "Cutoff", args.String(3))
}
