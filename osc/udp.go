package osc

import (
	"fmt"
	"sort"
	"sync"

	goosc "github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	liveosc "github.com/dinchak/go-liveosc"
)

// Default LiveOSC ports: the remote script listens on 9000 and notifies on
// 9001.
const (
	DefaultSendPort   = 9000
	DefaultListenPort = 9001
)

// UDP speaks OSC to the LiveOSC remote script over datagram sockets.
// Delivery is at-most-once and unordered; the mirror is built to tolerate
// that. Inbound messages are dispatched on the server's single read loop
// goroutine.
type UDP struct {
	client *goosc.Client
	server *goosc.Server
	disp   *goosc.StandardDispatcher
	log    *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]liveosc.Handler
	closed bool
}

// UDPOption configures the adapter.
type UDPOption func(*UDP)

// WithUDPLogger routes send/receive diagnostics to log.
func WithUDPLogger(log *zap.Logger) UDPOption {
	return func(u *UDP) { u.log = log }
}

// NewUDP creates an adapter sending to host:sendPort and receiving on
// listenPort. Call ListenAndServe to start the inbound side.
func NewUDP(host string, sendPort, listenPort int, opts ...UDPOption) *UDP {
	u := &UDP{
		client: goosc.NewClient(host, sendPort),
		disp:   goosc.NewStandardDispatcher(),
		log:    zap.NewNop(),
		subs:   make(map[string]map[int]liveosc.Handler),
	}
	u.server = &goosc.Server{
		Addr:       fmt.Sprintf(":%d", listenPort),
		Dispatcher: u.disp,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ListenAndServe runs the inbound read loop. It blocks; run it in a
// goroutine.
func (u *UDP) ListenAndServe() error {
	return u.server.ListenAndServe()
}

// Close stops dispatching inbound messages. Handlers registered after
// Close are never called.
func (u *UDP) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
}

// Send encodes and sends one OSC message. Fire-and-forget: a datagram that
// is lost stays lost.
func (u *UDP) Send(address string, args ...any) error {
	msg := goosc.NewMessage(address)
	for _, arg := range args {
		msg.Append(wireArg(arg))
	}
	u.log.Debug("osc send", zap.String("address", address), zap.Int("args", len(args)))
	return u.client.Send(msg)
}

// Subscribe registers h for address. The dispatcher route is added on the
// first subscriber and fans out to everyone registered at delivery time.
func (u *UDP) Subscribe(address string, h liveosc.Handler) liveosc.Subscription {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.nextID++
	m, ok := u.subs[address]
	if !ok {
		m = make(map[int]liveosc.Handler)
		u.subs[address] = m
		addr := address
		u.disp.AddMsgHandler(addr, func(msg *goosc.Message) {
			u.dispatch(addr, liveosc.Args(msg.Arguments))
		})
	}
	m[u.nextID] = h
	return liveosc.Subscription{Address: address, ID: u.nextID}
}

// Unsubscribe removes exactly the handler sub identifies. The dispatcher
// route stays; with no subscribers it drops messages on the floor.
func (u *UDP) Unsubscribe(sub liveosc.Subscription) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if m, ok := u.subs[sub.Address]; ok {
		delete(m, sub.ID)
	}
}

func (u *UDP) dispatch(address string, args liveosc.Args) {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	m := u.subs[address]
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]liveosc.Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m[id])
	}
	u.mu.Unlock()

	u.log.Debug("osc receive", zap.String("address", address), zap.Int("handlers", len(handlers)))
	for _, h := range handlers {
		h(args)
	}
}

// wireArg maps Go values onto OSC wire types: integers become int32,
// floats float32, strings stay strings, bools become 0/1 int32.
func wireArg(arg any) any {
	switch v := arg.(type) {
	case int:
		return int32(v)
	case int32:
		return v
	case int64:
		return int32(v)
	case float64:
		return float32(v)
	case float32:
		return v
	case bool:
		if v {
			return int32(1)
		}
		return int32(0)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
