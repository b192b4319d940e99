// Package liveosc maintains a live in-memory mirror of an Ableton Live set
// by exchanging OSC messages with the LiveOSC remote script.
//
// A Song is the aggregate root. Constructing one subscribes it to the
// session-level address set and immediately issues a full refresh: counts of
// tracks, returns and scenes are requested, and the replies drive
// construction of the child entities (Track, Return, Clip, Device). Each
// child subscribes to its own addresses and requests its own state, so the
// mirror fills in piecemeal as replies arrive.
//
// State flows one way: mirrored fields are updated only by inbound
// notifications. Mutator methods (SetVolume, Play, SetParam, ...) are pure
// sends - the local field changes when Live's notification comes back, not
// before. Every tracked mutation is published twice: on the entity's own
// event channel first, then on the Song-wide sink under a "kind:field" name.
//
// The transport is a lossy, unordered datagram channel. There is no
// detection or recovery for a lost or reordered message: a field simply
// keeps its last known value until a later notification or a full refresh
// supersedes it. That is a known limitation of the protocol, and Refresh is
// the only corrective exposed to consumers.
//
// All mutation happens on the transport's dispatch goroutine. Event
// callbacks run on that goroutine too and should hand work off (for example
// over a channel) rather than block.
package liveosc
