// Package osc provides the transport adapters the mirror runs on: a UDP
// adapter speaking OSC to the LiveOSC remote script, and an in-memory
// loopback used by tests and by consumers embedding a fake remote.
package osc
