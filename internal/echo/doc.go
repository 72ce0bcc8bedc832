// Package echo owns the responder daemon: an event-driven MLLP endpoint
// that answers each inbound frame according to its reply mode.
//
// Ownership boundary:
// - inbound frame extraction from the connection buffer
// - reply rendering (ack, echo, static) and reply scheduling
// - latency and drop simulation
//
// The sender side lives in internal/mllp and shares nothing with this
// package but the framing primitives.
package echo
