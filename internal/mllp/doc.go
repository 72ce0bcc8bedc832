// Package mllp owns MLLP wire framing and the one-shot exchange.
//
// Ownership boundary:
// - block framing primitives (start byte, end byte, carriage return)
// - single connect/send/receive exchange with deadline enforcement
// - response decoding and error classification
//
// The package holds no state between exchanges and does not log;
// callers own message sourcing, retries, and reporting.
package mllp
