package mllp

import "unicode/utf8"

const (
	// StartBlock opens every MLLP frame.
	StartBlock byte = 0x0B
	// EndBlock and CarriageReturn close every MLLP frame, in that order.
	EndBlock       byte = 0x1C
	CarriageReturn byte = 0x0D
)

// Frame wraps payload in MLLP block markers. Payload bytes are copied
// verbatim; the protocol has no escaping, so embedded marker bytes pass
// through unchanged.
func Frame(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+3)
	out = append(out, StartBlock)
	out = append(out, payload...)
	out = append(out, EndBlock, CarriageReturn)
	return out
}

// Deframe strips the block markers from a received frame. Each marker is
// removed only when present: peers on error paths sometimes omit the start
// byte, and a read cut short may lack the trailer. The payload between the
// markers is returned as-is.
func Deframe(frame []byte) []byte {
	out := frame
	if len(out) > 0 && out[0] == StartBlock {
		out = out[1:]
	}
	if n := len(out); n >= 2 && out[n-2] == EndBlock && out[n-1] == CarriageReturn {
		out = out[:n-2]
	}
	return out
}

// HasTrailer reports whether buf ends with the frame trailer.
func HasTrailer(buf []byte) bool {
	n := len(buf)
	return n >= 2 && buf[n-2] == EndBlock && buf[n-1] == CarriageReturn
}

// TrailerIndex returns the index of the first frame trailer in buf, or -1.
func TrailerIndex(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == EndBlock && buf[i+1] == CarriageReturn {
			return i
		}
	}
	return -1
}

// DecodeText validates b as UTF-8 and returns it as a string. Invalid
// byte sequences fail with ErrInvalidData rather than being replaced.
func DecodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidData
	}
	return string(b), nil
}
