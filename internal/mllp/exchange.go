package mllp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Exchange performs one MLLP exchange: dial host:port, send message as a
// single frame, then read until the frame trailer arrives, the peer closes,
// or the read budget expires. It returns the decoded response payload.
//
// A reply that stopped short of its trailer is still deframed and decoded;
// an exchange that produced no response bytes at all fails with ErrTimedOut,
// which also covers a peer that closed without writing.
func Exchange(host string, port uint16, message string, cfg Config) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", ErrHostRequired
	}
	if cfg.Timeout <= 0 {
		return "", ErrTimeoutRequired
	}

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.Dial("tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(cfg.Timeout)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if _, err := conn.Write(Frame([]byte(message))); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	buf, err := readResponse(conn, cfg.Timeout)
	if err != nil {
		return "", err
	}
	if len(buf) == 0 {
		return "", ErrTimedOut
	}
	return DecodeText(Deframe(buf))
}

// readResponse accumulates reply bytes until the trailer ends the buffer,
// the peer closes, or a read exceeds its budget. The deadline is refreshed
// before every read, so the budget bounds each read rather than the whole
// response. Read errors other than EOF and deadline expiry are returned to
// the caller unwrapped.
func readResponse(conn net.Conn, timeout time.Duration) ([]byte, error) {
	var buf []byte
	scratch := make([]byte, readChunkSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		n, err := conn.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
			if HasTrailer(buf) {
				return buf, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return buf, nil
			}
			return nil, err
		}
	}
}
