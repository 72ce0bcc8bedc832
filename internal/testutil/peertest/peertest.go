// Package peertest provides a single-connection loopback TCP endpoint with
// scripted behavior for exchange tests.
package peertest

import (
	"bytes"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// frameTrailer is the MLLP end-of-frame byte pair the drain loop watches for.
var frameTrailer = []byte{0x1C, 0x0D}

// Script controls how the peer treats its one accepted connection.
type Script struct {
	// DrainInbound reads until the inbound frame trailer before acting.
	// Leaving it false replies without waiting for the request.
	DrainInbound bool
	// Delay postpones the reply once the drain completes. The peer holds
	// the connection open and silent for the whole delay.
	Delay time.Duration
	// Reply is written verbatim. Empty means no reply: the connection is
	// closed after Delay.
	Reply []byte
	// ChunkSize splits Reply into writes of at most this many bytes,
	// separated by ChunkGap. Zero writes Reply in one call.
	ChunkSize int
	ChunkGap  time.Duration
	// HoldOpen keeps the connection open and silent after the reply, so
	// clients waiting for more bytes run into their read budget instead
	// of seeing a close.
	HoldOpen time.Duration
}

// Peer serves exactly one connection according to its script.
type Peer struct {
	host     string
	port     uint16
	ln       net.Listener
	quit     chan struct{}
	done     chan error
	inbound  []byte
	joinOnce sync.Once
	joinErr  error
}

// Start launches the peer and registers cleanup with t.
func Start(t *testing.T, script Script) *Peer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	host, portRaw, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.ParseUint(portRaw, 10, 16)
	require.NoError(t, err)

	p := &Peer{
		host: host,
		port: uint16(port),
		ln:   ln,
		quit: make(chan struct{}),
		done: make(chan error, 1),
	}
	go func() {
		p.done <- p.serve(script)
	}()
	t.Cleanup(func() {
		close(p.quit)
		_ = p.ln.Close()
		_ = p.join()
	})
	return p
}

func (p *Peer) Host() string { return p.host }
func (p *Peer) Port() uint16 { return p.port }

// Wait joins the serve goroutine and fails the test if the script did not
// run to completion. Tests that expect the client to abandon the peer (for
// example timeout tests) should skip Wait and let cleanup join silently.
func (p *Peer) Wait(t *testing.T) {
	t.Helper()
	require.NoError(t, p.join())
}

// Inbound returns the bytes drained from the connection. Call after Wait.
func (p *Peer) Inbound() []byte { return p.inbound }

func (p *Peer) join() error {
	p.joinOnce.Do(func() {
		p.joinErr = <-p.done
	})
	return p.joinErr
}

func (p *Peer) serve(script Script) error {
	conn, err := p.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}
	defer conn.Close()

	if script.DrainInbound {
		inbound, err := drainFrame(conn)
		if err != nil {
			return err
		}
		p.inbound = inbound
	}
	if err := p.pause(script.Delay); err != nil {
		return err
	}
	if err := writeReply(conn, script); err != nil {
		return err
	}
	return p.pause(script.HoldOpen)
}

func (p *Peer) pause(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.quit:
	case <-timer.C:
	}
	return nil
}

func writeReply(conn net.Conn, script Script) error {
	if len(script.Reply) == 0 {
		return nil
	}
	if script.ChunkSize <= 0 {
		_, err := conn.Write(script.Reply)
		return err
	}
	for off := 0; off < len(script.Reply); off += script.ChunkSize {
		end := off + script.ChunkSize
		if end > len(script.Reply) {
			end = len(script.Reply)
		}
		if _, err := conn.Write(script.Reply[off:end]); err != nil {
			return err
		}
		if script.ChunkGap > 0 {
			time.Sleep(script.ChunkGap)
		}
	}
	return nil
}

func drainFrame(conn net.Conn) ([]byte, error) {
	var buf []byte
	scratch := make([]byte, 1024)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			return nil, err
		}
		n, err := conn.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
			if bytes.HasSuffix(buf, frameTrailer) {
				return buf, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}
}
