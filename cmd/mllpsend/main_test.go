package main

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeMessageFile(t *testing.T, name string, body []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	return path
}

// serveOneAck accepts a single connection, drains one inbound frame into
// inbound, and replies with a framed acknowledgement.
func serveOneAck(ln net.Listener, inbound chan<- []byte) error {
	defer ln.Close()
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	defer conn.Close()

	var buf []byte
	scratch := make([]byte, 4096)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			return err
		}
		n, err := conn.Read(scratch)
		if n > 0 {
			buf = append(buf, scratch[:n]...)
			if bytes.HasSuffix(buf, []byte{0x1C, 0x0D}) {
				break
			}
		}
		if err != nil {
			return err
		}
	}
	inbound <- buf
	_, err = conn.Write([]byte("\x0bMSA|AA|101\x1c\r"))
	return err
}

func TestRunSendsMessageAndPrintsReply(t *testing.T) {
	msg := "MSH|^~\\&|HIS|RIH|EKG|EKG|200202150930||ORU^R01|101|P|2.1"
	msgPath := writeMessageFile(t, "oru.hl7", []byte(msg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	inbound := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() {
		done <- serveOneAck(ln, inbound)
	}()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port),
		"--message", msgPath,
		"--timeout", "5",
	})
	require.NoError(t, root.Execute())
	require.NoError(t, <-done)

	require.Equal(t, append(append([]byte{0x0B}, msg...), 0x1C, 0x0D), <-inbound)
	require.Contains(t, out.String(), "HL7 Message Sent")
	require.Contains(t, out.String(), "Response from server:\nMSA|AA|101")
}

func TestRunDecodesMessageFileCharset(t *testing.T) {
	// "mätt" with the a-umlaut as a single latin-1 byte.
	msgPath := writeMessageFile(t, "latin1.hl7", []byte("MSH|^~\\&|HIS|RIH|EKG|EKG|1||ORU^R01|7|P|2.1\rOBX|1|TX|m\xe4tt"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	inbound := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() {
		done <- serveOneAck(ln, inbound)
	}()

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetArgs([]string{
		"-H", "127.0.0.1",
		"-p", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port),
		"-m", msgPath,
		"-t", "5",
		"--charset", "ISO-8859-1",
	})
	require.NoError(t, root.Execute())
	require.NoError(t, <-done)
	require.Contains(t, string(<-inbound), "mätt")
}

func TestRunRequiresPortAndMessage(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--message", "/tmp/nope.hl7"})
	require.ErrorIs(t, root.Execute(), errPortRequired)

	root = newRootCmd()
	root.SetArgs([]string{"--port", "2575"})
	require.ErrorIs(t, root.Execute(), errMessageRequired)
}

func TestRunReportsMissingMessageFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--port", "2575", "--message", filepath.Join(t.TempDir(), "absent.hl7")})
	require.ErrorContains(t, root.Execute(), "read message file")
}
