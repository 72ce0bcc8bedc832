package mllp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameLayout(t *testing.T) {
	got := Frame([]byte("MSH|^~\\&|HIS"))
	require.Equal(t, StartBlock, got[0])
	require.Equal(t, []byte{EndBlock, CarriageReturn}, got[len(got)-2:])
	require.Equal(t, "MSH|^~\\&|HIS", string(got[1:len(got)-2]))
}

func TestFrameDeframeRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":            {},
		"plain":            []byte("MSA|AA|42"),
		"multi segment":    []byte("MSH|^~\\&|A|B|C|D|20240101||ORU^R01|1|P|2.3\rPID|1"),
		"leading start":    {StartBlock, 'x'},
		"trailing trailer": {'x', EndBlock, CarriageReturn},
		"markers inside":   {'a', StartBlock, 'b', EndBlock, 'c', CarriageReturn, 'd'},
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, payload, Deframe(Frame(payload)))
		})
	}
}

func TestDeframeToleratesMissingMarkers(t *testing.T) {
	require.Equal(t, []byte("ACK"), Deframe([]byte("ACK\x1c\r")))
	require.Equal(t, []byte("ACK"), Deframe([]byte("\x0bACK")))
	require.Equal(t, []byte("ACK"), Deframe([]byte("ACK")))
	require.Empty(t, Deframe(nil))
}

func TestHasTrailer(t *testing.T) {
	require.True(t, HasTrailer([]byte{'a', EndBlock, CarriageReturn}))
	require.True(t, HasTrailer([]byte{EndBlock, CarriageReturn}))
	require.False(t, HasTrailer([]byte{EndBlock}))
	require.False(t, HasTrailer([]byte{CarriageReturn, EndBlock}))
	require.False(t, HasTrailer(nil))
}

func TestTrailerIndex(t *testing.T) {
	require.Equal(t, -1, TrailerIndex([]byte("no trailer")))
	require.Equal(t, 0, TrailerIndex([]byte{EndBlock, CarriageReturn, 'x'}))
	require.Equal(t, 3, TrailerIndex([]byte{'a', 'b', 'c', EndBlock, CarriageReturn}))
	require.Equal(t, -1, TrailerIndex([]byte{EndBlock}))
}

func TestDecodeTextRejectsInvalidBytes(t *testing.T) {
	_, err := DecodeText([]byte{0xFF, 0xFE, 0xFD})
	require.ErrorIs(t, err, ErrInvalidData)

	got, err := DecodeText([]byte("MSA|AA|æøå"))
	require.NoError(t, err)
	require.Equal(t, "MSA|AA|æøå", got)
}
