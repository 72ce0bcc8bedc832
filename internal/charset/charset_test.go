package charset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeLatin1(t *testing.T) {
	// "blodtryck mätt" with the a-umlaut as a single latin-1 byte.
	data := []byte("blodtryck m\xe4tt")
	got, err := Decode("ISO-8859-1", data)
	require.NoError(t, err)
	require.Equal(t, "blodtryck mätt", got)
}

func TestDecodeEmptyNameValidatesUTF8(t *testing.T) {
	got, err := Decode("", []byte("MSH|^~\\&|HIS"))
	require.NoError(t, err)
	require.Equal(t, "MSH|^~\\&|HIS", got)

	_, err = Decode("", []byte{0xFF, 0xFE, 0xFD})
	require.ErrorIs(t, err, ErrInvalidText)

	got, err = Decode("utf-8", []byte("åäö"))
	require.NoError(t, err)
	require.Equal(t, "åäö", got)
}

func TestDecodeUnknownCharset(t *testing.T) {
	_, err := Decode("no-such-charset", []byte("x"))
	require.ErrorIs(t, err, ErrUnsupported)
}
