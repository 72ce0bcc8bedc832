// Package charset converts message files from a named IANA charset to
// UTF-8 before they enter the wire path.
package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupported = errors.New("charset: unsupported encoding")
	ErrInvalidText = errors.New("charset: input is not valid utf-8")
)

// Decode converts data from the named charset to a UTF-8 string. An empty
// name means the data is already UTF-8 and is only validated. Names the
// index does not know, or knows but cannot decode, fail with ErrUnsupported.
func Decode(name string, data []byte) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || isUTF8Name(trimmed) {
		if !utf8.Valid(data) {
			return "", ErrInvalidText
		}
		return string(data), nil
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil || enc == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("charset: decode %s: %w", trimmed, err)
	}
	if !utf8.Valid(out) {
		return "", ErrInvalidText
	}
	return string(out), nil
}

func isUTF8Name(name string) bool {
	return strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8")
}
