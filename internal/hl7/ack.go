// Package hl7 provides the minimal MSH handling needed to acknowledge
// inbound messages. It is not a general HL7 parser: only the header fields
// an ACK echoes back are read.
package hl7

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNoMSH    = errors.New("hl7: message has no MSH segment")
	ErrShortMSH = errors.New("hl7: MSH segment too short")
)

// MSH carries the header fields an acknowledgement swaps or echoes.
type MSH struct {
	FieldSeparator    string
	EncodingChars     string
	SendingApp        string
	SendingFacility   string
	ReceivingApp      string
	ReceivingFacility string
	MessageType       string
	TriggerEvent      string
	ControlID         string
	ProcessingID      string
	Version           string
}

// ParseMSH extracts the header segment from an HL7 message. Segments may be
// separated by CR, LF, or CRLF; fields the message omits come back empty.
func ParseMSH(message string) (MSH, error) {
	seg := headerSegment(message)
	if seg == "" {
		return MSH{}, ErrNoMSH
	}
	if len(seg) < 4 {
		return MSH{}, ErrShortMSH
	}

	sep := string(seg[3])
	fields := strings.Split(seg[4:], sep)
	h := MSH{
		FieldSeparator:    sep,
		EncodingChars:     fieldAt(fields, 2),
		SendingApp:        fieldAt(fields, 3),
		SendingFacility:   fieldAt(fields, 4),
		ReceivingApp:      fieldAt(fields, 5),
		ReceivingFacility: fieldAt(fields, 6),
		ControlID:         fieldAt(fields, 10),
		ProcessingID:      fieldAt(fields, 11),
		Version:           fieldAt(fields, 12),
	}
	messageType := strings.SplitN(fieldAt(fields, 9), "^", 3)
	h.MessageType = messageType[0]
	if len(messageType) > 1 {
		h.TriggerEvent = messageType[1]
	}
	return h, nil
}

// Ack builds an application-accept acknowledgement: sender and receiver are
// swapped and the inbound control ID is echoed in MSA-2.
func Ack(message string) (string, error) {
	return ackAt(message, time.Now())
}

func ackAt(message string, at time.Time) (string, error) {
	h, err := ParseMSH(message)
	if err != nil {
		return "", err
	}

	enc := h.EncodingChars
	if enc == "" {
		enc = `^~\&`
	}
	processing := h.ProcessingID
	if processing == "" {
		processing = "P"
	}
	version := h.Version
	if version == "" {
		version = "2.5"
	}
	messageType := "ACK"
	if h.TriggerEvent != "" {
		messageType = "ACK^" + h.TriggerEvent + "^ACK"
	}

	sep := h.FieldSeparator
	msh := strings.Join([]string{
		"MSH" + sep + enc,
		h.ReceivingApp,
		h.ReceivingFacility,
		h.SendingApp,
		h.SendingFacility,
		at.Format("20060102150405"),
		"",
		messageType,
		h.ControlID,
		processing,
		version,
	}, sep)
	msa := strings.Join([]string{"MSA", "AA", h.ControlID}, sep)
	return msh + "\r" + msa + "\r", nil
}

// fieldAt returns MSH-n (n >= 2) from the fields following the separator.
func fieldAt(fields []string, n int) string {
	idx := n - 2
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func headerSegment(message string) string {
	segments := strings.FieldsFunc(message, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	for _, seg := range segments {
		if strings.HasPrefix(seg, "MSH") {
			return seg
		}
	}
	return ""
}
