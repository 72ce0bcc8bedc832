package echo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects how the responder answers each inbound frame.
type Mode string

const (
	// ModeAck replies with an HL7 acknowledgement built from the inbound MSH.
	ModeAck Mode = "ack"
	// ModeEcho replies with the inbound payload unchanged.
	ModeEcho Mode = "echo"
	// ModeStatic replies with the configured text.
	ModeStatic Mode = "static"
)

var (
	ErrListenAddrRequired = errors.New("echo: listen address required")
	ErrInvalidMode        = errors.New("echo: invalid reply mode")
	ErrInvalidDropRate    = errors.New("echo: drop percent must be within 0..100")
	ErrInvalidDelayRange  = errors.New("echo: reply delay range inverted")
	ErrInvalidMaxFrame    = errors.New("echo: max frame bytes must be positive")
	ErrInvalidPoolSize    = errors.New("echo: pool size must be positive")
)

// Config defines the responder's listen surface and reply behavior.
type Config struct {
	ListenAddr  string
	Mode        Mode
	StaticReply string

	// MinReplyDelay and MaxReplyDelay bound the simulated processing time
	// per frame. Equal values give a fixed delay; zero disables the
	// simulation.
	MinReplyDelay time.Duration
	MaxReplyDelay time.Duration
	// DropPercent of inbound frames get no reply at all, so client
	// timeout paths can be exercised end to end.
	DropPercent int

	// MaxFrameBytes closes connections that buffer this much without a
	// frame trailer.
	MaxFrameBytes int
	Multicore     bool
	PoolSize      int
	// OpsAddr serves /metrics and pprof when set.
	OpsAddr string
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:    "127.0.0.1:2575",
		Mode:          ModeAck,
		MaxFrameBytes: 1 << 20,
		PoolSize:      1024,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return ErrListenAddrRequired
	}
	switch c.Mode {
	case ModeAck, ModeEcho, ModeStatic:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.DropPercent < 0 || c.DropPercent > 100 {
		return ErrInvalidDropRate
	}
	if c.MinReplyDelay < 0 || c.MaxReplyDelay < 0 || c.MaxReplyDelay < c.MinReplyDelay {
		return ErrInvalidDelayRange
	}
	if c.MaxFrameBytes <= 0 {
		return ErrInvalidMaxFrame
	}
	if c.PoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	return nil
}
