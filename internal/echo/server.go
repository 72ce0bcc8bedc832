package echo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/danmuck/mllpctl/internal/hl7"
	"github.com/danmuck/mllpctl/internal/mllp"
	"github.com/danmuck/mllpctl/internal/observability"
	"github.com/panjf2000/ants/v2"
	"github.com/panjf2000/gnet/v2"
	"github.com/rs/zerolog/log"
)

var ErrNotRunning = errors.New("echo: server not running")

// ackFallbackReply answers inbound payloads ModeAck cannot parse.
const ackFallbackReply = "ACK"

// tickInterval paces the periodic connection-count report.
const tickInterval = 30 * time.Second

type Server struct {
	gnet.BuiltinEventEngine
	cfg    Config
	engine gnet.Engine
	booted atomic.Bool
	pool   *ants.Pool
}

func NewServer(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := ants.Options{
		ExpiryDuration:   time.Minute,
		Nonblocking:      false,
		MaxBlockingTasks: cfg.PoolSize,
		PanicHandler: func(e interface{}) {
			log.Error().Interface("panic", e).Msg("reply worker panicked")
		},
	}
	pool, err := ants.NewPool(cfg.PoolSize, ants.WithOptions(options))
	if err != nil {
		return nil, fmt.Errorf("echo: create reply pool: %w", err)
	}
	return &Server{cfg: cfg, pool: pool}, nil
}

// Run serves until Stop is called or the engine fails. It blocks.
func (s *Server) Run() error {
	defer s.pool.Release()
	if s.cfg.OpsAddr != "" {
		observability.StartOps(s.cfg.OpsAddr)
	}
	return gnet.Run(s, s.protoAddr(),
		gnet.WithMulticore(s.cfg.Multicore),
		gnet.WithTicker(true),
	)
}

// Stop shuts the engine down via the proto address Run registered it under.
// It fails with ErrNotRunning until Run has booted the engine.
func (s *Server) Stop(ctx context.Context) error {
	if !s.booted.Load() {
		return ErrNotRunning
	}
	return gnet.Stop(ctx, s.protoAddr())
}

func (s *Server) protoAddr() string {
	return "tcp://" + s.cfg.ListenAddr
}

func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.engine = eng
	s.booted.Store(true)
	log.Info().
		Str("addr", s.cfg.ListenAddr).
		Str("mode", string(s.cfg.Mode)).
		Bool("multicore", s.cfg.Multicore).
		Msg("echo server running")
	return gnet.None
}

func (s *Server) OnShutdown(gnet.Engine) {
	log.Info().Str("addr", s.cfg.ListenAddr).Msg("echo server shutting down")
}

func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	observability.SetActiveConnections(s.engine.CountConnections())
	log.Debug().Stringer("remote", c.RemoteAddr()).Msg("connection opened")
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	observability.SetActiveConnections(s.engine.CountConnections())
	log.Debug().Err(err).Stringer("remote", c.RemoteAddr()).Msg("connection closed")
	return gnet.None
}

func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	for {
		frame, action := nextFrame(c, s.cfg.MaxFrameBytes)
		if action == gnet.Close {
			log.Warn().
				Stringer("remote", c.RemoteAddr()).
				Int("buffered", c.InboundBuffered()).
				Msg("frame limit exceeded, closing connection")
			return gnet.Close
		}
		if frame == nil {
			return gnet.None
		}
		s.handleFrame(c, frame)
	}
}

func (s *Server) OnTick() (time.Duration, gnet.Action) {
	active := s.engine.CountConnections()
	observability.SetActiveConnections(active)
	log.Debug().Int("active_connections", active).Msg("tick")
	return tickInterval, gnet.None
}

// nextFrame extracts one complete frame from the inbound buffer. A nil
// frame with gnet.None means more bytes are needed.
func nextFrame(c gnet.Conn, maxBytes int) ([]byte, gnet.Action) {
	buffered := c.InboundBuffered()
	if buffered == 0 {
		return nil, gnet.None
	}
	buf, err := c.Peek(buffered)
	if err != nil {
		return nil, gnet.Close
	}
	idx := mllp.TrailerIndex(buf)
	if idx < 0 {
		if buffered > maxBytes {
			return nil, gnet.Close
		}
		return nil, gnet.None
	}
	end := idx + 2
	if end > maxBytes {
		return nil, gnet.Close
	}
	frame := make([]byte, end)
	copy(frame, buf[:end])
	_, _ = c.Discard(end)
	return frame, gnet.None
}

// handleFrame renders the reply on the event loop and hands the write to
// the pool, where the latency and drop simulation runs.
func (s *Server) handleFrame(c gnet.Conn, frame []byte) {
	received := time.Now()
	observability.RecordFrameReceived(len(frame))
	reply, mode := s.renderReply(mllp.Deframe(frame))

	err := s.pool.Submit(func() {
		if s.shouldDrop() {
			observability.RecordReplyDropped()
			log.Debug().Stringer("remote", c.RemoteAddr()).Msg("reply dropped")
			return
		}
		if d := s.replyDelay(); d > 0 {
			time.Sleep(d)
		}
		err := c.AsyncWrite(mllp.Frame(reply), func(c gnet.Conn) error {
			observability.RecordReplySent(mode, time.Since(received))
			return nil
		})
		if err != nil {
			log.Error().Err(err).Stringer("remote", c.RemoteAddr()).Msg("reply write failed")
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("reply pool rejected task")
	}
}

func (s *Server) renderReply(payload []byte) ([]byte, string) {
	switch s.cfg.Mode {
	case ModeEcho:
		return payload, "echo"
	case ModeStatic:
		return []byte(s.cfg.StaticReply), "static"
	default:
		text, err := mllp.DecodeText(payload)
		if err == nil {
			ack, ackErr := hl7.Ack(text)
			if ackErr == nil {
				return []byte(ack), "ack"
			}
			err = ackErr
		}
		observability.RecordAckFallback()
		log.Debug().Err(err).Msg("ack fallback")
		return []byte(ackFallbackReply), "ack_fallback"
	}
}

func (s *Server) shouldDrop() bool {
	if s.cfg.DropPercent <= 0 {
		return false
	}
	return rand.Intn(100) < s.cfg.DropPercent
}

func (s *Server) replyDelay() time.Duration {
	min, max := s.cfg.MinReplyDelay, s.cfg.MaxReplyDelay
	if max <= 0 {
		return 0
	}
	if max == min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}
