// internal/console/server.go
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/deskd/internal/bus"
)

// Publisher is the bus surface the console publishes on.
type Publisher interface {
	Publish(msg bus.Message) error
}

// Server is a line-oriented TCP console. One client at a time; a new
// connection replaces the old one. Every command is a bus publish, and
// answers come back as bus subscriptions printed to the active client.
type Server struct {
	listen string
	pub    Publisher
	log    *slog.Logger

	start time.Time

	mu  sync.Mutex
	out io.Writer

	// Observed bus state, shown by the status command.
	heightTenths uint32
	hasHeight    bool
	present      bool
}

func New(listen string, pub Publisher, log *slog.Logger) (*Server, error) {
	if listen == "" {
		return nil, errors.New("console: listen address required")
	}
	return &Server{
		listen: listen,
		pub:    pub,
		log:    log,
		start:  time.Now(),
	}, nil
}

// Run accepts clients until ctx is canceled. A non-nil return is a
// contract violation or a dead listener; the caller halts.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("console: listen %s: %w", s.listen, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("console listening", "addr", s.listen)

	conns := make(chan net.Conn)
	acceptErr := make(chan error, 1)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			conns <- conn
		}
	}()

	fatal := make(chan error, 1)
	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-acceptErr:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("console: accept: %w", err)

		case err := <-fatal:
			return err

		case conn := <-conns:
			s.log.Info("console client connected", "remote", conn.RemoteAddr())
			s.attach(conn)
			go s.serve(conn, fatal)
		}
	}
}

func (s *Server) attach(conn net.Conn) {
	s.mu.Lock()
	old := s.out
	s.out = conn
	s.mu.Unlock()

	if c, ok := old.(io.Closer); ok && old != nil {
		c.Close()
	}
	s.printf("deskd console (type 'help')")
}

func (s *Server) detach(conn net.Conn) {
	s.mu.Lock()
	if s.out == io.Writer(conn) {
		s.out = nil
	}
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) serve(conn net.Conn, fatal chan<- error) {
	defer s.detach(conn)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		quit, err := s.dispatch(line)
		if err != nil {
			select {
			case fatal <- err:
			default:
			}
			return
		}
		if quit {
			return
		}
	}
}

// printf writes one line to the active client. A wedged client is cut
// loose rather than allowed to stall bus delivery.
func (s *Server) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.out == nil {
		return
	}
	if c, ok := s.out.(net.Conn); ok {
		c.SetWriteDeadline(time.Now().Add(time.Second))
	}
	if _, err := fmt.Fprintf(s.out, format+"\n", args...); err != nil {
		s.log.Warn("console write failed, dropping client", "err", err)
		if c, ok := s.out.(io.Closer); ok {
			c.Close()
		}
		s.out = nil
	}
}

// HandleMessage prints bus answers and tracks state for the status
// command. Runs on publisher goroutines; it must only print and record.
func (s *Server) HandleMessage(msg bus.Message) {
	switch msg.Topic {
	case bus.TopicLoopback:
		s.printf("pong")

	case bus.TopicHeightUpdate:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.heightTenths = v
		s.hasHeight = true
		s.mu.Unlock()
		s.printf("height: %.1f cm", float64(v)/10)

	case bus.TopicThresholdValue:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return
		}
		s.printf("threshold: %d devices", v)

	case bus.TopicIntervalValue:
		v, err := bus.DecodeU32(msg.Data)
		if err != nil {
			return
		}
		s.printf("interval: %d min", v)

	case bus.TopicCountdownDone:
		s.printf("timer finished")

	case bus.TopicPresenceDetected:
		s.mu.Lock()
		s.present = true
		s.mu.Unlock()

	case bus.TopicPresenceLost:
		s.mu.Lock()
		s.present = false
		s.mu.Unlock()
	}
}
