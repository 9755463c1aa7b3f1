package osc

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// Server listens on Addr for incoming frames and hands every decoded message
// to the Dispatcher. Frames that fail to decode are reported to ErrorLog, if
// set, and otherwise dropped.
type Server struct {
	Addr        string
	Dispatcher  *Dispatcher
	ReadTimeout time.Duration
	ErrorLog    func(err error, from net.Addr)
}

// ListenAndServe retrieves incoming OSC frames and dispatches them.
func (s *Server) ListenAndServe() error {
	ln, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ln)
}

// Serve retrieves incoming OSC frames from the given connection and dispatches them
// in arrival order. It returns when reading from c fails for a reason other than a
// malformed frame, e.g. because c was closed.
func (s *Server) Serve(c net.PacketConn) error {
	if s.Dispatcher == nil {
		s.Dispatcher = &Dispatcher{}
	}

	var tempDelay time.Duration
	for {
		msg, addr, err := s.ReceiveMessage(c)
		if err != nil {
			if errors.Is(err, ErrMalformedFrame) {
				if s.ErrorLog != nil {
					s.ErrorLog(err, addr)
				}
				continue
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := 1 * time.Second; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0
		s.Dispatcher.Dispatch(msg)
	}
}

// ReceiveMessage reads one datagram from c and decodes it.
func (s *Server) ReceiveMessage(c net.PacketConn) (*Message, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, err
		}
	}

	b := make([]byte, MaxPacketSize)
	n, a, err := c.ReadFrom(b)
	if err != nil {
		return nil, a, err
	}

	msg, err := ParseMessage(b[:n])
	if err != nil {
		return nil, a, fmt.Errorf("from %v: %w", a, err)
	}
	return msg, a, nil
}
