// SPDX-License-Identifier: GPL-3.0-or-later

// Package udpserver runs a datagram handler behind a UDP socket.
//
// Each datagram is copied into its own buffer and handed to a bounded
// pool of workers. One request, one response: datagrams that the handler
// rejects are dropped.
package udpserver

import (
	"context"
	"errors"
	"net"
	"slices"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// Config holds server configuration.
type Config struct {
	// Addr is the UDP address to listen on.
	Addr string

	// Workers is the maximum number of datagrams handled concurrently.
	Workers int

	// MaxDatagramSize is the size of the receive buffer.
	MaxDatagramSize int
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Addr:            "127.0.0.1:2053",
		Workers:         16,
		MaxDatagramSize: 512,
	}
}

// Handler turns a request datagram into a response datagram.
//
// A non-nil error means that no response must be sent.
type Handler interface {
	ServeDatagram(raw []byte) ([]byte, error)
}

// Server serves a [Handler] over UDP.
//
// Construct using [New].
type Server struct {
	config  *Config
	handler Handler
}

// New constructs a new [*Server].
func New(config *Config, handler Handler) *Server {
	return &Server{config: config, handler: handler}
}

// ListenAndServe listens on the configured address and calls [*Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context) error {
	pc, err := net.ListenPacket("udp", s.config.Addr)
	if err != nil {
		return err
	}
	glog.Infof("udpserver: listening on %s", pc.LocalAddr())
	return s.Serve(ctx, pc)
}

// Serve reads datagrams from pc until ctx is done, then closes pc, waits
// for the in-flight datagrams, and returns nil. Any other read failure
// that closes pc is returned. Datagrams larger than MaxDatagramSize are
// dropped.
func (s *Server) Serve(ctx context.Context, pc net.PacketConn) error {
	stop := context.AfterFunc(ctx, func() {
		pc.Close()
	})
	defer stop()

	var group errgroup.Group
	group.SetLimit(max(s.config.Workers, 1))
	defer group.Wait()

	// One extra byte tells oversized datagrams apart from those that fit
	// exactly, since ReadFrom silently truncates.
	buf := make([]byte, s.config.MaxDatagramSize+1)
	for {
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			glog.Warningf("udpserver: read: %v", err)
			continue
		}
		if n > s.config.MaxDatagramSize {
			glog.Warningf("udpserver: dropping oversized datagram from %s", addr)
			continue
		}

		// The handler may read the datagram for as long as it runs, so it
		// gets its own copy while buf is reused for the next read.
		raw := slices.Clone(buf[:n])
		group.Go(func() error {
			s.handle(pc, addr, raw)
			return nil
		})
	}
}

func (s *Server) handle(pc net.PacketConn, addr net.Addr, raw []byte) {
	glog.V(1).Infof("udpserver: %d bytes from %s: %x", len(raw), addr, raw)

	resp, err := s.handler.ServeDatagram(raw)
	if err != nil {
		glog.Warningf("udpserver: dropping datagram from %s: %v", addr, err)
		return
	}

	glog.V(1).Infof("udpserver: %d bytes to %s: %x", len(resp), addr, resp)
	if _, err := pc.WriteTo(resp, addr); err != nil {
		glog.Warningf("udpserver: write to %s: %v", addr, err)
	}
}
