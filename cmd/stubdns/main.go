// SPDX-License-Identifier: GPL-3.0-or-later

// Command stubdns answers every DNS query received over UDP with a
// fabricated A record.
package main

import (
	"context"
	"flag"
	"math"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/bassosimone/dnsstub"
	"github.com/bassosimone/dnsstub/internal/udpserver"
	"github.com/golang/glog"
)

func main() {
	config := udpserver.DefaultConfig()
	flag.StringVar(&config.Addr, "listen", config.Addr, "UDP address to listen on")
	flag.IntVar(&config.Workers, "workers", config.Workers, "maximum number of datagrams handled concurrently")
	addr := flag.String("address", dnsstub.DefaultAddr.String(), "IPv4 address placed in every answer")
	ttl := flag.Uint("ttl", dnsstub.DefaultTTL, "TTL of every answer, in seconds")
	flag.Parse()
	defer glog.Flush()

	answerAddr, err := netip.ParseAddr(*addr)
	if err != nil {
		glog.Exitf("stubdns: -address: %v", err)
	}
	if uint64(*ttl) > math.MaxUint32 {
		glog.Exitf("stubdns: -ttl out of range: %d", *ttl)
	}

	responder := dnsstub.NewResponder()
	responder.Addr = answerAddr
	responder.TTL = uint32(*ttl)
	if err := responder.Validate(); err != nil {
		glog.Exitf("stubdns: -address: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	glog.Infof("stubdns: answering with %s (ttl %d)", responder.Addr, responder.TTL)
	if err := udpserver.New(config, responder).ListenAndServe(ctx); err != nil {
		glog.Exitf("stubdns: %v", err)
	}
	glog.Info("stubdns: shutting down")
}
