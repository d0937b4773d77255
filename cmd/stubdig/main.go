// SPDX-License-Identifier: GPL-3.0-or-later

// Command stubdig sends an A query over UDP and prints the validated
// response, e.g. `stubdig -server 127.0.0.1:2053 codecrafters.io`.
package main

import (
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/bassosimone/dnsstub"
	"github.com/golang/glog"
	"github.com/miekg/dns"
)

// maxResponseSize is the receive buffer size. Answers to long names do
// not fit in 512 bytes, so we accept anything UDP can carry.
const maxResponseSize = 1 << 16

func main() {
	server := flag.String("server", "127.0.0.1:2053", "UDP address of the DNS server")
	timeout := flag.Duration("timeout", 3*time.Second, "overall query timeout")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		glog.Exitf("usage: stubdig [flags] <name>")
	}

	query, err := dnsstub.NewQuery(flag.Arg(0), dns.TypeA)
	if err != nil {
		glog.Exitf("stubdig: %v", err)
	}

	conn, err := net.Dial("udp", *server)
	if err != nil {
		glog.Exitf("stubdig: %v", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(*timeout)); err != nil {
		glog.Exitf("stubdig: %v", err)
	}

	resp, err := exchange(conn, query)
	if err != nil {
		glog.Exitf("stubdig: %v", err)
	}
	msg, err := resp.Response.DNSMsg()
	if err != nil {
		glog.Exitf("stubdig: %v", err)
	}
	fmt.Printf("%s\n", msg.String())

	addrs, err := resp.RecordsA()
	if err != nil {
		glog.Exitf("stubdig: %v", err)
	}
	for _, addr := range addrs {
		fmt.Println(addr)
	}
}

// exchange sends query over conn and returns the validated response.
func exchange(conn net.Conn, query *dnsstub.Query) (*dnsstub.Response, error) {
	if _, err := conn.Write(query.Pack()); err != nil {
		return nil, err
	}
	buf := make([]byte, maxResponseSize)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("stubdig: %d bytes from %s", n, conn.RemoteAddr())
	return dnsstub.ParseResponse(query, buf[:n])
}
