/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package ether carries the bus over UDP. Requests are packed into datagrams
// of 8 byte records sent to the FPGA, replies come back as 4 byte records.
package ether

import (
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/layers"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

const (
	// ChunkSize is the maximum number of requests in one datagram
	ChunkSize   = 64
	maxDatagram = 65536
)

type Transport struct {
	cfg      *config.Ethernet
	fpgaAddr *net.UDPAddr
	hostAddr *net.UDPAddr
	conn     *net.UDPConn
}

var _ bus.Bus = &Transport{}

// New validates the configuration. The socket is bound on first use.
func New(cfg *config.Ethernet) (*Transport, error) {
	if cfg == nil {
		return nil, config.NewErrConfig("no ethernet configuration")
	}
	if cfg.UDPPort <= 0 || cfg.UDPPort > 0xFFFF {
		return nil, config.NewErrConfig("udp_port %d is out of range", cfg.UDPPort)
	}
	if cfg.Timeout <= 0 {
		return nil, config.NewErrConfig("ethernet timeout must be positive")
	}
	fpgaAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.FPGAIP, cfg.UDPPort))
	if err != nil {
		return nil, config.NewErrConfig("bad fpga_ip %s: %s", cfg.FPGAIP, err)
	}
	hostAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.HostIP, cfg.UDPPort))
	if err != nil {
		return nil, config.NewErrConfig("bad host_ip %s: %s", cfg.HostIP, err)
	}
	return &Transport{
		cfg:      cfg,
		fpgaAddr: fpgaAddr,
		hostAddr: hostAddr,
	}, nil
}

func (t *Transport) open() error {
	if t.conn != nil {
		return nil
	}
	conn, err := net.ListenUDP("udp", t.hostAddr)
	if err != nil {
		return bus.ErrTransport{What: fmt.Sprintf("binding %s", t.hostAddr), Err: err}
	}
	log.Info("Bound %s for FPGA at %s", t.hostAddr, t.fpgaAddr)
	t.conn = conn
	return nil
}

func (t *Transport) send(reqs []*bus.Request) error {
	buf, err := layers.RequestsToBytes(reqs)
	if err != nil {
		return err
	}
	if _, err := t.conn.WriteToUDP(buf, t.fpgaAddr); err != nil {
		return bus.ErrTransport{What: fmt.Sprintf("sending to %s", t.fpgaAddr), Err: err}
	}
	return nil
}

func (t *Transport) Read(addrs []uint16) ([]uint16, error) {
	if len(addrs) == 0 {
		return []uint16{}, nil
	}
	if err := t.open(); err != nil {
		return nil, err
	}
	result := make([]uint16, 0, len(addrs))
	for _, chunk := range words.Chunks(addrs, ChunkSize) {
		log.Debug("UDP read of %d addresses starting at 0x%04X", len(chunk), chunk[0])
		if err := t.send(bus.ReadRequests(chunk)); err != nil {
			return nil, err
		}
		data, err := t.receive(layers.ReplySize * len(chunk))
		if err != nil {
			return nil, err
		}
		replies, err := layers.BytesToReplies(data)
		if err != nil {
			return nil, err
		}
		result = append(result, replies...)
	}
	return result, nil
}

func (t *Transport) Write(addrs []uint16, data []uint16) error {
	reqs, err := bus.WriteRequests(addrs, data)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}
	if err := t.open(); err != nil {
		return err
	}
	for offset := 0; offset < len(reqs); offset += ChunkSize {
		end := offset + ChunkSize
		if end > len(reqs) {
			end = len(reqs)
		}
		if err := t.send(reqs[offset:end]); err != nil {
			return err
		}
	}
	return nil
}

// receive collects reply datagrams from the FPGA until n bytes arrived
func (t *Transport) receive(n int) ([]byte, error) {
	timeout := t.cfg.ReadTimeout()
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, bus.ErrTransport{What: "setting read deadline", Err: err}
	}
	data := make([]byte, 0, n)
	buffer := make([]byte, maxDatagram)
	for len(data) < n {
		length, addr, err := t.conn.ReadFromUDP(buffer)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if len(data)%layers.ReplySize != 0 {
					return nil, bus.ErrDecode{What: "partial reply record", Frame: data}
				}
				return nil, bus.ErrTransport{
					What: "short read",
					Err:  bus.ErrTimeout{Expected: n, Received: len(data), Timeout: timeout},
				}
			}
			return nil, bus.ErrTransport{What: "receiving", Err: err}
		}
		if !addr.IP.Equal(t.fpgaAddr.IP) {
			log.Warning("Ignoring datagram from %s", addr)
			continue
		}
		data = append(data, buffer[:length]...)
	}
	if len(data) > n {
		return nil, bus.ErrDecode{What: fmt.Sprintf("expected %d reply bytes, got %d", n, len(data)), Frame: data}
	}
	return data, nil
}

func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		return bus.ErrTransport{What: "closing socket", Err: err}
	}
	return nil
}
