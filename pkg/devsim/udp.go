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

package devsim

import (
	"context"
	"net"
	"sync"

	"jinr.ru/greenlab/go-manta/pkg/layers"
	"jinr.ru/greenlab/go-manta/pkg/log"
)

const maxDatagram = 65536

// UDPServer is the device end of the Ethernet link. Every datagram is a
// batch of bus requests; read replies go back to the sender in one datagram.
type UDPServer struct {
	dev  *Device
	conn *net.UDPConn

	mu sync.Mutex
	// SplitReplies sends every reply in its own datagram
	SplitReplies bool
	// DropReplies keeps the device silent
	DropReplies bool
	// TrimReplies removes bytes from the end of every reply datagram
	TrimReplies int
	datagrams   int
}

func ListenUDP(d *Device, address string) (*UDPServer, error) {
	uaddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", uaddr)
	if err != nil {
		return nil, err
	}
	return &UDPServer{dev: d, conn: conn}, nil
}

func (s *UDPServer) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Datagrams returns the number of request datagrams received
func (s *UDPServer) Datagrams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.datagrams
}

func (s *UDPServer) Configure(fn func(s *UDPServer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// Run serves requests until ctx is done or the socket fails
func (s *UDPServer) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		buffer := make([]byte, maxDatagram)
		for {
			length, addr, err := s.conn.ReadFromUDP(buffer)
			if err != nil {
				errChan <- err
				return
			}
			if err := s.serve(buffer[:length], addr); err != nil {
				log.Error("Device failed to serve datagram from %s: %s", addr, err)
			}
		}
	}()

	select {
	case <-ctx.Done():
		s.conn.Close()
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

func (s *UDPServer) serve(data []byte, addr *net.UDPAddr) error {
	reqs, err := layers.BytesToRequests(data)
	if err != nil {
		return err
	}
	replies := s.dev.Handle(reqs)

	s.mu.Lock()
	s.datagrams++
	split, drop, trim := s.SplitReplies, s.DropReplies, s.TrimReplies
	s.mu.Unlock()

	if len(replies) == 0 || drop {
		return nil
	}
	batches := [][]uint16{replies}
	if split {
		batches = nil
		for _, r := range replies {
			batches = append(batches, []uint16{r})
		}
	}
	for _, batch := range batches {
		buf, err := layers.RepliesToBytes(batch)
		if err != nil {
			return err
		}
		if trim > 0 && trim <= len(buf) {
			buf = buf[:len(buf)-trim]
		}
		if _, err := s.conn.WriteToUDP(buf, addr); err != nil {
			return err
		}
	}
	return nil
}

func (s *UDPServer) Close() error {
	return s.conn.Close()
}
