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

package ether_test

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/devsim"
	"jinr.ru/greenlab/go-manta/pkg/ether"
)

// The device listens on 127.0.0.2 and the host binds the same port on
// 127.0.0.1, as they would on two machines.
func newTransport(t *testing.T) (*ether.Transport, *devsim.Device, *devsim.UDPServer) {
	t.Helper()
	dev := devsim.NewDevice()
	server, err := devsim.ListenUDP(dev, "127.0.0.2:0")
	assert.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go server.Run(ctx)
	t.Cleanup(cancel)

	tr, err := ether.New(&config.Ethernet{
		FPGAIP:  "127.0.0.2",
		HostIP:  "127.0.0.1",
		UDPPort: server.Addr().Port,
		Timeout: 0.2,
	})
	assert.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr, dev, server
}

func TestReadWrite(t *testing.T) {
	tr, dev, _ := newTransport(t)
	dev.Poke(0x1234, 0xBBAA)

	v, err := bus.ReadOne(tr, 0x1234)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xBBAA), v)

	assert.NoError(t, tr.Write([]uint16{1, 2, 1}, []uint16{10, 20, 30}))
	data, err := tr.Read([]uint16{2, 1, 0x1234})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{20, 30, 0xBBAA}, data)
}

func TestChunking(t *testing.T) {
	tr, dev, server := newTransport(t)
	addrs := make([]uint16, 150)
	values := make([]uint16, 150)
	for i := range addrs {
		addrs[i] = uint16(0x200 + i)
		values[i] = uint16(3 * i)
	}
	assert.NoError(t, tr.Write(addrs, values))
	data, err := tr.Read(addrs)
	assert.NoError(t, err)
	assert.Equal(t, values, data)
	assert.Equal(t, uint16(3*149), dev.Peek(0x200+149))
	assert.Equal(t, 6, server.Datagrams())
}

func TestSplitReplies(t *testing.T) {
	tr, dev, server := newTransport(t)
	server.Configure(func(s *devsim.UDPServer) { s.SplitReplies = true })
	dev.Poke(5, 0x55)
	dev.Poke(6, 0x66)

	data, err := tr.Read([]uint16{5, 6, 5})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x55, 0x66, 0x55}, data)
}

func TestShortRead(t *testing.T) {
	tr, _, server := newTransport(t)
	server.Configure(func(s *devsim.UDPServer) { s.DropReplies = true })

	_, err := tr.Read([]uint16{5})
	var errTransport bus.ErrTransport
	assert.True(t, errors.As(err, &errTransport))
	var errTimeout bus.ErrTimeout
	assert.True(t, errors.As(err, &errTimeout))
}

func TestPartialRecord(t *testing.T) {
	tr, _, server := newTransport(t)
	server.Configure(func(s *devsim.UDPServer) { s.TrimReplies = 2 })

	_, err := tr.Read([]uint16{5})
	var errDecode bus.ErrDecode
	assert.True(t, errors.As(err, &errDecode))
}

func TestConfigErrors(t *testing.T) {
	var errConfig config.ErrConfig
	_, err := ether.New(&config.Ethernet{FPGAIP: "127.0.0.2", HostIP: "127.0.0.1", UDPPort: 0, Timeout: 1})
	assert.True(t, errors.As(err, &errConfig))
	_, err = ether.New(&config.Ethernet{FPGAIP: "127.0.0.2", HostIP: "127.0.0.1", UDPPort: 2001})
	assert.True(t, errors.As(err, &errConfig))
	_, err = ether.New(nil)
	assert.True(t, errors.As(err, &errConfig))
}
