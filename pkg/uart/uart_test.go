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

package uart_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/devsim"
	"jinr.ru/greenlab/go-manta/pkg/uart"
)

func uartConfig() *config.UART {
	return &config.UART{
		Port:          "/dev/ttyUSB1",
		ClockFreq:     100000000,
		Baudrate:      3000000,
		ChunkSize:     config.DefaultChunkSize,
		StallInterval: config.DefaultStallInterval,
		Timeout:       0.05,
	}
}

// countingLink counts the writes the host makes
type countingLink struct {
	*devsim.UARTLink
	writes int
}

func (l *countingLink) Write(p []byte) (int, error) {
	l.writes++
	return l.UARTLink.Write(p)
}

func newTransport(t *testing.T, cfg *config.UART) (*uart.Transport, *devsim.Device, *countingLink) {
	t.Helper()
	dev := devsim.NewDevice()
	link := &countingLink{UARTLink: devsim.NewUARTLink(dev)}
	tr, err := uart.New(cfg, uart.WithLink(link))
	assert.NoError(t, err)
	return tr, dev, link
}

func TestReplyFrames(t *testing.T) {
	for x := 0; x < 1<<16; x++ {
		v, err := uart.DecodeReply(uart.EncodeReply(uint16(x)))
		if err != nil || v != uint16(x) {
			t.Fatalf("reply %04X did not round trip: %v", x, err)
		}
	}
	assert.Equal(t, "D00AB\r\n", string(uart.EncodeReply(0xab)))
}

func TestDecodeReplyRejects(t *testing.T) {
	bad := []string{
		"",
		"D000A\n",
		"D000A\r",
		"D000A\n\r",
		"d000A\r\n",
		"R000A\r\n",
		"D000a\r\n",
		"D00G0\r\n",
		"D000A\r\n\r",
		"D000A \r\n",
	}
	for _, frame := range bad {
		t.Run(fmt.Sprintf("%q", frame), func(t *testing.T) {
			_, err := uart.DecodeReply([]byte(frame))
			var errDecode bus.ErrDecode
			assert.True(t, errors.As(err, &errDecode))
		})
	}
}

func TestRequestFrames(t *testing.T) {
	assert.Equal(t, "R1234\r\n", string(uart.EncodeRequest(&bus.Request{Addr: 0x1234})))
	assert.Equal(t, "WBEEFCAFE\r\n", string(uart.EncodeRequest(&bus.Request{Addr: 0xbeef, Data: 0xcafe, Write: true})))

	req, err := uart.DecodeRequest([]byte("W00010002\r\n"))
	assert.NoError(t, err)
	assert.True(t, req.Write)
	assert.Equal(t, uint16(1), req.Addr)
	assert.Equal(t, uint16(2), req.Data)

	_, err = uart.DecodeRequest([]byte("R0001\n"))
	assert.Error(t, err)
}

func TestBaudrate(t *testing.T) {
	assert.NoError(t, uart.CheckBaudrate(100000000, 3000000))
	assert.NoError(t, uart.CheckBaudrate(12000000, 115200))

	var errConfig config.ErrConfig
	assert.True(t, errors.As(uart.CheckBaudrate(12000000, 5000000), &errConfig))
	assert.True(t, errors.As(uart.CheckBaudrate(1000000, 1000000), &errConfig))
	assert.True(t, errors.As(uart.CheckBaudrate(0, 115200), &errConfig))

	cfg := uartConfig()
	cfg.Baudrate = 40000000
	_, err := uart.New(cfg)
	assert.True(t, errors.As(err, &errConfig))
}

func TestReadWrite(t *testing.T) {
	tr, dev, link := newTransport(t, uartConfig())
	dev.Poke(1, 0xA)

	assert.NoError(t, tr.Write([]uint16{0, 0, 0}, []uint16{0, 1, 0}))
	data, err := tr.Read([]uint16{1})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0xA}, data)
	assert.Equal(t, "W00000000\r\nW00000001\r\nW00000000\r\nR0001\r\n", link.Written())

	// writes are observed in issue order by later reads
	assert.NoError(t, tr.Write([]uint16{7, 7, 8}, []uint16{1, 2, 3}))
	data, err = tr.Read([]uint16{8, 7, 1})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{3, 2, 0xA}, data)

	data, err = tr.Read(nil)
	assert.NoError(t, err)
	assert.Len(t, data, 0)

	assert.Error(t, tr.Write([]uint16{1, 2}, []uint16{1}))
}

func TestReadChunks(t *testing.T) {
	cfg := uartConfig()
	cfg.StallInterval = 2
	tr, dev, link := newTransport(t, cfg)
	assert.Equal(t, 2, tr.ChunkSize())
	for i := uint16(0); i < 5; i++ {
		dev.Poke(0x100+i, 0x10*i)
	}

	data, err := tr.Read([]uint16{0x100, 0x101, 0x102, 0x103, 0x104})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0, 0x10, 0x20, 0x30, 0x40}, data)
	assert.Equal(t, 3, link.writes)

	// writes go out in one piece
	link.writes = 0
	assert.NoError(t, tr.Write([]uint16{1, 2, 3, 4, 5}, []uint16{1, 2, 3, 4, 5}))
	assert.Equal(t, 1, link.writes)
}

func TestReadTimeout(t *testing.T) {
	tr, _, link := newTransport(t, uartConfig())
	link.Reply = func(frame []byte) []byte { return nil }

	_, err := tr.Read([]uint16{1})
	var errTimeout bus.ErrTimeout
	assert.True(t, errors.As(err, &errTimeout))
	assert.Equal(t, 7, errTimeout.Expected)
	assert.Equal(t, 0, errTimeout.Received)
}

// heldLink holds the device replies back while hold is set
type heldLink struct {
	*devsim.UARTLink
	hold bool
}

func (l *heldLink) Read(p []byte) (int, error) {
	if l.hold {
		return 0, nil
	}
	return l.UARTLink.Read(p)
}

func TestReadAfterTimeout(t *testing.T) {
	dev := devsim.NewDevice()
	link := &heldLink{UARTLink: devsim.NewUARTLink(dev), hold: true}
	tr, err := uart.New(uartConfig(), uart.WithLink(link))
	assert.NoError(t, err)
	dev.Poke(1, 0x1111)
	dev.Poke(2, 0x2222)

	_, err = tr.Read([]uint16{1})
	var errTimeout bus.ErrTimeout
	assert.True(t, errors.As(err, &errTimeout))

	// the late reply to address 1 must not be taken for address 2
	link.hold = false
	data, err := tr.Read([]uint16{2})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x2222}, data)

	data, err = tr.Read([]uint16{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x1111, 0x2222}, data)
}

func TestReadDecodeError(t *testing.T) {
	tr, _, link := newTransport(t, uartConfig())
	link.Reply = func(frame []byte) []byte { return []byte("D00a0\r\n") }

	_, err := tr.Read([]uint16{1})
	var errDecode bus.ErrDecode
	assert.True(t, errors.As(err, &errDecode))
}

type fakeLister []*uart.PortInfo

func (l fakeLister) ListPorts() ([]*uart.PortInfo, error) {
	return l, nil
}

func ft2232(name, serial, location string) *uart.PortInfo {
	return &uart.PortInfo{
		Name:         name,
		VID:          uart.FTDIVendorID,
		PID:          uart.FT2232ProductID,
		SerialNumber: serial,
		Location:     location,
	}
}

func TestSelectPort(t *testing.T) {
	port, err := uart.SelectPort(fakeLister{
		ft2232("/dev/ttyUSB1", "FT1", "1-2:1.1"),
		{Name: "/dev/ttyACM0", VID: 0x2341, PID: 0x0043},
		ft2232("/dev/ttyUSB0", "FT1", "1-2:1.0"),
	})
	assert.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", port)

	var errPort uart.ErrPort
	_, err = uart.SelectPort(fakeLister{ft2232("/dev/ttyUSB0", "FT1", "1-2:1.0")})
	assert.True(t, errors.As(err, &errPort))
	_, err = uart.SelectPort(fakeLister{
		ft2232("/dev/ttyUSB0", "FT1", "1-2:1.0"),
		ft2232("/dev/ttyUSB1", "FT2", "1-3:1.1"),
	})
	assert.True(t, errors.As(err, &errPort))
}

func TestAutoPort(t *testing.T) {
	cfg := uartConfig()
	cfg.Port = config.AutoPort
	dev := devsim.NewDevice()
	dev.Poke(3, 0x33)
	opened := ""
	opener := func(name string, baudrate int) (io.ReadWriteCloser, error) {
		opened = name
		assert.Equal(t, 3000000, baudrate)
		return devsim.NewUARTLink(dev), nil
	}
	tr, err := uart.New(cfg, uart.WithOpener(opener), uart.WithLister(fakeLister{
		ft2232("/dev/ttyUSB4", "FT9", "3-1:1.0"),
		ft2232("/dev/ttyUSB5", "FT9", "3-1:1.1"),
	}))
	assert.NoError(t, err)
	assert.Equal(t, "", tr.Port())

	v, err := bus.ReadOne(tr, 3)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x33), v)
	assert.Equal(t, "/dev/ttyUSB5", opened)
	assert.Equal(t, "/dev/ttyUSB5", tr.Port())
	assert.NoError(t, tr.Close())

	tr, err = uart.New(cfg, uart.WithOpener(opener), uart.WithLister(fakeLister{}))
	assert.NoError(t, err)
	_, err = bus.ReadOne(tr, 3)
	var errPort uart.ErrPort
	assert.True(t, errors.As(err, &errPort))
}

func TestOpenFailure(t *testing.T) {
	opener := func(name string, baudrate int) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	}
	tr, err := uart.New(uartConfig(), uart.WithOpener(opener))
	assert.NoError(t, err)
	err = bus.WriteOne(tr, 1, 1)
	var errTransport bus.ErrTransport
	assert.True(t, errors.As(err, &errTransport))
}
