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

package manta_test

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/devsim"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/uart"
)

const uartInterface = `
interface:
  uart:
    port: /dev/ttyUSB1
    clock_freq: 100000000
    baudrate: 3000000
`

func compose(t *testing.T, cores string) (*manta.Manta, *devsim.Device, *devsim.UARTLink) {
	t.Helper()
	cfg, err := config.ParseManta([]byte(uartInterface + cores))
	assert.NoError(t, err)
	dev := devsim.NewDevice()
	link := devsim.NewUARTLink(dev)
	m, err := manta.New(cfg, manta.WithUARTOptions(uart.WithLink(link)))
	assert.NoError(t, err)
	return m, dev, link
}

func TestUARTGetProbe(t *testing.T) {
	m, dev, link := compose(t, `
cores:
  io:
    type: io
    inputs:
      probe0: 4
`)
	io, err := m.Cores().IO("io")
	assert.NoError(t, err)
	devsim.NewIOModel(dev, io).SetInput("probe0", big.NewInt(0xA))

	v, err := io.GetProbeUint64("probe0")
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	assert.Equal(t, "W00000000\r\nW00000001\r\nW00000000\r\nR0001\r\n", link.Written())
}

func TestUARTSetProbe(t *testing.T) {
	m, dev, link := compose(t, `
cores:
  io:
    type: io
    outputs:
      led: 1
`)
	io, err := m.Cores().IO("io")
	assert.NoError(t, err)
	model := devsim.NewIOModel(dev, io)

	assert.NoError(t, io.SetProbeInt("led", 1))
	assert.Equal(t, "W00010001\r\nW00000000\r\nW00000001\r\nW00000000\r\n", link.Written())
	assert.Equal(t, int64(1), model.Output("led").Int64())
}

func TestUARTMemoryStriping(t *testing.T) {
	m, _, link := compose(t, `
cores:
  mem:
    type: memory
    mode: host_to_fpga
    width: 33
    depth: 4
`)
	mem, err := m.Cores().Memory("mem")
	assert.NoError(t, err)
	first, _ := new(big.Int).SetString("100000001", 16)
	assert.NoError(t, mem.Write([]int{0, 1, 2, 3}, []*big.Int{first, big.NewInt(0), big.NewInt(0), big.NewInt(0)}))

	expected := []string{
		"W00000001", "W00040000", "W00080001",
		"W00010000", "W00050000", "W00090000",
		"W00020000", "W00060000", "W000A0000",
		"W00030000", "W00070000", "W000B0000",
	}
	assert.Equal(t, strings.Join(expected, "\r\n")+"\r\n", link.Written())
}

const design = `
cores:
  my_io:
    type: io
    inputs:
      probe0: 4
    outputs:
      led: 1
  my_mem:
    type: memory
    mode: bidirectional
    width: 20
    depth: 16
  my_la:
    type: logic_analyzer
    sample_depth: 8
    probes:
      a: 1
      b: 7
    triggers:
      - b GT 3
`

func TestPlacement(t *testing.T) {
	m, _, _ := compose(t, design)
	assert.Equal(t, []string{"my_io", "my_mem", "my_la"}, m.Cores().Names())

	addrMap := m.AddressMap()
	assert.Len(t, addrMap, 3)
	assert.Equal(t, uint16(0), addrMap[0].Base)
	assert.Equal(t, 3, addrMap[0].Size)
	assert.Equal(t, uint16(3), addrMap[1].Base)
	assert.Equal(t, 32, addrMap[1].Size)
	assert.Equal(t, uint16(35), addrMap[2].Base)
	assert.Equal(t, 8+5+8, addrMap[2].Size)
	assert.Equal(t, "my_mem", addrMap.Lookup(34).Name)

	desc := m.MemoryMapDescription()
	assert.Len(t, desc, 3)
	assert.Equal(t, "my_la", desc[2].Name)
	assert.Len(t, desc[1].Registers, 2)
	assert.Len(t, m.TopLevelPorts()["my_la"], 2)

	_, err := m.Cores().Get("nope")
	var errUnknown manta.ErrUnknownCore
	assert.True(t, errors.As(err, &errUnknown))
	_, err = m.Cores().Memory("my_io")
	var errType manta.ErrCoreType
	assert.True(t, errors.As(err, &errType))
}

func TestCaptureOverUART(t *testing.T) {
	m, dev, link := compose(t, design)
	l, err := m.Cores().LogicAnalyzer("my_la")
	assert.NoError(t, err)
	model := devsim.NewLAModel(dev, l)
	for i := int64(0); i < 8; i++ {
		model.Samples = append(model.Samples, big.NewInt(i<<1|i&1))
	}
	model.ReadPointer = 5
	model.PollsUntilCaptured = 2

	capture, err := l.Capture(context.Background())
	assert.NoError(t, err)
	trace, err := capture.GetTrace("b")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), trace[0].Int64())
	assert.Equal(t, int64(4), trace[7].Int64())
	assert.Equal(t, uint64(3), model.Armed().Args["b"].Uint64())
	assert.NoError(t, m.Close())
	assert.True(t, link.Closed())
}

func TestExportConfig(t *testing.T) {
	m, _, _ := compose(t, design)
	data, err := m.ExportConfig()
	assert.NoError(t, err)
	cfg, err := config.ParseManta(data)
	assert.NoError(t, err)
	assert.Len(t, cfg.Cores, 3)
	assert.Equal(t, "my_la", cfg.Cores[2].Name)
	assert.Equal(t, []string{"b GT 3"}, cfg.Cores[2].LogicAnalyzer.Triggers)
	assert.Equal(t, 3000000, cfg.Interface.UART.Baudrate)
}

func TestAddressSpaceOverflow(t *testing.T) {
	cfg, err := config.ParseManta([]byte(uartInterface + `
cores:
  big:
    type: memory
    mode: bidirectional
    width: 16
    depth: 65536
  io:
    type: io
    outputs:
      led: 1
`))
	assert.NoError(t, err)
	_, err = manta.New(cfg, manta.WithBus(devsim.NewDevice()))
	var errConfig config.ErrConfig
	assert.True(t, errors.As(err, &errConfig))

	cfg.Cores = cfg.Cores[:1]
	m, err := manta.New(cfg, manta.WithBus(devsim.NewDevice()))
	assert.NoError(t, err)
	assert.Equal(t, 0x10000, m.AddressMap().Used())
}

func TestTransportSelection(t *testing.T) {
	var errConfig config.ErrConfig
	_, err := manta.NewTransport(nil)
	assert.True(t, errors.As(err, &errConfig))
	_, err = manta.NewTransport(&config.Interface{})
	assert.True(t, errors.As(err, &errConfig))

	b, err := manta.NewTransport(&config.Interface{Ethernet: &config.Ethernet{
		FPGAIP: "192.168.0.110", HostIP: "192.168.0.100", UDPPort: 2001, Timeout: 1,
	}})
	assert.NoError(t, err)
	assert.NotNil(t, b)
}
