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

package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

const uartDesign = `
interface:
  uart:
    port: auto
    clock_freq: 100e6
    baudrate: 3000000
    colour: blue
cores:
  my_io:
    type: io
    inputs:
      probe0: 4
      probe1: 20
    outputs:
      led: 1
      counter:
        width: 8
        initial_value: 12
  my_mem:
    type: memory
    mode: bidirectional
    width: 33
    depth: 512
  my_la:
    type: logic_analyzer
    sample_depth: 1024
    probes:
      larry: 1
      curly: 3
      moe: 9
    triggers:
      - moe RISING
    trigger_location: 100
`

func TestParseMantaUART(t *testing.T) {
	m, err := ParseManta([]byte(uartDesign))
	assert.NoError(t, err)
	assert.NotNil(t, m.Interface.UART)
	assert.Nil(t, m.Interface.Ethernet)
	assert.Equal(t, "auto", m.Interface.UART.Port)
	assert.Equal(t, 100000000, m.Interface.UART.ClockFreq)
	assert.Equal(t, DefaultChunkSize, m.Interface.UART.ChunkSize)
	assert.Equal(t, DefaultStallInterval, m.Interface.UART.StallInterval)

	assert.Len(t, m.Cores, 3)
	assert.Equal(t, "my_io", m.Cores[0].Name)
	assert.Equal(t, "my_mem", m.Cores[1].Name)
	assert.Equal(t, "my_la", m.Cores[2].Name)

	io := m.Cores[0].IO
	assert.Equal(t, "probe0", io.Inputs[0].Name)
	assert.Equal(t, 20, io.Inputs[1].Width)
	assert.Nil(t, io.Outputs[0].InitialValue)
	assert.Equal(t, int64(12), io.Outputs[1].InitialValue.Int64())

	la := m.Cores[2].LogicAnalyzer
	assert.Equal(t, TriggerModeSingleShot, la.TriggerMode)
	assert.Equal(t, []string{"moe RISING"}, la.Triggers)
	assert.Equal(t, 100, *la.TriggerLocation)
	assert.Equal(t, "moe", la.Probes[2].Name)
}

func TestParseMantaEthernetJSON(t *testing.T) {
	doc := `{"interface": {"ethernet": {"fpga_ip_addr": "192.168.0.110", "host_ip_addr": "192.168.0.100",
  "udp_port": 2001, "phy": "LiteEthPHYRMII", "clk_freq": 50000000}},
  "cores": {"mem": {"type": "memory", "mode": "fpga_to_host", "width": 16, "depth": 8}}}`
	m, err := ParseManta([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, 2001, m.Interface.Ethernet.UDPPort)
	assert.Equal(t, 50000000, m.Interface.ClockFreq())
	assert.Equal(t, ModeFPGAToHost, m.Cores[0].Memory.Mode)
}

func TestParseMantaErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no interface", "cores: {a: {type: memory, mode: bidirectional, width: 1, depth: 1}}"},
		{"both interfaces", `interface: {uart: {port: a, clock_freq: 1, baudrate: 1},
  ethernet: {fpga_ip_addr: 1.1.1.1, host_ip_addr: 1.1.1.2, udp_port: 1}}
cores: {a: {type: memory, mode: bidirectional, width: 1, depth: 1}}`},
		{"no cores", "interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}"},
		{"unknown type", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: dsp}}`},
		{"zero width", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: memory, mode: bidirectional, width: 0, depth: 1}}`},
		{"zero depth", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: memory, mode: bidirectional, width: 4, depth: 0}}`},
		{"bad mode", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: memory, mode: sideways, width: 4, depth: 4}}`},
		{"empty io", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: io}}`},
		{"duplicate probe", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: io, inputs: {x: 1}, outputs: {x: 2}}}`},
		{"initial value too wide", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: io, outputs: {x: {width: 2, initial_value: 4}}}}`},
		{"no triggers", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: logic_analyzer, sample_depth: 8, probes: {x: 1}}}`},
		{"trigger location out of range", `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: logic_analyzer, sample_depth: 8, probes: {x: 1}, triggers: [x RISING], trigger_location: 8}}`},
		{"bad ip", `interface: {ethernet: {fpga_ip_addr: fpga, host_ip_addr: 1.1.1.2, udp_port: 1}}
cores: {a: {type: memory, mode: bidirectional, width: 1, depth: 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManta([]byte(tt.doc))
			assert.Error(t, err)
			var cfgErr ErrConfig
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestImmediateWithoutTriggers(t *testing.T) {
	doc := `interface: {uart: {port: a, clock_freq: 10, baudrate: 1}}
cores: {a: {type: logic_analyzer, sample_depth: 8, probes: {x: 1}, trigger_mode: immediate}}`
	m, err := ParseManta([]byte(doc))
	assert.NoError(t, err)
	assert.Equal(t, TriggerModeImmediate, m.Cores[0].LogicAnalyzer.TriggerMode)
	assert.Nil(t, m.Cores[0].LogicAnalyzer.TriggerLocation)
}

func TestExportMantaRoundTrip(t *testing.T) {
	m, err := ParseManta([]byte(uartDesign))
	assert.NoError(t, err)
	data, err := ExportManta(m)
	assert.NoError(t, err)

	again, err := ParseManta(data)
	assert.NoError(t, err)
	assert.Len(t, again.Cores, 3)
	assert.Equal(t, "my_la", again.Cores[2].Name)
	assert.Equal(t, int64(12), again.Cores[0].IO.Outputs[1].InitialValue.Int64())
	assert.Equal(t, 33, again.Cores[1].Memory.Width)
	assert.Equal(t, m.Interface.UART.Baudrate, again.Interface.UART.Baudrate)
}

func TestPersistLoad(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SetPath(filepath.Join(t.TempDir(), "config"))
	cfg.MantaConfig = "/tmp/manta.yaml"
	assert.NoError(t, cfg.Persist(false))

	err := cfg.Persist(false)
	var exists ErrConfigFileExists
	assert.True(t, errors.As(err, &exists))
	assert.NoError(t, cfg.Persist(true))

	loaded := NewDefaultConfig()
	loaded.SetPath(cfg.Path())
	assert.NoError(t, loaded.Load())
	assert.Equal(t, "/tmp/manta.yaml", loaded.MantaConfig)
	assert.Equal(t, DefaultApiPort, loaded.ApiPort)
}
