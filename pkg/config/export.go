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
	"math/big"

	"gopkg.in/yaml.v2"
)

// ExportManta renders the configuration back to YAML keeping the order of
// cores and probes. ParseManta(ExportManta(m)) yields an equivalent config.
func ExportManta(m *Manta) ([]byte, error) {
	return yaml.Marshal(MantaToMapSlice(m))
}

func MantaToMapSlice(m *Manta) yaml.MapSlice {
	cores := yaml.MapSlice{}
	for _, c := range m.Cores {
		cores = append(cores, yaml.MapItem{Key: c.Name, Value: coreToMapSlice(c)})
	}
	return yaml.MapSlice{
		{Key: "interface", Value: interfaceToMapSlice(m.Interface)},
		{Key: "cores", Value: cores},
	}
}

func interfaceToMapSlice(i *Interface) yaml.MapSlice {
	if i == nil {
		return yaml.MapSlice{}
	}
	if i.UART != nil {
		return yaml.MapSlice{{Key: "uart", Value: yaml.MapSlice{
			{Key: "port", Value: i.UART.Port},
			{Key: "clock_freq", Value: i.UART.ClockFreq},
			{Key: "baudrate", Value: i.UART.Baudrate},
			{Key: "chunk_size", Value: i.UART.ChunkSize},
			{Key: "stall_interval", Value: i.UART.StallInterval},
			{Key: "timeout", Value: i.UART.Timeout},
		}}}
	}
	e := yaml.MapSlice{
		{Key: "fpga_ip_addr", Value: i.Ethernet.FPGAIP},
		{Key: "host_ip_addr", Value: i.Ethernet.HostIP},
		{Key: "udp_port", Value: i.Ethernet.UDPPort},
	}
	if i.Ethernet.Phy != "" {
		e = append(e, yaml.MapItem{Key: "phy", Value: i.Ethernet.Phy})
	}
	if i.Ethernet.ClkFreq != 0 {
		e = append(e, yaml.MapItem{Key: "clk_freq", Value: i.Ethernet.ClkFreq})
	}
	if i.Ethernet.FPGAMac != "" {
		e = append(e, yaml.MapItem{Key: "fpga_mac", Value: i.Ethernet.FPGAMac})
	}
	if i.Ethernet.HostMac != "" {
		e = append(e, yaml.MapItem{Key: "host_mac", Value: i.Ethernet.HostMac})
	}
	e = append(e, yaml.MapItem{Key: "timeout", Value: i.Ethernet.Timeout})
	return yaml.MapSlice{{Key: "ethernet", Value: e}}
}

func coreToMapSlice(c *Core) yaml.MapSlice {
	result := yaml.MapSlice{{Key: "type", Value: c.Type}}
	switch {
	case c.IO != nil:
		if len(c.IO.Inputs) > 0 {
			inputs := yaml.MapSlice{}
			for _, p := range c.IO.Inputs {
				inputs = append(inputs, yaml.MapItem{Key: p.Name, Value: p.Width})
			}
			result = append(result, yaml.MapItem{Key: "inputs", Value: inputs})
		}
		if len(c.IO.Outputs) > 0 {
			outputs := yaml.MapSlice{}
			for _, p := range c.IO.Outputs {
				if p.InitialValue == nil {
					outputs = append(outputs, yaml.MapItem{Key: p.Name, Value: p.Width})
					continue
				}
				outputs = append(outputs, yaml.MapItem{Key: p.Name, Value: yaml.MapSlice{
					{Key: "width", Value: p.Width},
					{Key: "initial_value", Value: bigToYAML(p.InitialValue)},
				}})
			}
			result = append(result, yaml.MapItem{Key: "outputs", Value: outputs})
		}
	case c.Memory != nil:
		result = append(result,
			yaml.MapItem{Key: "mode", Value: c.Memory.Mode},
			yaml.MapItem{Key: "width", Value: c.Memory.Width},
			yaml.MapItem{Key: "depth", Value: c.Memory.Depth},
		)
	case c.LogicAnalyzer != nil:
		la := c.LogicAnalyzer
		probes := yaml.MapSlice{}
		for _, p := range la.Probes {
			probes = append(probes, yaml.MapItem{Key: p.Name, Value: p.Width})
		}
		result = append(result,
			yaml.MapItem{Key: "sample_depth", Value: la.SampleDepth},
			yaml.MapItem{Key: "probes", Value: probes},
			yaml.MapItem{Key: "trigger_mode", Value: la.TriggerMode},
		)
		if len(la.Triggers) > 0 {
			result = append(result, yaml.MapItem{Key: "triggers", Value: la.Triggers})
		}
		if la.TriggerLocation != nil {
			result = append(result, yaml.MapItem{Key: "trigger_location", Value: *la.TriggerLocation})
		}
	}
	return result
}

func bigToYAML(v *big.Int) interface{} {
	if v.IsInt64() {
		return v.Int64()
	}
	return v.String()
}
