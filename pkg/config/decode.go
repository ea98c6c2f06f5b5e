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
	"fmt"
	"math"
	"math/big"
	"net"
	"strings"

	"gopkg.in/yaml.v2"

	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

// ParseManta decodes a YAML (or JSON) design configuration. Mappings are
// decoded in document order because the order of cores and probes
// defines the address map and the bit layout of samples.
func ParseManta(data []byte) (*Manta, error) {
	var root yaml.MapSlice
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, NewErrConfig("malformed document: %s", err)
	}
	return DecodeManta(root)
}

// DecodeManta builds a Manta configuration from an already parsed document.
func DecodeManta(root yaml.MapSlice) (*Manta, error) {
	warnUnknown("", root, "interface", "cores")

	ifcNode, ok := lookup(root, "interface")
	if !ok {
		return nil, NewErrConfig("no interface specified")
	}
	ifc, err := decodeInterface(ifcNode)
	if err != nil {
		return nil, err
	}

	coresNode, ok := lookup(root, "cores")
	if !ok {
		return nil, NewErrConfig("no cores specified")
	}
	coresMap, err := asMap(coresNode, "cores")
	if err != nil {
		return nil, err
	}
	if len(coresMap) == 0 {
		return nil, NewErrConfig("at least one core must be specified")
	}

	m := &Manta{Interface: ifc}
	seen := map[string]bool{}
	for _, item := range coresMap {
		name := keyString(item.Key)
		if seen[name] {
			return nil, NewErrConfig("duplicate core name %s", name)
		}
		seen[name] = true
		core, err := decodeCore(name, item.Value)
		if err != nil {
			return nil, err
		}
		m.Cores = append(m.Cores, core)
	}
	return m, nil
}

func decodeInterface(node interface{}) (*Interface, error) {
	ifcMap, err := asMap(node, "interface")
	if err != nil {
		return nil, err
	}
	warnUnknown("interface", ifcMap, "uart", "ethernet")
	uartNode, hasUART := lookup(ifcMap, "uart")
	etherNode, hasEther := lookup(ifcMap, "ethernet")
	switch {
	case hasUART && hasEther:
		return nil, NewErrConfig("interface must be either uart or ethernet, not both")
	case hasUART:
		uart, err := decodeUART(uartNode)
		if err != nil {
			return nil, err
		}
		return &Interface{UART: uart}, nil
	case hasEther:
		ether, err := decodeEthernet(etherNode)
		if err != nil {
			return nil, err
		}
		return &Interface{Ethernet: ether}, nil
	}
	return nil, NewErrConfig("interface must contain uart or ethernet")
}

func decodeUART(node interface{}) (*UART, error) {
	m, err := asMap(node, "uart")
	if err != nil {
		return nil, err
	}
	warnUnknown("uart", m, "port", "clock_freq", "baudrate", "chunk_size", "stall_interval", "timeout")

	u := &UART{
		ChunkSize:     DefaultChunkSize,
		StallInterval: DefaultStallInterval,
		Timeout:       DefaultTimeout,
	}
	if u.Port, err = requiredString(m, "uart", "port"); err != nil {
		return nil, err
	}
	if u.ClockFreq, err = requiredPositive(m, "uart", "clock_freq"); err != nil {
		return nil, err
	}
	if u.Baudrate, err = requiredPositive(m, "uart", "baudrate"); err != nil {
		return nil, err
	}
	if u.ChunkSize, err = optionalPositive(m, "uart", "chunk_size", u.ChunkSize); err != nil {
		return nil, err
	}
	if u.StallInterval, err = optionalPositive(m, "uart", "stall_interval", u.StallInterval); err != nil {
		return nil, err
	}
	if u.Timeout, err = optionalSeconds(m, "uart", "timeout", u.Timeout); err != nil {
		return nil, err
	}
	return u, nil
}

func decodeEthernet(node interface{}) (*Ethernet, error) {
	m, err := asMap(node, "ethernet")
	if err != nil {
		return nil, err
	}
	warnUnknown("ethernet", m, "fpga_ip_addr", "host_ip_addr", "udp_port", "phy", "clk_freq",
		"fpga_mac", "host_mac", "timeout")

	e := &Ethernet{Timeout: DefaultTimeout}
	if e.FPGAIP, err = requiredIP(m, "fpga_ip_addr"); err != nil {
		return nil, err
	}
	if e.HostIP, err = requiredIP(m, "host_ip_addr"); err != nil {
		return nil, err
	}
	if e.UDPPort, err = requiredPositive(m, "ethernet", "udp_port"); err != nil {
		return nil, err
	}
	if e.UDPPort > 0xffff {
		return nil, NewErrConfig("ethernet.udp_port %d is out of range", e.UDPPort)
	}
	if e.ClkFreq, err = optionalPositive(m, "ethernet", "clk_freq", 0); err != nil {
		return nil, err
	}
	if v, ok := lookup(m, "phy"); ok {
		e.Phy = fmt.Sprint(v)
	}
	if v, ok := lookup(m, "fpga_mac"); ok {
		e.FPGAMac = fmt.Sprint(v)
	}
	if v, ok := lookup(m, "host_mac"); ok {
		e.HostMac = fmt.Sprint(v)
	}
	if e.Timeout, err = optionalSeconds(m, "ethernet", "timeout", e.Timeout); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeCore(name string, node interface{}) (*Core, error) {
	path := "cores." + name
	m, err := asMap(node, path)
	if err != nil {
		return nil, err
	}
	typ, err := requiredString(m, path, "type")
	if err != nil {
		return nil, err
	}
	core := &Core{Name: name, Type: typ}
	switch typ {
	case CoreTypeIO:
		core.IO, err = decodeIO(path, m)
	case CoreTypeMemory:
		core.Memory, err = decodeMemory(path, m)
	case CoreTypeLogicAnalyzer:
		core.LogicAnalyzer, err = decodeLogicAnalyzer(path, m)
	default:
		return nil, NewErrConfig("%s: unknown core type %s", path, typ)
	}
	if err != nil {
		return nil, err
	}
	return core, nil
}

func decodeIO(path string, m yaml.MapSlice) (*IOCore, error) {
	warnUnknown(path, m, "type", "inputs", "outputs")
	io := &IOCore{}
	names := map[string]bool{}

	if node, ok := lookup(m, "inputs"); ok {
		inputs, err := asMap(node, path+".inputs")
		if err != nil {
			return nil, err
		}
		for _, item := range inputs {
			name := keyString(item.Key)
			width, err := asPositive(item.Value, path+".inputs."+name)
			if err != nil {
				return nil, err
			}
			if names[name] {
				return nil, NewErrConfig("%s: duplicate probe name %s", path, name)
			}
			names[name] = true
			io.Inputs = append(io.Inputs, &Probe{Name: name, Width: width})
		}
	}

	if node, ok := lookup(m, "outputs"); ok {
		outputs, err := asMap(node, path+".outputs")
		if err != nil {
			return nil, err
		}
		for _, item := range outputs {
			name := keyString(item.Key)
			probe, err := decodeOutput(path+".outputs."+name, name, item.Value)
			if err != nil {
				return nil, err
			}
			if names[name] {
				return nil, NewErrConfig("%s: duplicate probe name %s", path, name)
			}
			names[name] = true
			io.Outputs = append(io.Outputs, probe)
		}
	}

	if len(io.Inputs)+len(io.Outputs) == 0 {
		return nil, NewErrConfig("%s: io core must have at least one probe", path)
	}
	return io, nil
}

func decodeOutput(path, name string, node interface{}) (*Probe, error) {
	if m, ok := node.(yaml.MapSlice); ok {
		warnUnknown(path, m, "width", "initial_value")
		width, err := requiredPositive(m, path, "width")
		if err != nil {
			return nil, err
		}
		probe := &Probe{Name: name, Width: width}
		if v, ok := lookup(m, "initial_value"); ok {
			initial, err := asBig(v, path+".initial_value")
			if err != nil {
				return nil, err
			}
			if !words.FitsUnsigned(initial, width) {
				return nil, NewErrConfig("%s: initial_value %s does not fit in %d bits", path, initial, width)
			}
			probe.InitialValue = initial
		}
		return probe, nil
	}
	width, err := asPositive(node, path)
	if err != nil {
		return nil, err
	}
	return &Probe{Name: name, Width: width}, nil
}

func decodeMemory(path string, m yaml.MapSlice) (*MemoryCore, error) {
	warnUnknown(path, m, "type", "mode", "width", "depth")
	mode, err := requiredString(m, path, "mode")
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeHostToFPGA, ModeFPGAToHost, ModeBidirectional:
	default:
		return nil, NewErrConfig("%s: unknown memory mode %s", path, mode)
	}
	mem := &MemoryCore{Mode: mode}
	if mem.Width, err = requiredPositive(m, path, "width"); err != nil {
		return nil, err
	}
	if mem.Depth, err = requiredPositive(m, path, "depth"); err != nil {
		return nil, err
	}
	return mem, nil
}

func decodeLogicAnalyzer(path string, m yaml.MapSlice) (*LogicAnalyzerCore, error) {
	warnUnknown(path, m, "type", "sample_depth", "probes", "triggers", "trigger_mode",
		"trigger_location", "trigger_loc")
	var err error
	la := &LogicAnalyzerCore{TriggerMode: TriggerModeSingleShot}
	if la.SampleDepth, err = requiredPositive(m, path, "sample_depth"); err != nil {
		return nil, err
	}

	probesNode, ok := lookup(m, "probes")
	if !ok {
		return nil, NewErrConfig("%s: logic analyzer must have at least one probe", path)
	}
	probes, err := asMap(probesNode, path+".probes")
	if err != nil {
		return nil, err
	}
	names := map[string]bool{}
	for _, item := range probes {
		name := keyString(item.Key)
		width, err := asPositive(item.Value, path+".probes."+name)
		if err != nil {
			return nil, err
		}
		if names[name] {
			return nil, NewErrConfig("%s: duplicate probe name %s", path, name)
		}
		names[name] = true
		la.Probes = append(la.Probes, &Probe{Name: name, Width: width})
	}
	if len(la.Probes) == 0 {
		return nil, NewErrConfig("%s: logic analyzer must have at least one probe", path)
	}

	if v, ok := lookup(m, "trigger_mode"); ok {
		la.TriggerMode = strings.ToLower(fmt.Sprint(v))
		switch la.TriggerMode {
		case TriggerModeSingleShot, TriggerModeIncremental, TriggerModeImmediate:
		default:
			return nil, NewErrConfig("%s: unknown trigger mode %v", path, v)
		}
	}

	if v, ok := lookup(m, "triggers"); ok {
		list, ok := v.([]interface{})
		if !ok {
			return nil, NewErrConfig("%s.triggers must be a list of strings", path)
		}
		for _, t := range list {
			s, ok := t.(string)
			if !ok {
				return nil, NewErrConfig("%s: trigger %v must be a string", path, t)
			}
			la.Triggers = append(la.Triggers, s)
		}
	}
	if la.TriggerMode != TriggerModeImmediate && len(la.Triggers) == 0 {
		return nil, NewErrConfig("%s: at least one trigger must be specified unless trigger_mode is immediate", path)
	}

	locNode, ok := lookup(m, "trigger_location")
	if !ok {
		locNode, ok = lookup(m, "trigger_loc")
	}
	if ok {
		loc, err := asInt(locNode, path+".trigger_location")
		if err != nil {
			return nil, err
		}
		if loc < 0 || loc >= la.SampleDepth {
			return nil, NewErrConfig("%s: trigger_location %d must be in [0, %d)", path, loc, la.SampleDepth)
		}
		la.TriggerLocation = &loc
	}
	return la, nil
}

func lookup(m yaml.MapSlice, key string) (interface{}, bool) {
	for _, item := range m {
		if keyString(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

func keyString(key interface{}) string {
	return fmt.Sprint(key)
}

func warnUnknown(path string, m yaml.MapSlice, known ...string) {
	for _, item := range m {
		key := keyString(item.Key)
		found := false
		for _, k := range known {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			if path != "" {
				key = path + "." + key
			}
			log.Warning("Ignoring unrecognized option %s", key)
		}
	}
}

func asMap(node interface{}, path string) (yaml.MapSlice, error) {
	if node == nil {
		return yaml.MapSlice{}, nil
	}
	m, ok := node.(yaml.MapSlice)
	if !ok {
		return nil, NewErrConfig("%s must be a mapping", path)
	}
	return m, nil
}

func asInt(node interface{}, path string) (int, error) {
	switch v := node.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, NewErrConfig("%s: %d is too large", path, v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64/2 {
			return 0, NewErrConfig("%s: %v is not an integer", path, v)
		}
		return int(v), nil
	}
	return 0, NewErrConfig("%s: %v is not an integer", path, node)
}

func asPositive(node interface{}, path string) (int, error) {
	v, err := asInt(node, path)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, NewErrConfig("%s must be a positive integer, got %d", path, v)
	}
	return v, nil
}

func asBig(node interface{}, path string) (*big.Int, error) {
	switch v := node.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		b, ok := new(big.Int).SetString(strings.ReplaceAll(v, "_", ""), 0)
		if ok {
			return b, nil
		}
	case float64:
		if v == math.Trunc(v) {
			b, _ := big.NewFloat(v).Int(nil)
			return b, nil
		}
	}
	return nil, NewErrConfig("%s: %v is not an integer", path, node)
}

func requiredString(m yaml.MapSlice, path, key string) (string, error) {
	v, ok := lookup(m, key)
	if !ok || v == nil {
		return "", NewErrConfig("%s.%s must be specified", path, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", NewErrConfig("%s.%s must be a string", path, key)
	}
	return s, nil
}

func requiredPositive(m yaml.MapSlice, path, key string) (int, error) {
	v, ok := lookup(m, key)
	if !ok {
		return 0, NewErrConfig("%s.%s must be specified", path, key)
	}
	return asPositive(v, path+"."+key)
}

func optionalPositive(m yaml.MapSlice, path, key string, def int) (int, error) {
	v, ok := lookup(m, key)
	if !ok {
		return def, nil
	}
	return asPositive(v, path+"."+key)
}

func optionalSeconds(m yaml.MapSlice, path, key string, def float64) (float64, error) {
	v, ok := lookup(m, key)
	if !ok {
		return def, nil
	}
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case float64:
		f = t
	default:
		return 0, NewErrConfig("%s.%s: %v is not a number", path, key, v)
	}
	if f <= 0 {
		return 0, NewErrConfig("%s.%s must be positive", path, key)
	}
	return f, nil
}

func requiredIP(m yaml.MapSlice, key string) (string, error) {
	s, err := requiredString(m, "ethernet", key)
	if err != nil {
		return "", err
	}
	if net.ParseIP(s) == nil {
		return "", NewErrConfig("ethernet.%s: %s is not an IP address", key, s)
	}
	return s, nil
}
