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
	"time"
)

// Manta is a decoded design configuration: one link interface and an
// ordered list of cores.
type Manta struct {
	Interface *Interface
	Cores     []*Core
}

// Interface holds exactly one of UART or Ethernet.
type Interface struct {
	UART     *UART
	Ethernet *Ethernet
}

type UART struct {
	Port          string
	ClockFreq     int
	Baudrate      int
	ChunkSize     int
	StallInterval int
	// Timeout is the per-read timeout in seconds
	Timeout float64
}

// ReadTimeout returns Timeout as a duration
func (u *UART) ReadTimeout() time.Duration {
	return time.Duration(u.Timeout * float64(time.Second))
}

type Ethernet struct {
	FPGAIP  string
	HostIP  string
	UDPPort int
	Phy     string
	ClkFreq int
	FPGAMac string
	HostMac string
	Timeout float64
}

// ReadTimeout returns Timeout as a duration
func (e *Ethernet) ReadTimeout() time.Duration {
	return time.Duration(e.Timeout * float64(time.Second))
}

// ClockFreq returns the FPGA clock frequency of the link, 0 if unknown.
func (i *Interface) ClockFreq() int {
	switch {
	case i == nil:
		return 0
	case i.UART != nil:
		return i.UART.ClockFreq
	case i.Ethernet != nil:
		return i.Ethernet.ClkFreq
	}
	return 0
}

type Probe struct {
	Name  string
	Width int
	// InitialValue is only meaningful for IO core outputs, nil if unset
	InitialValue *big.Int
}

type IOCore struct {
	Inputs  []*Probe
	Outputs []*Probe
}

type MemoryCore struct {
	Mode  string
	Width int
	Depth int
}

type LogicAnalyzerCore struct {
	SampleDepth int
	Probes      []*Probe
	Triggers    []string
	TriggerMode string
	// TriggerLocation is nil when not configured
	TriggerLocation *int
}

// Core is one entry of the ordered cores mapping. Exactly one of IO,
// Memory and LogicAnalyzer is set according to Type.
type Core struct {
	Name          string
	Type          string
	IO            *IOCore
	Memory        *MemoryCore
	LogicAnalyzer *LogicAnalyzerCore
}

// FindCore returns the core with the given name or nil
func (m *Manta) FindCore(name string) *Core {
	for _, c := range m.Cores {
		if c.Name == name {
			return c
		}
	}
	return nil
}
