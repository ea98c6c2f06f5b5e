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

package core

import (
	"jinr.ru/greenlab/go-manta/pkg/config"
)

// MaxAddr is the size of the bus address space
const MaxAddr = 0x10000

const (
	DirectionInput  = "input"
	DirectionOutput = "output"
	DirectionStrobe = "strobe"
	DirectionMemory = "memory"
)

// Register describes a named window of bus addresses. Addrs are absolute
// bus addresses, least significant word first.
type Register struct {
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Width     int      `json:"width"`
	Addrs     []uint16 `json:"addrs"`
}

// Port is a signal a core exposes to user logic on the device.
type Port struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Width     int    `json:"width"`
}

// Core is a debug module mapped into a contiguous bus address window.
// Implemented by the io, memory and logic analyzer cores.
type Core interface {
	Name() string
	Type() string
	BaseAddr() uint16
	// Size is the number of bus addresses the core occupies
	Size() int
	// MemoryMap describes every register of the core
	MemoryMap() []*Register
	// TopLevelPorts lists the signals the core connects to user logic
	TopLevelPorts() []*Port
	// Config exports the core configuration
	Config() *config.Core
}

// CheckWindow fails when [base, base+size) does not fit in the bus address space.
func CheckWindow(name string, base, size int) error {
	if base < 0 || size <= 0 {
		return config.NewErrConfig("core %s has an empty address window", name)
	}
	if base+size > MaxAddr {
		return config.NewErrConfig("core %s at 0x%04X with %d addresses runs out of the 16-bit address space",
			name, base, size)
	}
	return nil
}
