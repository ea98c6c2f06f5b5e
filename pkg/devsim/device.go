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

// Package devsim simulates the FPGA side of the bus: a register file with
// models of the Manta cores and device ends of the UART and UDP links.
package devsim

import (
	"sync"

	"jinr.ru/greenlab/go-manta/pkg/bus"
)

// WriteHook is called with the device locked after a register is written
type WriteHook func(addr, old, value uint16)

// Device is a 64K word register file. It implements bus.Bus so that cores
// can be driven without a transport.
type Device struct {
	mu       sync.Mutex
	regs     [1 << 16]uint16
	hooks    map[uint16][]WriteHook
	requests []*bus.Request
}

var _ bus.Bus = &Device{}

func NewDevice() *Device {
	return &Device{
		hooks: map[uint16][]WriteHook{},
	}
}

// OnWrite registers a hook for writes to addr
func (d *Device) OnWrite(addr uint16, hook WriteHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[addr] = append(d.hooks[addr], hook)
}

// Handle executes requests in order and returns the data of the reads
func (d *Device) Handle(reqs []*bus.Request) []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	var replies []uint16
	for _, req := range reqs {
		d.requests = append(d.requests, req)
		if req.Write {
			d.store(req.Addr, req.Data)
			continue
		}
		replies = append(replies, d.regs[req.Addr])
	}
	return replies
}

func (d *Device) store(addr, value uint16) {
	old := d.regs[addr]
	d.regs[addr] = value
	for _, hook := range d.hooks[addr] {
		hook(addr, old, value)
	}
}

func (d *Device) Read(addrs []uint16) ([]uint16, error) {
	replies := d.Handle(bus.ReadRequests(addrs))
	if replies == nil {
		replies = []uint16{}
	}
	return replies, nil
}

func (d *Device) Write(addrs []uint16, data []uint16) error {
	reqs, err := bus.WriteRequests(addrs, data)
	if err != nil {
		return err
	}
	d.Handle(reqs)
	return nil
}

func (d *Device) Close() error {
	return nil
}

// Peek returns a register without recording a request
func (d *Device) Peek(addr uint16) uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[addr]
}

// Poke sets a register without running hooks
func (d *Device) Poke(addr, value uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[addr] = value
}

// Requests returns the requests handled so far
func (d *Device) Requests() []*bus.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]*bus.Request, len(d.requests))
	copy(result, d.requests)
	return result
}

// ResetRequests forgets the recorded requests
func (d *Device) ResetRequests() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}
