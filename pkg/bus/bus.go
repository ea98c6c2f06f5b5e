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

package bus

import (
	"fmt"
)

// Request is a single 16-bit address / 16-bit data bus transaction.
// Data is ignored on reads. Last marks the final request of a batch.
type Request struct {
	Addr  uint16
	Data  uint16
	Write bool
	Last  bool
}

// Reply carries the data returned by a read request.
type Reply struct {
	Data uint16
}

// Hex returns address and data formatted as 0x prefixed hex strings
func (r *Request) Hex() (string, string) {
	return fmt.Sprintf("0x%04x", r.Addr), fmt.Sprintf("0x%04x", r.Data)
}

func (r *Request) String() string {
	if r.Write {
		return fmt.Sprintf("W %04X %04X", r.Addr, r.Data)
	}
	return fmt.Sprintf("R %04X", r.Addr)
}

// Bus is the memory bus shared by all cores. Implementations are not safe
// for concurrent use.
type Bus interface {
	// Read issues one read per address and returns one value per address
	// in the same order.
	Read(addrs []uint16) ([]uint16, error)
	// Write issues one write per address/data pair. Writes are not acknowledged.
	Write(addrs []uint16, data []uint16) error
	// Close releases the underlying link. A closed bus reopens on next use.
	Close() error
}

// ReadOne reads a single address.
func ReadOne(b Bus, addr uint16) (uint16, error) {
	data, err := b.Read([]uint16{addr})
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

// WriteOne writes a single address.
func WriteOne(b Bus, addr, data uint16) error {
	return b.Write([]uint16{addr}, []uint16{data})
}

// ReadRequests builds the read batch for addrs.
func ReadRequests(addrs []uint16) []*Request {
	reqs := make([]*Request, len(addrs))
	for i, addr := range addrs {
		reqs[i] = &Request{Addr: addr, Last: i == len(addrs)-1}
	}
	return reqs
}

// WriteRequests builds the write batch for addrs and data.
func WriteRequests(addrs []uint16, data []uint16) ([]*Request, error) {
	if len(addrs) != len(data) {
		return nil, ErrTransport{What: fmt.Sprintf("write batch has %d addresses and %d data words", len(addrs), len(data))}
	}
	reqs := make([]*Request, len(addrs))
	for i, addr := range addrs {
		reqs[i] = &Request{Addr: addr, Data: data[i], Write: true, Last: i == len(addrs)-1}
	}
	return reqs, nil
}
