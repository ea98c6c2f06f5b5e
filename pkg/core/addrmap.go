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
	"fmt"

	"jinr.ru/greenlab/go-manta/pkg/config"
)

// Entry is a core placed in the address map.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Base uint16 `json:"base"`
	Size int    `json:"size"`
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s (%s): 0x%04X - 0x%04X", e.Name, e.Type, e.Base, int(e.Base)+e.Size-1)
}

// AddressMap lists cores in placement order. Windows are contiguous and
// the first one starts at 0.
type AddressMap []*Entry

// NewAddressMap builds the map from already placed cores and checks that
// windows are contiguous, start at 0 and fit the address space.
func NewAddressMap(cores []Core) (AddressMap, error) {
	m := AddressMap{}
	next := 0
	for _, c := range cores {
		if int(c.BaseAddr()) != next {
			return nil, config.NewErrConfig("core %s is placed at 0x%04X, expected 0x%04X", c.Name(), c.BaseAddr(), next)
		}
		if err := CheckWindow(c.Name(), next, c.Size()); err != nil {
			return nil, err
		}
		m = append(m, &Entry{Name: c.Name(), Type: c.Type(), Base: c.BaseAddr(), Size: c.Size()})
		next += c.Size()
	}
	return m, nil
}

// Find returns the entry of the named core or nil
func (m AddressMap) Find(name string) *Entry {
	for _, e := range m {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Lookup returns the entry whose window contains addr or nil
func (m AddressMap) Lookup(addr uint16) *Entry {
	for _, e := range m {
		if int(addr) >= int(e.Base) && int(addr) < int(e.Base)+e.Size {
			return e
		}
	}
	return nil
}

// Used returns the number of occupied addresses
func (m AddressMap) Used() int {
	used := 0
	for _, e := range m {
		used += e.Size
	}
	return used
}
