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

package devsim

import (
	"math/big"

	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/iocore"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

// IOModel behaves like the device side of an IO core. On the strobe rising
// edge outputs are driven from their registers and live inputs are latched
// into theirs.
type IOModel struct {
	dev     *Device
	core    *iocore.Core
	inputs  map[string]*big.Int
	outputs map[string]*big.Int

	// OnDrive is called after outputs have been driven on a strobe, with the
	// values driven before it. The device is locked.
	OnDrive func(prev map[string]*big.Int)
	// BeforeLatch is called before inputs are latched. The device is locked.
	BeforeLatch func()
}

func NewIOModel(d *Device, c *iocore.Core) *IOModel {
	m := &IOModel{
		dev:     d,
		core:    c,
		inputs:  map[string]*big.Int{},
		outputs: map[string]*big.Int{},
	}
	d.mu.Lock()
	for _, p := range c.Probes() {
		v := new(big.Int)
		if p.InitialValue != nil {
			v.Set(p.InitialValue)
		}
		if p.Direction == core.DirectionInput {
			m.inputs[p.Name] = v
			continue
		}
		m.outputs[p.Name] = v
		m.load(p, v)
	}
	d.mu.Unlock()
	d.OnWrite(c.StrobeAddr(), func(addr, old, value uint16) {
		if old&1 == 0 && value&1 == 1 {
			m.strobe()
		}
	})
	return m
}

func (m *IOModel) Core() *iocore.Core {
	return m.core
}

func (m *IOModel) load(p *iocore.Probe, v *big.Int) {
	data, _ := words.ValueToWords(words.Wrap(v, p.Width), len(p.Addrs()))
	for i, addr := range p.Addrs() {
		m.dev.regs[addr] = data[i]
	}
}

func (m *IOModel) fetch(p *iocore.Probe) *big.Int {
	data := make([]uint16, len(p.Addrs()))
	for i, addr := range p.Addrs() {
		data[i] = m.dev.regs[addr]
	}
	return words.Slice(words.WordsToValue(data), 0, p.Width)
}

func (m *IOModel) strobe() {
	prev := make(map[string]*big.Int, len(m.outputs))
	for _, p := range m.core.Probes() {
		if p.Direction == core.DirectionOutput {
			prev[p.Name] = m.outputs[p.Name]
			m.outputs[p.Name] = m.fetch(p)
		}
	}
	if m.OnDrive != nil {
		m.OnDrive(prev)
	}
	if m.BeforeLatch != nil {
		m.BeforeLatch()
	}
	for _, p := range m.core.Probes() {
		if p.Direction == core.DirectionInput {
			m.load(p, m.inputs[p.Name])
		}
	}
}

// SetInput changes the live value of an input. It reaches the register on
// the next strobe.
func (m *IOModel) SetInput(name string, v *big.Int) {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	m.setInput(name, v)
}

func (m *IOModel) setInput(name string, v *big.Int) {
	m.inputs[name] = new(big.Int).Set(v)
}

// Output returns the value currently driven on an output
func (m *IOModel) Output(name string) *big.Int {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	return m.output(name)
}

func (m *IOModel) output(name string) *big.Int {
	v, ok := m.outputs[name]
	if !ok {
		return nil
	}
	return new(big.Int).Set(v)
}
