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

// Package iocore drives IO cores: named input and output probes behind a
// strobe gated register window.
//
// Layout: the strobe register sits at the base address, followed by the
// inputs and then the outputs in declaration order. A probe of width w takes
// ceil(w/16) addresses, least significant word first. On the strobe rising
// edge the device latches live inputs into their registers and drives
// outputs from theirs.
package iocore

import (
	"math/big"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

type Probe struct {
	Name         string
	Width        int
	Direction    string
	InitialValue *big.Int
	addrs        []uint16
}

// Addrs returns the bus addresses of the probe window
func (p *Probe) Addrs() []uint16 {
	return p.addrs
}

type Core struct {
	name   string
	base   uint16
	size   int
	bus    bus.Bus
	probes []*Probe
}

var _ core.Core = &Core{}

// New places an IO core at base. The bus is not touched.
func New(name string, cfg *config.IOCore, base int, b bus.Bus) (*Core, error) {
	if cfg == nil || len(cfg.Inputs)+len(cfg.Outputs) == 0 {
		return nil, config.NewErrConfig("io core %s must have at least one probe", name)
	}
	c := &Core{
		name: name,
		bus:  b,
	}
	seen := map[string]bool{}
	addr := base + 1
	add := func(p *config.Probe, direction string) error {
		if p.Width <= 0 {
			return config.NewErrConfig("probe %s of %s must have a positive width", p.Name, name)
		}
		if seen[p.Name] {
			return config.NewErrConfig("duplicate probe name %s in %s", p.Name, name)
		}
		seen[p.Name] = true
		if p.InitialValue != nil && !words.FitsUnsigned(p.InitialValue, p.Width) {
			return config.NewErrConfig("initial value of %s does not fit in %d bits", p.Name, p.Width)
		}
		probe := &Probe{
			Name:         p.Name,
			Width:        p.Width,
			Direction:    direction,
			InitialValue: p.InitialValue,
		}
		for i := 0; i < words.NBanks(p.Width); i++ {
			probe.addrs = append(probe.addrs, uint16(addr))
			addr++
		}
		c.probes = append(c.probes, probe)
		return nil
	}
	for _, p := range cfg.Inputs {
		if err := add(p, core.DirectionInput); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.Outputs {
		if err := add(p, core.DirectionOutput); err != nil {
			return nil, err
		}
	}
	c.size = addr - base
	if err := core.CheckWindow(name, base, c.size); err != nil {
		return nil, err
	}
	c.base = uint16(base)
	return c, nil
}

func (c *Core) Name() string {
	return c.name
}

func (c *Core) Type() string {
	return config.CoreTypeIO
}

func (c *Core) BaseAddr() uint16 {
	return c.base
}

func (c *Core) Size() int {
	return c.size
}

func (c *Core) StrobeAddr() uint16 {
	return c.base
}

func (c *Core) Probes() []*Probe {
	return c.probes
}

// FindProbe returns the handle of the named probe
func (c *Core) FindProbe(name string) (*Probe, error) {
	var found *Probe
	for _, p := range c.probes {
		if p.Name == name {
			if found != nil {
				return nil, config.NewErrConfig("probe name %s is ambiguous in %s", name, c.name)
			}
			found = p
		}
	}
	if found == nil {
		return nil, config.NewErrConfig("no probe %s in %s", name, c.name)
	}
	return found, nil
}

// Strobe pulses the strobe register 0, 1, 0
func (c *Core) Strobe() error {
	return c.bus.Write([]uint16{c.base, c.base, c.base}, []uint16{0, 1, 0})
}

// SetProbe writes value to an output probe and strobes it to the device.
// Negative values are stored in two's complement.
func (c *Core) SetProbe(name string, value *big.Int) error {
	p, err := c.FindProbe(name)
	if err != nil {
		return err
	}
	if p.Direction != core.DirectionOutput {
		return config.NewErrConfig("probe %s of %s is not an output", name, c.name)
	}
	if !words.Fits(value, p.Width) {
		return config.NewErrConfig("value %s does not fit in %d bits of probe %s", value, p.Width, name)
	}
	data, err := words.ValueToWords(words.Wrap(value, p.Width), len(p.addrs))
	if err != nil {
		return err
	}
	log.Debug("Setting %s.%s to %s", c.name, name, value)
	if err := c.bus.Write(p.addrs, data); err != nil {
		return errors.Wrapf(err, "setting %s.%s", c.name, name)
	}
	if err := c.Strobe(); err != nil {
		return errors.Wrapf(err, "strobing %s", c.name)
	}
	return nil
}

func (c *Core) SetProbeInt(name string, value int64) error {
	return c.SetProbe(name, big.NewInt(value))
}

// GetProbe strobes the core so inputs are sampled now and returns the
// probe value as an unsigned number.
func (c *Core) GetProbe(name string) (*big.Int, error) {
	p, err := c.FindProbe(name)
	if err != nil {
		return nil, err
	}
	if err := c.Strobe(); err != nil {
		return nil, errors.Wrapf(err, "strobing %s", c.name)
	}
	data, err := c.bus.Read(p.addrs)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s.%s", c.name, name)
	}
	return words.WordsToValue(data), nil
}

func (c *Core) GetProbeUint64(name string) (uint64, error) {
	v, err := c.GetProbe(name)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Errorf("value of %s.%s does not fit in 64 bits", c.name, name)
	}
	return v.Uint64(), nil
}

func (c *Core) MemoryMap() []*core.Register {
	regs := []*core.Register{{
		Name:      c.name + "_strobe",
		Direction: core.DirectionStrobe,
		Width:     1,
		Addrs:     []uint16{c.base},
	}}
	for _, p := range c.probes {
		regs = append(regs, &core.Register{
			Name:      c.name + "_" + p.Name,
			Direction: p.Direction,
			Width:     p.Width,
			Addrs:     p.addrs,
		})
	}
	return regs
}

func (c *Core) TopLevelPorts() []*core.Port {
	var ports []*core.Port
	for _, p := range c.probes {
		ports = append(ports, &core.Port{Name: p.Name, Direction: p.Direction, Width: p.Width})
	}
	return ports
}

func (c *Core) Config() *config.Core {
	io := &config.IOCore{}
	for _, p := range c.probes {
		cp := &config.Probe{Name: p.Name, Width: p.Width, InitialValue: p.InitialValue}
		if p.Direction == core.DirectionInput {
			io.Inputs = append(io.Inputs, cp)
		} else {
			io.Outputs = append(io.Outputs, cp)
		}
	}
	return &config.Core{Name: c.name, Type: config.CoreTypeIO, IO: io}
}
