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

// Package manta composes a transport and a set of cores from a design
// configuration and gives named access to them.
package manta

import (
	"io/ioutil"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/ether"
	"jinr.ru/greenlab/go-manta/pkg/iocore"
	"jinr.ru/greenlab/go-manta/pkg/la"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/memcore"
	"jinr.ru/greenlab/go-manta/pkg/uart"
)

type Manta struct {
	cfg     *config.Manta
	bus     bus.Bus
	cores   *Cores
	addrMap core.AddressMap
}

type options struct {
	bus      bus.Bus
	uartOpts []uart.Option
}

type Option func(*options)

// WithBus makes the cores use b instead of the configured interface
func WithBus(b bus.Bus) Option {
	return func(o *options) {
		o.bus = b
	}
}

// WithUARTOptions passes options to the UART transport
func WithUARTOptions(opts ...uart.Option) Option {
	return func(o *options) {
		o.uartOpts = append(o.uartOpts, opts...)
	}
}

// New builds the transport, then places the cores one after another from
// address 0 in configuration order. Nothing is sent to the device.
func New(cfg *config.Manta, opts ...Option) (*Manta, error) {
	if cfg == nil {
		return nil, config.NewErrConfig("no manta configuration")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	b := o.bus
	if b == nil {
		var err error
		b, err = NewTransport(cfg.Interface, o.uartOpts...)
		if err != nil {
			return nil, err
		}
	}

	m := &Manta{
		cfg:   cfg,
		bus:   b,
		cores: newCores(),
	}
	base := 0
	for _, c := range cfg.Cores {
		if base >= core.MaxAddr {
			return nil, config.NewErrConfig("no address space left for core %s", c.Name)
		}
		cr, err := newCore(c, base, b, cfg.Interface.ClockFreq())
		if err != nil {
			return nil, err
		}
		if err := m.cores.add(cr); err != nil {
			return nil, err
		}
		log.Debug("Placed %s %s at 0x%04X with %d addresses", c.Type, c.Name, base, cr.Size())
		base += cr.Size()
	}
	addrMap, err := core.NewAddressMap(m.cores.All())
	if err != nil {
		return nil, err
	}
	m.addrMap = addrMap
	return m, nil
}

// Open reads a design configuration file and composes it
func Open(path string, opts ...Option) (*Manta, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manta config %s", path)
	}
	cfg, err := config.ParseManta(data)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// NewTransport returns the bus for the configured interface
func NewTransport(ifc *config.Interface, uartOpts ...uart.Option) (bus.Bus, error) {
	switch {
	case ifc == nil:
		return nil, config.NewErrConfig("no interface specified")
	case ifc.UART != nil && ifc.Ethernet != nil:
		return nil, config.NewErrConfig("interface must be either uart or ethernet")
	case ifc.UART != nil:
		return uart.New(ifc.UART, uartOpts...)
	case ifc.Ethernet != nil:
		return ether.New(ifc.Ethernet)
	}
	return nil, config.NewErrConfig("interface must be either uart or ethernet")
}

func newCore(c *config.Core, base int, b bus.Bus, clockFreq int) (core.Core, error) {
	switch c.Type {
	case config.CoreTypeIO:
		return iocore.New(c.Name, c.IO, base, b)
	case config.CoreTypeMemory:
		return memcore.New(c.Name, c.Memory, base, b)
	case config.CoreTypeLogicAnalyzer:
		return la.New(c.Name, c.LogicAnalyzer, base, b, clockFreq)
	}
	return nil, config.NewErrConfig("unknown type %s of core %s", c.Type, c.Name)
}

func (m *Manta) Cores() *Cores {
	return m.cores
}

func (m *Manta) Bus() bus.Bus {
	return m.bus
}

func (m *Manta) AddressMap() core.AddressMap {
	return m.addrMap
}

// CoreDescription is the memory map and port list of one core
type CoreDescription struct {
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Base      uint16           `json:"base"`
	Size      int              `json:"size"`
	Registers []*core.Register `json:"registers"`
	Ports     []*core.Port     `json:"ports"`
}

// MemoryMapDescription describes every core in address order
func (m *Manta) MemoryMapDescription() []*CoreDescription {
	result := make([]*CoreDescription, 0, len(m.cores.All()))
	for _, c := range m.cores.All() {
		result = append(result, &CoreDescription{
			Name:      c.Name(),
			Type:      c.Type(),
			Base:      c.BaseAddr(),
			Size:      c.Size(),
			Registers: c.MemoryMap(),
			Ports:     c.TopLevelPorts(),
		})
	}
	return result
}

// TopLevelPorts returns the user facing ports of every core by core name
func (m *Manta) TopLevelPorts() map[string][]*core.Port {
	result := map[string][]*core.Port{}
	for _, c := range m.cores.All() {
		result[c.Name()] = c.TopLevelPorts()
	}
	return result
}

// Config rebuilds the design configuration from the composed cores
func (m *Manta) Config() *config.Manta {
	cfg := &config.Manta{Interface: m.cfg.Interface}
	for _, c := range m.cores.All() {
		cfg.Cores = append(cfg.Cores, c.Config())
	}
	return cfg
}

// ExportConfig returns the design configuration as YAML
func (m *Manta) ExportConfig() ([]byte, error) {
	return config.ExportManta(m.Config())
}

// Close releases the link
func (m *Manta) Close() error {
	return m.bus.Close()
}
