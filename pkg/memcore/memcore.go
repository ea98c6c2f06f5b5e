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

package memcore

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

// Core is a depth x width memory split into ceil(width/16) banks of depth
// words. Word b of entry i lives at base + b*depth + i.
type Core struct {
	name   string
	mode   string
	width  int
	depth  int
	nBanks int
	base   uint16
	bus    bus.Bus
}

var _ core.Core = &Core{}

func New(name string, cfg *config.MemoryCore, base int, b bus.Bus) (*Core, error) {
	if cfg == nil {
		return nil, config.NewErrConfig("no configuration for memory core %s", name)
	}
	switch cfg.Mode {
	case config.ModeHostToFPGA, config.ModeFPGAToHost, config.ModeBidirectional:
	default:
		return nil, config.NewErrConfig("unknown mode %s of memory core %s", cfg.Mode, name)
	}
	if cfg.Width <= 0 || cfg.Depth <= 0 {
		return nil, config.NewErrConfig("memory core %s must have positive width and depth", name)
	}
	c := &Core{
		name:   name,
		mode:   cfg.Mode,
		width:  cfg.Width,
		depth:  cfg.Depth,
		nBanks: words.NBanks(cfg.Width),
		bus:    b,
	}
	if err := core.CheckWindow(name, base, c.Size()); err != nil {
		return nil, err
	}
	c.base = uint16(base)
	return c, nil
}

func (c *Core) Name() string {
	return c.name
}

func (c *Core) Type() string {
	return config.CoreTypeMemory
}

func (c *Core) BaseAddr() uint16 {
	return c.base
}

func (c *Core) Size() int {
	return c.nBanks * c.depth
}

func (c *Core) Mode() string {
	return c.mode
}

func (c *Core) Width() int {
	return c.width
}

func (c *Core) Depth() int {
	return c.depth
}

func (c *Core) NBanks() int {
	return c.nBanks
}

// BusAddrs expands user addresses into bus addresses, all banks of the
// first entry first.
func (c *Core) BusAddrs(addrs []int) ([]uint16, error) {
	result := make([]uint16, 0, len(addrs)*c.nBanks)
	for _, a := range addrs {
		if a < 0 || a >= c.depth {
			return nil, config.NewErrConfig("address %d is out of range of %s with depth %d", a, c.name, c.depth)
		}
		for b := 0; b < c.nBanks; b++ {
			result = append(result, uint16(int(c.base)+a+b*c.depth))
		}
	}
	return result, nil
}

// Read returns the entries at addrs using a single bus batch.
func (c *Core) Read(addrs []int) ([]*big.Int, error) {
	if c.mode == config.ModeHostToFPGA {
		log.Warning("Reading %s which is configured as %s", c.name, c.mode)
	}
	busAddrs, err := c.BusAddrs(addrs)
	if err != nil {
		return nil, err
	}
	data, err := c.bus.Read(busAddrs)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", c.name)
	}
	if len(data) != len(busAddrs) {
		return nil, bus.ErrTransport{What: fmt.Sprintf("expected %d words from %s, got %d", len(busAddrs), c.name, len(data))}
	}
	result := make([]*big.Int, len(addrs))
	for i := range addrs {
		result[i] = words.WordsToValue(data[i*c.nBanks : (i+1)*c.nBanks])
	}
	return result, nil
}

// Write stores values at addrs using a single bus batch. Negative values are
// stored in two's complement.
func (c *Core) Write(addrs []int, values []*big.Int) error {
	if len(addrs) != len(values) {
		return config.NewErrConfig("write to %s has %d addresses and %d values", c.name, len(addrs), len(values))
	}
	if c.mode == config.ModeFPGAToHost {
		log.Warning("Writing %s which is configured as %s", c.name, c.mode)
	}
	busAddrs, err := c.BusAddrs(addrs)
	if err != nil {
		return err
	}
	data := make([]uint16, 0, len(busAddrs))
	for _, v := range values {
		if !words.Fits(v, c.width) {
			return config.NewErrConfig("value %s does not fit in %d bits of %s", v, c.width, c.name)
		}
		ws, err := words.ValueToWords(words.Wrap(v, c.width), c.nBanks)
		if err != nil {
			return err
		}
		data = append(data, ws...)
	}
	if err := c.bus.Write(busAddrs, data); err != nil {
		return errors.Wrapf(err, "writing %s", c.name)
	}
	return nil
}

func (c *Core) ReadOne(addr int) (*big.Int, error) {
	values, err := c.Read([]int{addr})
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

func (c *Core) WriteOne(addr int, value *big.Int) error {
	return c.Write([]int{addr}, []*big.Int{value})
}

func (c *Core) MemoryMap() []*core.Register {
	regs := make([]*core.Register, 0, c.nBanks)
	for b := 0; b < c.nBanks; b++ {
		width := words.WordBits
		if b == c.nBanks-1 && c.width%words.WordBits != 0 {
			width = c.width % words.WordBits
		}
		addrs := make([]uint16, 0, c.depth)
		for i := 0; i < c.depth; i++ {
			addrs = append(addrs, uint16(int(c.base)+b*c.depth+i))
		}
		regs = append(regs, &core.Register{
			Name:      fmt.Sprintf("%s_bank%d", c.name, b),
			Direction: core.DirectionMemory,
			Width:     width,
			Addrs:     addrs,
		})
	}
	return regs
}

func (c *Core) TopLevelPorts() []*core.Port {
	addrWidth := 1
	for (1 << uint(addrWidth)) < c.depth {
		addrWidth++
	}
	ports := []*core.Port{{Name: "user_addr", Direction: core.DirectionInput, Width: addrWidth}}
	if c.mode != config.ModeHostToFPGA {
		ports = append(ports,
			&core.Port{Name: "user_data_in", Direction: core.DirectionInput, Width: c.width},
			&core.Port{Name: "user_write_enable", Direction: core.DirectionInput, Width: 1})
	}
	if c.mode != config.ModeFPGAToHost {
		ports = append(ports, &core.Port{Name: "user_data_out", Direction: core.DirectionOutput, Width: c.width})
	}
	return ports
}

func (c *Core) Config() *config.Core {
	return &config.Core{
		Name: c.name,
		Type: config.CoreTypeMemory,
		Memory: &config.MemoryCore{
			Mode:  c.mode,
			Width: c.width,
			Depth: c.depth,
		},
	}
}
