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

package manta

import (
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/iocore"
	"jinr.ru/greenlab/go-manta/pkg/la"
	"jinr.ru/greenlab/go-manta/pkg/memcore"
)

// Cores holds the composed cores in address order, keyed by name.
type Cores struct {
	order  []core.Core
	byName map[string]core.Core
}

func newCores() *Cores {
	return &Cores{byName: map[string]core.Core{}}
}

func (c *Cores) add(cr core.Core) error {
	if _, ok := c.byName[cr.Name()]; ok {
		return config.NewErrConfig("duplicate core name %s", cr.Name())
	}
	c.order = append(c.order, cr)
	c.byName[cr.Name()] = cr
	return nil
}

// All returns the cores in address order
func (c *Cores) All() []core.Core {
	return c.order
}

func (c *Cores) Names() []string {
	names := make([]string, len(c.order))
	for i, cr := range c.order {
		names[i] = cr.Name()
	}
	return names
}

func (c *Cores) Get(name string) (core.Core, error) {
	cr, ok := c.byName[name]
	if !ok {
		return nil, ErrUnknownCore{Name: name}
	}
	return cr, nil
}

func (c *Cores) IO(name string) (*iocore.Core, error) {
	cr, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	io, ok := cr.(*iocore.Core)
	if !ok {
		return nil, ErrCoreType{Name: name, Type: cr.Type(), Expected: config.CoreTypeIO}
	}
	return io, nil
}

func (c *Cores) Memory(name string) (*memcore.Core, error) {
	cr, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	mem, ok := cr.(*memcore.Core)
	if !ok {
		return nil, ErrCoreType{Name: name, Type: cr.Type(), Expected: config.CoreTypeMemory}
	}
	return mem, nil
}

func (c *Cores) LogicAnalyzer(name string) (*la.Core, error) {
	cr, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	l, ok := cr.(*la.Core)
	if !ok {
		return nil, ErrCoreType{Name: name, Type: cr.Type(), Expected: config.CoreTypeLogicAnalyzer}
	}
	return l, nil
}
