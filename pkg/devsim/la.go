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

	"jinr.ru/greenlab/go-manta/pkg/la"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

// Armed is what the logic analyzer saw when a capture was started
type Armed struct {
	TriggerMode     uint64
	TriggerLocation uint64
	Ops             map[string]uint64
	Args            map[string]*big.Int
}

// LAModel runs the capture state machine of a logic analyzer. A started
// capture completes after PollsUntilCaptured strobes of the FSM block, then
// Samples are loaded into the sample memory and ReadPointer is reported.
type LAModel struct {
	dev  *Device
	core *la.Core
	fsm  *IOModel
	trig *IOModel

	// Samples in memory order, indexed by sample memory address
	Samples            []*big.Int
	ReadPointer        int
	PollsUntilCaptured int
	// Stuck keeps the state machine in its current state
	Stuck bool

	state  la.State
	polls  int
	armed  *Armed
	starts int
}

func NewLAModel(d *Device, c *la.Core) *LAModel {
	m := &LAModel{
		dev:  d,
		core: c,
		fsm:  NewIOModel(d, c.FSM()),
		trig: NewIOModel(d, c.TriggerBlock()),
	}
	m.fsm.OnDrive = m.drive
	m.fsm.BeforeLatch = m.latch
	return m
}

// SetState forces the state machine into s
func (m *LAModel) SetState(s la.State) {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	m.state = s
}

func (m *LAModel) State() la.State {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	return m.state
}

// Armed returns the configuration seen by the last start, nil if none
func (m *LAModel) Armed() *Armed {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	return m.armed
}

// Starts returns the number of accepted start requests
func (m *LAModel) Starts() int {
	m.dev.mu.Lock()
	defer m.dev.mu.Unlock()
	return m.starts
}

func rising(prev, cur *big.Int) bool {
	return prev.Sign() == 0 && cur.Sign() != 0
}

func (m *LAModel) drive(prev map[string]*big.Int) {
	if m.Stuck {
		return
	}
	if rising(prev[la.RegRequestStop], m.fsm.outputs[la.RegRequestStop]) {
		m.state = la.StateIdle
	}
	if rising(prev[la.RegRequestStart], m.fsm.outputs[la.RegRequestStart]) && m.state == la.StateIdle {
		armed := &Armed{
			TriggerMode:     m.fsm.outputs[la.RegTriggerMode].Uint64(),
			TriggerLocation: m.fsm.outputs[la.RegTriggerLocation].Uint64(),
			Ops:             map[string]uint64{},
			Args:            map[string]*big.Int{},
		}
		for _, p := range m.core.Probes() {
			armed.Ops[p.Name] = m.trig.output(la.OpRegister(p.Name)).Uint64()
			armed.Args[p.Name] = m.trig.output(la.ArgRegister(p.Name))
		}
		m.armed = armed
		m.starts++
		m.polls = 0
		m.state = la.StateMoveToPosition
		if la.TriggerMode(armed.TriggerMode) == la.TriggerModeImmediate {
			m.state = la.StateCapturing
		}
	}
}

func (m *LAModel) latch() {
	if !m.Stuck {
		switch m.state {
		case la.StateMoveToPosition, la.StateInPosition, la.StateCapturing:
			m.polls++
			switch {
			case m.polls > m.PollsUntilCaptured:
				m.state = la.StateCaptured
				m.loadSamples()
			case m.state == la.StateMoveToPosition:
				m.state = la.StateInPosition
			default:
				m.state = la.StateCapturing
			}
		}
	}
	m.fsm.setInput(la.RegState, big.NewInt(int64(m.state)))
	m.fsm.setInput(la.RegReadPointer, big.NewInt(int64(m.ReadPointer)))
	m.fsm.setInput(la.RegWritePointer, big.NewInt(int64(m.ReadPointer)))
}

func (m *LAModel) loadSamples() {
	mem := m.core.SampleMemory()
	for i, s := range m.Samples {
		addrs, err := mem.BusAddrs([]int{i})
		if err != nil {
			return
		}
		data, _ := words.ValueToWords(words.Wrap(s, mem.Width()), mem.NBanks())
		for j, addr := range addrs {
			m.dev.regs[addr] = data[j]
		}
	}
}
