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

// Package la drives logic analyzer cores.
//
// A logic analyzer occupies three consecutive windows: an IO block with the
// capture state machine registers, an IO block with one op and one arg
// register per probe, and a read only sample memory.
package la

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/core"
	"jinr.ru/greenlab/go-manta/pkg/iocore"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/memcore"
)

type Core struct {
	name        string
	base        uint16
	sampleDepth int
	probes      []*config.Probe
	clockFreq   int

	triggers        []*Trigger
	triggerMode     TriggerMode
	triggerLocation int
	locationSet     bool

	fsm  *iocore.Core
	trig *iocore.Core
	mem  *memcore.Core
}

var _ core.Core = &Core{}

// AddrWidth returns the width of pointers into a memory of depth entries
func AddrWidth(depth int) int {
	width := 1
	for (1 << uint(width)) < depth {
		width++
	}
	return width
}

// New places a logic analyzer at base. clockFreq is the FPGA clock used to
// time exported captures, 0 if unknown.
func New(name string, cfg *config.LogicAnalyzerCore, base int, b bus.Bus, clockFreq int) (*Core, error) {
	if cfg == nil {
		return nil, config.NewErrConfig("no configuration for logic analyzer %s", name)
	}
	if cfg.SampleDepth <= 0 {
		return nil, config.NewErrConfig("logic analyzer %s must have a positive sample_depth", name)
	}
	if len(cfg.Probes) == 0 {
		return nil, config.NewErrConfig("logic analyzer %s must have at least one probe", name)
	}
	c := &Core{
		name:            name,
		sampleDepth:     cfg.SampleDepth,
		probes:          cfg.Probes,
		clockFreq:       clockFreq,
		triggerMode:     TriggerModeSingleShot,
		triggerLocation: cfg.SampleDepth / 2,
	}
	if cfg.TriggerMode != "" {
		if err := c.SetTriggerMode(cfg.TriggerMode); err != nil {
			return nil, err
		}
	}
	if err := c.SetTriggers(cfg.Triggers); err != nil {
		return nil, err
	}
	if cfg.TriggerLocation != nil {
		if err := c.SetTriggerLocation(*cfg.TriggerLocation); err != nil {
			return nil, err
		}
	}

	aw := AddrWidth(cfg.SampleDepth)
	var err error
	c.fsm, err = iocore.New(name+"_fsm", &config.IOCore{
		Inputs: []*config.Probe{
			{Name: RegState, Width: StateWidth},
			{Name: RegReadPointer, Width: aw},
			{Name: RegWritePointer, Width: aw},
		},
		Outputs: []*config.Probe{
			{Name: RegTriggerLocation, Width: aw},
			{Name: RegTriggerMode, Width: TriggerModeWidth},
			{Name: RegRequestStart, Width: 1},
			{Name: RegRequestStop, Width: 1},
		},
	}, base, b)
	if err != nil {
		return nil, err
	}

	trigCfg := &config.IOCore{}
	totalWidth := 0
	for _, p := range cfg.Probes {
		if p.Width <= 0 {
			return nil, config.NewErrConfig("probe %s of %s must have a positive width", p.Name, name)
		}
		totalWidth += p.Width
		trigCfg.Outputs = append(trigCfg.Outputs,
			&config.Probe{Name: ArgRegister(p.Name), Width: p.Width},
			&config.Probe{Name: OpRegister(p.Name), Width: OpWidth})
	}
	c.trig, err = iocore.New(name+"_trig", trigCfg, base+c.fsm.Size(), b)
	if err != nil {
		return nil, err
	}

	c.mem, err = memcore.New(name+"_mem", &config.MemoryCore{
		Mode:  config.ModeFPGAToHost,
		Width: totalWidth,
		Depth: cfg.SampleDepth,
	}, base+c.fsm.Size()+c.trig.Size(), b)
	if err != nil {
		return nil, err
	}
	c.base = uint16(base)
	return c, nil
}

// OpRegister returns the name of the op register of a probe
func OpRegister(probe string) string {
	return probe + "_op"
}

// ArgRegister returns the name of the arg register of a probe
func ArgRegister(probe string) string {
	return probe + "_arg"
}

func (c *Core) Name() string {
	return c.name
}

func (c *Core) Type() string {
	return config.CoreTypeLogicAnalyzer
}

func (c *Core) BaseAddr() uint16 {
	return c.base
}

func (c *Core) Size() int {
	return c.fsm.Size() + c.trig.Size() + c.mem.Size()
}

func (c *Core) SampleDepth() int {
	return c.sampleDepth
}

func (c *Core) Probes() []*config.Probe {
	return c.probes
}

func (c *Core) Triggers() []*Trigger {
	return c.triggers
}

func (c *Core) TriggerMode() TriggerMode {
	return c.triggerMode
}

func (c *Core) TriggerLocation() int {
	return c.triggerLocation
}

// FSM returns the IO block holding the state machine registers
func (c *Core) FSM() *iocore.Core {
	return c.fsm
}

// TriggerBlock returns the IO block holding the op and arg registers
func (c *Core) TriggerBlock() *iocore.Core {
	return c.trig
}

// SampleMemory returns the memory holding samples
func (c *Core) SampleMemory() *memcore.Core {
	return c.mem
}

// SetTriggers replaces the trigger conditions
func (c *Core) SetTriggers(specs []string) error {
	triggers := make([]*Trigger, 0, len(specs))
	for _, s := range specs {
		t, err := ParseTrigger(s, c.probes)
		if err != nil {
			return err
		}
		triggers = append(triggers, t)
	}
	c.triggers = triggers
	return nil
}

func (c *Core) SetTriggerMode(name string) error {
	mode, err := ParseTriggerMode(name)
	if err != nil {
		return err
	}
	c.triggerMode = mode
	return nil
}

func (c *Core) SetTriggerLocation(location int) error {
	if location < 0 || location >= c.sampleDepth {
		return config.NewErrConfig("trigger location %d of %s must be in [0, %d)", location, c.name, c.sampleDepth)
	}
	c.triggerLocation = location
	c.locationSet = true
	return nil
}

// State reads the current state of the capture state machine
func (c *Core) State() (State, error) {
	v, err := c.fsm.GetProbeUint64(RegState)
	if err != nil {
		return 0, err
	}
	return State(v), nil
}

func (c *Core) pulse(reg string) error {
	for _, v := range []int64{0, 1, 0} {
		if err := c.fsm.SetProbeInt(reg, v); err != nil {
			return err
		}
	}
	return nil
}

// Reset returns the state machine to IDLE
func (c *Core) Reset() error {
	state, err := c.State()
	if err != nil {
		return err
	}
	if state == StateIdle {
		return nil
	}
	log.Info("Logic analyzer %s is in state %s, requesting stop", c.name, state)
	if err := c.pulse(RegRequestStop); err != nil {
		return err
	}
	state, err = c.State()
	if err != nil {
		return err
	}
	if state != StateIdle {
		return ErrLogicAnalyzer{What: fmt.Sprintf("%s did not return to IDLE, state is %s", c.name, state)}
	}
	return nil
}

func (c *Core) setTriggers() error {
	ops := c.trig
	for _, p := range c.probes {
		if err := ops.SetProbeInt(OpRegister(p.Name), int64(OpDisable)); err != nil {
			return err
		}
		if err := ops.SetProbeInt(ArgRegister(p.Name), 0); err != nil {
			return err
		}
	}
	if c.triggerMode == TriggerModeImmediate {
		return nil
	}
	for _, t := range c.triggers {
		log.Debug("Setting trigger %s on %s", t, c.name)
		if err := ops.SetProbeInt(OpRegister(t.Probe), int64(t.Op)); err != nil {
			return err
		}
		if t.Op.NeedsArg() {
			if err := ops.SetProbe(ArgRegister(t.Probe), t.Arg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Capture arms the logic analyzer, waits until the capture completes and
// returns the samples in time order. The wait is bounded only by ctx.
func (c *Core) Capture(ctx context.Context) (*capture.Capture, error) {
	if c.triggerMode == TriggerModeImmediate {
		if len(c.triggers) > 0 {
			log.Warning("Ignoring triggers of %s since trigger mode is immediate", c.name)
		}
		if c.locationSet {
			log.Warning("Ignoring trigger location of %s since trigger mode is immediate", c.name)
		}
	}

	log.Info("Resetting %s", c.name)
	if err := c.Reset(); err != nil {
		return nil, err
	}

	log.Info("Setting triggers of %s", c.name)
	if err := c.setTriggers(); err != nil {
		return nil, errors.Wrap(err, "setting triggers")
	}
	if err := c.fsm.SetProbeInt(RegTriggerMode, int64(c.triggerMode)); err != nil {
		return nil, errors.Wrap(err, "setting trigger mode")
	}
	if c.triggerMode != TriggerModeImmediate {
		if err := c.fsm.SetProbeInt(RegTriggerLocation, int64(c.triggerLocation)); err != nil {
			return nil, errors.Wrap(err, "setting trigger location")
		}
	}

	log.Info("Starting capture on %s", c.name)
	if err := c.pulse(RegRequestStart); err != nil {
		return nil, errors.Wrap(err, "starting capture")
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	log.Info("Reading sample memory of %s", c.name)
	addrs := make([]int, c.sampleDepth)
	for i := range addrs {
		addrs[i] = i
	}
	raw, err := c.mem.Read(addrs)
	if err != nil {
		return nil, errors.Wrap(err, "reading sample memory")
	}
	if len(raw) != c.sampleDepth {
		return nil, ErrLogicAnalyzer{What: fmt.Sprintf("read %d samples from %s, expected %d", len(raw), c.name, c.sampleDepth)}
	}

	readPointer, err := c.fsm.GetProbeUint64(RegReadPointer)
	if err != nil {
		return nil, errors.Wrap(err, "reading read pointer")
	}
	if readPointer >= uint64(c.sampleDepth) {
		return nil, ErrLogicAnalyzer{What: fmt.Sprintf("read pointer %d of %s is outside sample depth %d",
			readPointer, c.name, c.sampleDepth)}
	}

	return &capture.Capture{
		Core:            c.name,
		Probes:          c.captureProbes(),
		TriggerMode:     c.triggerMode.String(),
		TriggerLocation: c.triggerLocation,
		ClockFreq:       c.clockFreq,
		Timestamp:       time.Now(),
		Samples:         Rotate(raw, int(readPointer)),
	}, nil
}

func (c *Core) wait(ctx context.Context) error {
	log.Info("Waiting for %s to capture", c.name)
	last := State(^uint64(0))
	for {
		select {
		case <-ctx.Done():
			return ErrLogicAnalyzer{What: fmt.Sprintf("%s did not capture, last state %s", c.name, last), Err: ctx.Err()}
		default:
		}
		state, err := c.State()
		if err != nil {
			return errors.Wrap(err, "polling state")
		}
		if state != last {
			log.Debug("Logic analyzer %s is in state %s", c.name, state)
			last = state
		}
		if state == StateCaptured {
			return nil
		}
	}
}

// Rotate returns samples with index r moved to the front
func Rotate(samples []*big.Int, r int) []*big.Int {
	result := make([]*big.Int, 0, len(samples))
	result = append(result, samples[r:]...)
	return append(result, samples[:r]...)
}

func (c *Core) captureProbes() []*capture.Probe {
	probes := make([]*capture.Probe, len(c.probes))
	for i, p := range c.probes {
		probes[i] = &capture.Probe{Name: p.Name, Width: p.Width}
	}
	return probes
}

func (c *Core) MemoryMap() []*core.Register {
	regs := c.fsm.MemoryMap()
	regs = append(regs, c.trig.MemoryMap()...)
	return append(regs, c.mem.MemoryMap()...)
}

func (c *Core) TopLevelPorts() []*core.Port {
	ports := make([]*core.Port, len(c.probes))
	for i, p := range c.probes {
		ports[i] = &core.Port{Name: p.Name, Direction: core.DirectionInput, Width: p.Width}
	}
	return ports
}

func (c *Core) Config() *config.Core {
	la := &config.LogicAnalyzerCore{
		SampleDepth: c.sampleDepth,
		Probes:      c.probes,
		TriggerMode: c.triggerMode.String(),
	}
	for _, t := range c.triggers {
		la.Triggers = append(la.Triggers, t.String())
	}
	if c.locationSet {
		location := c.triggerLocation
		la.TriggerLocation = &location
	}
	return &config.Core{Name: c.name, Type: config.CoreTypeLogicAnalyzer, LogicAnalyzer: la}
}
