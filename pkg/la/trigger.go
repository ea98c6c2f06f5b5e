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

package la

import (
	"fmt"
	"math/big"
	"strings"

	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

// Op is a trigger operation as encoded in the op registers
type Op uint16

const (
	OpDisable Op = iota
	OpRising
	OpFalling
	OpChanging
	OpGT
	OpLT
	OpGEQ
	OpLEQ
	OpEQ
	OpNEQ
)

var opNames = []string{"DISABLE", "RISING", "FALLING", "CHANGING", "GT", "LT", "GEQ", "LEQ", "EQ", "NEQ"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("OP(%d)", uint16(op))
}

// NeedsArg reports whether the operation compares against an argument
func (op Op) NeedsArg() bool {
	return op >= OpGT && op <= OpNEQ
}

func parseOp(name string) (Op, bool) {
	for i, n := range opNames {
		if n == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Trigger is a condition on one probe
type Trigger struct {
	Probe string
	Op    Op
	Arg   *big.Int
}

func (t *Trigger) String() string {
	if t.Op.NeedsArg() {
		return fmt.Sprintf("%s %s %s", t.Probe, t.Op, t.Arg)
	}
	return fmt.Sprintf("%s %s", t.Probe, t.Op)
}

// ParseTrigger parses "probe OP" for edge operations and "probe OP ARG" for
// comparisons. ARG must be a non-negative integer below 2^width(probe).
func ParseTrigger(s string, probes []*config.Probe) (*Trigger, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return nil, config.NewErrConfig("unable to interpret trigger condition %q", s)
	}
	var probe *config.Probe
	for _, p := range probes {
		if p.Name == fields[0] {
			probe = p
			break
		}
	}
	if probe == nil {
		return nil, config.NewErrConfig("unknown probe %s in trigger %q", fields[0], s)
	}
	op, ok := parseOp(fields[1])
	if !ok {
		return nil, config.NewErrConfig("unknown operation %s in trigger %q", fields[1], s)
	}
	t := &Trigger{Probe: probe.Name, Op: op, Arg: new(big.Int)}
	if len(fields) == 2 {
		if op.NeedsArg() {
			return nil, config.NewErrConfig("operation %s needs an argument in trigger %q", op, s)
		}
		return t, nil
	}
	if !op.NeedsArg() {
		return nil, config.NewErrConfig("operation %s takes no argument in trigger %q", op, s)
	}
	arg, ok := new(big.Int).SetString(fields[2], 0)
	if !ok {
		return nil, config.NewErrConfig("argument %s of trigger %q is not an integer", fields[2], s)
	}
	if !words.FitsUnsigned(arg, probe.Width) {
		return nil, config.NewErrConfig("argument %s of trigger %q does not fit in %d bits of %s",
			arg, s, probe.Width, probe.Name)
	}
	t.Arg = arg
	return t, nil
}
