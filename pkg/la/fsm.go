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

	"jinr.ru/greenlab/go-manta/pkg/config"
)

// State of the capture state machine on the device
type State uint64

const (
	StateIdle State = iota
	StateMoveToPosition
	StateInPosition
	StateCapturing
	StateCaptured
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMoveToPosition:
		return "MOVE_TO_POSITION"
	case StateInPosition:
		return "IN_POSITION"
	case StateCapturing:
		return "CAPTURING"
	case StateCaptured:
		return "CAPTURED"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint64(s))
}

type TriggerMode uint64

const (
	TriggerModeSingleShot TriggerMode = iota
	TriggerModeIncremental
	TriggerModeImmediate
)

var triggerModes = map[string]TriggerMode{
	config.TriggerModeSingleShot:  TriggerModeSingleShot,
	config.TriggerModeIncremental: TriggerModeIncremental,
	config.TriggerModeImmediate:   TriggerModeImmediate,
}

// ParseTriggerMode maps a configuration name to the device encoding
func ParseTriggerMode(name string) (TriggerMode, error) {
	mode, ok := triggerModes[name]
	if !ok {
		return 0, config.NewErrConfig("unknown trigger mode %s", name)
	}
	return mode, nil
}

func (m TriggerMode) String() string {
	for name, mode := range triggerModes {
		if mode == m {
			return name
		}
	}
	return fmt.Sprintf("unknown(%d)", uint64(m))
}

// Names of the FSM registers
const (
	RegState           = "state"
	RegReadPointer     = "read_pointer"
	RegWritePointer    = "write_pointer"
	RegTriggerLocation = "trigger_location"
	RegTriggerMode     = "trigger_mode"
	RegRequestStart    = "request_start"
	RegRequestStop     = "request_stop"

	StateWidth       = 4
	TriggerModeWidth = 2
	OpWidth          = 4
)
