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

package srv

import (
	"time"

	"jinr.ru/greenlab/go-manta/pkg/la"
)

const DefaultCaptureTimeout = 10 * time.Second

// ProbeValue carries an IO probe value as a decimal or 0x prefixed string
// swagger:model
type ProbeValue struct {
	Value string `json:"value"`
}

// MemRead lists memory core entries to read
// swagger:model
type MemRead struct {
	Addrs []int `json:"addrs"`
}

// MemData holds memory core entries as decimal strings
// swagger:model
type MemData struct {
	Data []string `json:"data"`
}

// MemWrite pairs memory core entries with values
// swagger:model
type MemWrite struct {
	Addrs []int    `json:"addrs"`
	Data  []string `json:"data"`
}

// CaptureRequest optionally overrides the logic analyzer settings before
// capturing. Timeout is in seconds.
// swagger:model
type CaptureRequest struct {
	Timeout         float64  `json:"timeout,omitempty"`
	TriggerMode     string   `json:"trigger_mode,omitempty"`
	Triggers        []string `json:"triggers,omitempty"`
	TriggerLocation *int     `json:"trigger_location,omitempty"`
}

// Apply sets the overridden settings on the logic analyzer
func (r *CaptureRequest) Apply(l *la.Core) error {
	if r.TriggerMode != "" {
		if err := l.SetTriggerMode(r.TriggerMode); err != nil {
			return err
		}
	}
	if r.Triggers != nil {
		if err := l.SetTriggers(r.Triggers); err != nil {
			return err
		}
	}
	if r.TriggerLocation != nil {
		if err := l.SetTriggerLocation(*r.TriggerLocation); err != nil {
			return err
		}
	}
	return nil
}

func (r *CaptureRequest) CaptureTimeout() time.Duration {
	if r.Timeout > 0 {
		return time.Duration(r.Timeout * float64(time.Second))
	}
	return DefaultCaptureTimeout
}
