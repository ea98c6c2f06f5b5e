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

package capture

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// Record is the serializable form of a capture. Samples are hex strings so
// that values wider than 64 bits survive JSON and YAML.
type Record struct {
	ID              uint64    `json:"id,omitempty"`
	Core            string    `json:"core"`
	Probes          []*Probe  `json:"probes"`
	TriggerMode     string    `json:"trigger_mode"`
	TriggerLocation int       `json:"trigger_location"`
	ClockFreq       int       `json:"clock_freq,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	Samples         []string  `json:"samples"`
}

func (c *Capture) Record() *Record {
	r := &Record{
		Core:            c.Core,
		Probes:          c.Probes,
		TriggerMode:     c.TriggerMode,
		TriggerLocation: c.TriggerLocation,
		ClockFreq:       c.ClockFreq,
		Timestamp:       c.Timestamp,
		Samples:         make([]string, len(c.Samples)),
	}
	for i, s := range c.Samples {
		r.Samples[i] = "0x" + s.Text(16)
	}
	return r
}

func (r *Record) Capture() (*Capture, error) {
	c := &Capture{
		Core:            r.Core,
		Probes:          r.Probes,
		TriggerMode:     r.TriggerMode,
		TriggerLocation: r.TriggerLocation,
		ClockFreq:       r.ClockFreq,
		Timestamp:       r.Timestamp,
		Samples:         make([]*big.Int, len(r.Samples)),
	}
	for i, s := range r.Samples {
		v, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, errors.Errorf("sample %d of %s capture is not a number: %q", i, r.Core, s)
		}
		c.Samples[i] = v
	}
	return c, nil
}
