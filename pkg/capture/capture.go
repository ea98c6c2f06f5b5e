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
	"os"
	"time"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

type Probe struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// Capture is the result of one logic analyzer run. Every sample packs all
// probes, the first probe in the least significant bits.
type Capture struct {
	Core            string
	Probes          []*Probe
	TriggerMode     string
	TriggerLocation int
	// ClockFreq is the FPGA clock in Hz, 0 if unknown
	ClockFreq int
	Timestamp time.Time
	Samples   []*big.Int
}

// TotalWidth returns the sum of all probe widths
func (c *Capture) TotalWidth() int {
	total := 0
	for _, p := range c.Probes {
		total += p.Width
	}
	return total
}

// SampleDepth returns the number of samples
func (c *Capture) SampleDepth() int {
	return len(c.Samples)
}

func (c *Capture) probeSlice(name string) (int, int, error) {
	lower := 0
	for _, p := range c.Probes {
		if p.Name == name {
			return lower, p.Width, nil
		}
		lower += p.Width
	}
	return 0, 0, config.NewErrConfig("no probe %s in capture of %s", name, c.Core)
}

// GetTrace returns the values of one probe over all samples
func (c *Capture) GetTrace(name string) ([]*big.Int, error) {
	lower, width, err := c.probeSlice(name)
	if err != nil {
		return nil, err
	}
	trace := make([]*big.Int, len(c.Samples))
	for i, s := range c.Samples {
		trace[i] = words.Slice(s, lower, width)
	}
	return trace, nil
}

func (c *Capture) traces() ([][]*big.Int, error) {
	result := make([][]*big.Int, len(c.Probes))
	for i, p := range c.Probes {
		trace, err := c.GetTrace(p.Name)
		if err != nil {
			return nil, err
		}
		result[i] = trace
	}
	return result, nil
}

func exportFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return f.Close()
}

// ExportCSV writes the capture as CSV to path
func (c *Capture) ExportCSV(path string) error {
	return exportFile(path, func(f *os.File) error { return c.WriteCSV(f) })
}

// ExportVCD writes the capture as a value change dump to path
func (c *Capture) ExportVCD(path string) error {
	return exportFile(path, func(f *os.File) error { return c.WriteVCD(f) })
}

// ExportPlaybackVerilog writes a synthesizable playback module to path
func (c *Capture) ExportPlaybackVerilog(path string) error {
	return exportFile(path, func(f *os.File) error { return c.WritePlaybackVerilog(f) })
}
