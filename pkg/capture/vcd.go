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
	"bufio"
	"fmt"
	"io"
	"math"
	"math/big"

	"jinr.ru/greenlab/go-manta/pkg/config"
)

const (
	VCDScope      = "manta"
	VCDVersion    = "go-manta"
	VCDDateFormat = "Mon Jan 02 15:04:05 2006"
)

// DefaultTimescale is used when the clock frequency is unknown
var DefaultTimescale = Timescale{Magnitude: 10, Unit: "ns", Step: 1}

// Timescale is a legal VCD timescale and the number of its ticks in a
// clock half period
type Timescale struct {
	Magnitude int
	Unit      string
	Step      int64
}

func (ts Timescale) String() string {
	return fmt.Sprintf("%d %s", ts.Magnitude, ts.Unit)
}

var timescaleUnits = []struct {
	name  string
	scale float64
}{
	{"s", 1}, {"ms", 1e-3}, {"us", 1e-6}, {"ns", 1e-9}, {"ps", 1e-12}, {"fs", 1e-15},
}

const (
	// minTimescaleStep is the resolution kept for half periods that are not
	// a whole number of any legal timescale
	minTimescaleStep = 1000
	timescaleEpsilon = 1e-6
)

// NewTimescale picks the coarsest timescale of magnitude 1, 10 or 100 that
// divides the half period of the clock. When none does, the first one giving
// at least minTimescaleStep ticks per half period is used.
func NewTimescale(clockFreq int) Timescale {
	if clockFreq <= 0 {
		return DefaultTimescale
	}
	half := 1 / (2 * float64(clockFreq))
	var last Timescale
	for _, u := range timescaleUnits {
		for _, m := range []int{100, 10, 1} {
			ticks := half / (float64(m) * u.scale)
			if ticks < 1-timescaleEpsilon {
				continue
			}
			step := int64(math.Round(ticks))
			last = Timescale{Magnitude: m, Unit: u.name, Step: step}
			if math.Abs(ticks-float64(step)) <= timescaleEpsilon*ticks || step >= minTimescaleStep {
				return last
			}
		}
	}
	if last.Step == 0 {
		return Timescale{Magnitude: 1, Unit: "fs", Step: 1}
	}
	return last
}

// vcdID returns the short identifier code of the i-th variable
func vcdID(i int) string {
	const first, n = 33, 94
	id := []byte{byte(first + i%n)}
	for i /= n; i > 0; i /= n {
		i--
		id = append(id, byte(first+i%n))
	}
	return string(id)
}

func vcdValue(v *big.Int, width int, id string) string {
	if width == 1 {
		return fmt.Sprintf("%s%s", v.Text(2), id)
	}
	return fmt.Sprintf("b%s %s", v.Text(2), id)
}

// WriteVCD dumps the capture with a synthetic clock toggling every half
// period. In single shot mode a trigger wire rises at the trigger location
// and stays high.
func (c *Capture) WriteVCD(w io.Writer) error {
	traces, err := c.traces()
	if err != nil {
		return err
	}
	withTrigger := c.TriggerMode == config.TriggerModeSingleShot
	ts := NewTimescale(c.ClockFreq)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$date\n\t%s\n$end\n", c.Timestamp.Format(VCDDateFormat))
	fmt.Fprintf(bw, "$version\n\t%s\n$end\n", VCDVersion)
	fmt.Fprintf(bw, "$timescale %s $end\n", ts)
	fmt.Fprintf(bw, "$scope module %s $end\n", VCDScope)

	clkID := vcdID(0)
	fmt.Fprintf(bw, "$var wire 1 %s clk $end\n", clkID)
	next := 1
	triggerID := ""
	if withTrigger {
		triggerID = vcdID(next)
		next++
		fmt.Fprintf(bw, "$var wire 1 %s trigger $end\n", triggerID)
	}
	ids := make([]string, len(c.Probes))
	for i, p := range c.Probes {
		ids[i] = vcdID(next)
		next++
		fmt.Fprintf(bw, "$var wire %d %s %s $end\n", p.Width, ids[i], p.Name)
	}
	fmt.Fprintf(bw, "$upscope $end\n$enddefinitions $end\n")

	prev := make([]*big.Int, len(c.Probes))
	prevTrigger := -1
	for i := range c.Samples {
		fmt.Fprintf(bw, "#%d\n", int64(2*i)*ts.Step)
		if i == 0 {
			fmt.Fprintf(bw, "$dumpvars\n")
		}
		fmt.Fprintf(bw, "1%s\n", clkID)
		if withTrigger {
			trigger := 0
			if i >= c.TriggerLocation {
				trigger = 1
			}
			if trigger != prevTrigger {
				fmt.Fprintf(bw, "%d%s\n", trigger, triggerID)
				prevTrigger = trigger
			}
		}
		for j, p := range c.Probes {
			v := traces[j][i]
			if prev[j] == nil || prev[j].Cmp(v) != 0 {
				fmt.Fprintf(bw, "%s\n", vcdValue(v, p.Width, ids[j]))
				prev[j] = v
			}
		}
		if i == 0 {
			fmt.Fprintf(bw, "$end\n")
		}
		fmt.Fprintf(bw, "#%d\n0%s\n", int64(2*i+1)*ts.Step, clkID)
	}
	fmt.Fprintf(bw, "#%d\n", int64(2*len(c.Samples))*ts.Step)
	return bw.Flush()
}
