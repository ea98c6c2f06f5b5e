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
	"encoding/csv"
	"io"
)

// WriteCSV writes a header with probe names followed by one row of decimal
// values per sample.
func (c *Capture) WriteCSV(w io.Writer) error {
	traces, err := c.traces()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := make([]string, len(c.Probes))
	for i, p := range c.Probes {
		header[i] = p.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range c.Samples {
		row := make([]string, len(traces))
		for j, trace := range traces {
			row[j] = trace[i].String()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
