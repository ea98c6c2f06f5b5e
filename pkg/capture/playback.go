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
	"fmt"
	"io"
	"text/template"

	"jinr.ru/greenlab/go-manta/pkg/config"
)

const playbackTemplate = `` + "`" + `default_nettype none
` + "`" + `timescale 1ns/1ps

// Playback of {{.SampleDepth}} samples captured by {{.Core}} on {{.Date}}.
// Pulse start to play the capture once, valid is high while probes carry
// captured data.
module {{.Module}} (
    input wire clk,
    input wire rst,
    input wire start,
    output reg valid{{range .Probes}},
    output reg [{{.Msb}}:0] {{.Name}}{{end}}
);

    localparam SAMPLE_DEPTH = {{.SampleDepth}};
    localparam TOTAL_PROBE_WIDTH = {{.TotalWidth}};

    reg [TOTAL_PROBE_WIDTH-1:0] pb_samples [0:SAMPLE_DEPTH-1];
    initial begin
{{- range .Samples}}
        pb_samples[{{.Index}}] = {{$.TotalWidth}}'h{{.Hex}};
{{- end}}
    end

    reg pb_busy;
    reg [{{.AddrMsb}}:0] pb_addr;
    reg [TOTAL_PROBE_WIDTH-1:0] pb_data;

    always @(posedge clk) begin
        if (rst) begin
            pb_busy <= 1'b0;
            pb_addr <= 0;
            valid <= 1'b0;
        end else begin
            valid <= pb_busy;
            pb_data <= pb_samples[pb_addr];
            if (!pb_busy) begin
                if (start) pb_busy <= 1'b1;
            end else if (pb_addr == SAMPLE_DEPTH - 1) begin
                pb_busy <= 1'b0;
                pb_addr <= 0;
            end else begin
                pb_addr <= pb_addr + 1;
            end
        end
    end

    always @(*) begin
{{- range .Probes}}
        {{.Name}} = valid ? pb_data[{{.Lower}} +: {{.Width}}] : {{.Width}}'d0;
{{- end}}
    end

endmodule
` + "`" + `default_nettype wire
`

var playback = template.Must(template.New("playback").Parse(playbackTemplate))

// names taken by the ports and internals of the playback module
var playbackReserved = map[string]bool{
	"clk":               true,
	"rst":               true,
	"start":             true,
	"valid":             true,
	"pb_samples":        true,
	"pb_busy":           true,
	"pb_addr":           true,
	"pb_data":           true,
	"SAMPLE_DEPTH":      true,
	"TOTAL_PROBE_WIDTH": true,
}

type playbackProbe struct {
	Name  string
	Width int
	Msb   int
	Lower int
}

type playbackSample struct {
	Index int
	Hex   string
}

type playbackModule struct {
	Module      string
	Core        string
	Date        string
	SampleDepth int
	TotalWidth  int
	AddrMsb     int
	Probes      []*playbackProbe
	Samples     []*playbackSample
}

// PlaybackModuleName returns the name of the generated module
func (c *Capture) PlaybackModuleName() string {
	if c.Core == "" {
		return "logic_analyzer_playback"
	}
	return fmt.Sprintf("%s_playback", c.Core)
}

// WritePlaybackVerilog writes a synthesizable module replaying the capture.
// The samples are held in a ROM initialised inside the module.
func (c *Capture) WritePlaybackVerilog(w io.Writer) error {
	m := &playbackModule{
		Module:      c.PlaybackModuleName(),
		Core:        c.Core,
		Date:        c.Timestamp.Format(VCDDateFormat),
		SampleDepth: len(c.Samples),
		TotalWidth:  c.TotalWidth(),
	}
	addrWidth := 1
	for (1 << uint(addrWidth)) < len(c.Samples) {
		addrWidth++
	}
	m.AddrMsb = addrWidth - 1
	lower := 0
	for _, p := range c.Probes {
		if playbackReserved[p.Name] || p.Name == m.Module {
			return config.NewErrConfig("probe name %s clashes with the playback module", p.Name)
		}
		m.Probes = append(m.Probes, &playbackProbe{Name: p.Name, Width: p.Width, Msb: p.Width - 1, Lower: lower})
		lower += p.Width
	}
	for i, s := range c.Samples {
		m.Samples = append(m.Samples, &playbackSample{Index: i, Hex: s.Text(16)})
	}
	return playback.Execute(w, m)
}
