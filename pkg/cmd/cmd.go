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

// Package cmd holds helpers shared by the go-manta commands
package cmd

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/command"
	"jinr.ru/greenlab/go-manta/pkg/command/ifc"
	"jinr.ru/greenlab/go-manta/pkg/config"
)

const (
	LogLevelOptionName    = "log-level"
	ServerOptionName      = "server"
	MantaConfigOptionName = "manta-config"
	CoreOptionName        = "core"
	VCDOptionName         = "vcd"
	CSVOptionName         = "csv"
	VerilogOptionName     = "verilog"
)

// Exports names the files a capture is written to, empty names are skipped
type Exports struct {
	VCD     string
	CSV     string
	Verilog string
}

// AddFlags registers the export flags on cmd
func (e *Exports) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.VCD, VCDOptionName, "", "Write the capture as a value change dump")
	cmd.Flags().StringVar(&e.CSV, CSVOptionName, "", "Write the capture as CSV")
	cmd.Flags().StringVar(&e.Verilog, VerilogOptionName, "", "Write a Verilog module playing the capture back")
}

// Write exports the record to every requested file
func (e *Exports) Write(r *capture.Record) error {
	c, err := r.Capture()
	if err != nil {
		return err
	}
	if e.VCD != "" {
		if err := c.ExportVCD(e.VCD); err != nil {
			return err
		}
	}
	if e.CSV != "" {
		if err := c.ExportCSV(e.CSV); err != nil {
			return err
		}
	}
	if e.Verilog != "" {
		if err := c.ExportPlaybackVerilog(e.Verilog); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads the settings file and applies the persistent flags of
// the root command on top of it.
func LoadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	if server, err := cmd.Flags().GetString(ServerOptionName); err == nil && server != "" {
		cfg.Server = server
	}
	if path, err := cmd.Flags().GetString(MantaConfigOptionName); err == nil && path != "" {
		cfg.MantaConfig = path
	}
	return cfg
}

// NewClient returns a client for the configured server or the local link
func NewClient(cmd *cobra.Command, withStore bool) (ifc.ApiClient, error) {
	return command.NewClient(LoadConfig(cmd), withStore)
}

// ParseValue accepts decimal, 0x, 0o and 0b prefixed integers of any width
func ParseValue(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 0)
	if !ok {
		return nil, errors.Errorf("%q is not an integer", s)
	}
	return v, nil
}

// ParseValues parses a comma separated list of values
func ParseValues(s string) ([]*big.Int, error) {
	var result []*big.Int
	for _, field := range strings.Split(s, ",") {
		v, err := ParseValue(field)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ParseAddrs parses a comma separated list of addresses and inclusive
// ranges, e.g. 0,4-7
func ParseAddrs(s string) ([]int, error) {
	var result []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		bounds := strings.SplitN(field, "-", 2)
		first, err := strconv.ParseInt(bounds[0], 0, 32)
		if err != nil {
			return nil, errors.Errorf("%q is not an address", field)
		}
		last := first
		if len(bounds) == 2 {
			last, err = strconv.ParseInt(bounds[1], 0, 32)
			if err != nil || last < first {
				return nil, errors.Errorf("%q is not an address range", field)
			}
		}
		for a := first; a <= last; a++ {
			result = append(result, int(a))
		}
	}
	return result, nil
}
