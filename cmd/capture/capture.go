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

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/srv"
)

const (
	TriggerOptionName         = "trigger"
	TriggerModeOptionName     = "trigger-mode"
	TriggerLocationOptionName = "trigger-location"
	TimeoutOptionName         = "timeout"
	StoreOptionName           = "store"
)

const captureExample = `
Capture when counter reaches 100 and write a VCD
# go-manta capture --core my_la --trigger "counter EQ 100" --vcd capture.vcd

Capture right away ignoring triggers
# go-manta capture --core my_la --trigger-mode immediate --csv capture.csv
`

// NewCommand creates a command running one logic analyzer capture
func NewCommand() *cobra.Command {
	var core, triggerMode string
	var triggers []string
	var triggerLocation int
	var timeout float64
	var persist bool
	exports := &mantacmd.Exports{}
	cmd := &cobra.Command{
		Use:     "capture",
		Short:   "Capture samples with a logic analyzer core",
		Example: captureExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &srv.CaptureRequest{
				Timeout:     timeout,
				TriggerMode: triggerMode,
			}
			if cmd.Flags().Changed(TriggerOptionName) {
				req.Triggers = triggers
			}
			if cmd.Flags().Changed(TriggerLocationOptionName) {
				req.TriggerLocation = &triggerLocation
			}
			client, err := mantacmd.NewClient(cmd, persist)
			if err != nil {
				return err
			}
			defer client.Close()
			record, err := client.Capture(core, req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Captured %d samples from %s in %s mode\n", len(record.Samples), core, record.TriggerMode)
			if record.ID != 0 {
				fmt.Fprintf(out, "Stored as capture %d\n", record.ID)
			}
			return exports.Write(record)
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "Logic analyzer core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().StringArrayVar(&triggers, TriggerOptionName, nil, "Trigger condition replacing the configured ones, e.g. \"probe0 GT 3\". May be repeated")
	cmd.Flags().StringVar(&triggerMode, TriggerModeOptionName, "", fmt.Sprintf("One of %s, %s, %s",
		config.TriggerModeSingleShot, config.TriggerModeIncremental, config.TriggerModeImmediate))
	cmd.Flags().IntVar(&triggerLocation, TriggerLocationOptionName, 0, "Number of samples kept before the trigger")
	cmd.Flags().Float64Var(&timeout, TimeoutOptionName, 0, "Seconds to wait for the capture to complete")
	cmd.Flags().BoolVar(&persist, StoreOptionName, false, "Store the capture in the local database. A server always stores captures")
	exports.AddFlags(cmd)
	return cmd
}
