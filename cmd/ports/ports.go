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

package ports

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-manta/pkg/uart"
)

// NewCommand creates a command listing USB serial ports
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := uart.NewSysfsLister().ListPorts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range ports {
				mark := ""
				if p.VID == uart.FTDIVendorID && p.PID == uart.FT2232ProductID {
					mark = "  FT2232"
				}
				fmt.Fprintf(out, "%s  %04x:%04x  serial %s  location %s%s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Location, mark)
			}
			if len(ports) == 0 {
				fmt.Fprintln(out, "No USB serial ports found")
			}
			return nil
		},
	}
	return cmd
}
