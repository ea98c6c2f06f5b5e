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

package design

import (
	"fmt"

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewMapCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Print the memory map of every core",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := mantacmd.NewClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()
			cores, err := client.Cores()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range cores {
				fmt.Fprintf(out, "%s (%s): 0x%04X - 0x%04X\n", c.Name, c.Type, c.Base, int(c.Base)+c.Size-1)
				for _, r := range c.Registers {
					if len(r.Addrs) == 1 {
						fmt.Fprintf(out, "    0x%04X        %-6s %3d  %s\n", r.Addrs[0], r.Direction, r.Width, r.Name)
						continue
					}
					fmt.Fprintf(out, "    0x%04X-0x%04X %-6s %3d  %s\n", r.Addrs[0], r.Addrs[len(r.Addrs)-1], r.Direction, r.Width, r.Name)
				}
			}
			return nil
		},
	}
	return cmd
}
