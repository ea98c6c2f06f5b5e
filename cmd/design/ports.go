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

func NewPortsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Print the user facing ports of every core",
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
				fmt.Fprintf(out, "// %s\n", c.Name)
				for _, p := range c.Ports {
					if p.Width == 1 {
						fmt.Fprintf(out, "%s wire %s_%s\n", p.Direction, c.Name, p.Name)
						continue
					}
					fmt.Fprintf(out, "%s wire [%d:0] %s_%s\n", p.Direction, p.Width-1, c.Name, p.Name)
				}
			}
			return nil
		},
	}
	return cmd
}
