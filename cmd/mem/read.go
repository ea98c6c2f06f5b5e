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

package mem

import (
	"fmt"

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewReadCommand() *cobra.Command {
	var core, addr string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := mantacmd.ParseAddrs(addr)
			if err != nil {
				return err
			}
			client, err := mantacmd.NewClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()
			values, err := client.MemRead(core, addrs)
			if err != nil {
				return err
			}
			for i, v := range values {
				fmt.Fprintf(cmd.OutOrStdout(), "%s[%d] = %s (0x%s)\n", core, addrs[i], v, v.Text(16))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "Memory core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().StringVar(&addr, AddrOptionName, "", "Addresses and ranges, e.g. 0,4-7")
	cmd.MarkFlagRequired(AddrOptionName)
	return cmd
}
