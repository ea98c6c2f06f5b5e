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
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewWriteCommand() *cobra.Command {
	var core, addr, data string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := mantacmd.ParseAddrs(addr)
			if err != nil {
				return err
			}
			values, err := mantacmd.ParseValues(data)
			if err != nil {
				return err
			}
			if len(values) == 1 && len(addrs) > 1 {
				for len(values) < len(addrs) {
					values = append(values, values[0])
				}
			}
			if len(values) != len(addrs) {
				return errors.Errorf("%d addresses and %d values given", len(addrs), len(values))
			}
			client, err := mantacmd.NewClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()
			return client.MemWrite(core, addrs, values)
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "Memory core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().StringVar(&addr, AddrOptionName, "", "Addresses and ranges, e.g. 0,4-7")
	cmd.MarkFlagRequired(AddrOptionName)
	cmd.Flags().StringVar(&data, DataOptionName, "", "Comma separated values, a single value fills every address")
	cmd.MarkFlagRequired(DataOptionName)
	return cmd
}
