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

package io

import (
	"fmt"

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewGetCommand() *cobra.Command {
	var core, probe string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Read a probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := mantacmd.NewClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()
			value, err := client.GetProbe(core, probe)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %s (0x%s)\n", core, probe, value, value.Text(16))
			return nil
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "IO core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().StringVar(&probe, ProbeOptionName, "", "Probe name")
	cmd.MarkFlagRequired(ProbeOptionName)
	return cmd
}
