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
	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewSetCommand() *cobra.Command {
	var core, probe, value string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write an output probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := mantacmd.ParseValue(value)
			if err != nil {
				return err
			}
			client, err := mantacmd.NewClient(cmd, false)
			if err != nil {
				return err
			}
			defer client.Close()
			return client.SetProbe(core, probe, v)
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "IO core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().StringVar(&probe, ProbeOptionName, "", "Probe name")
	cmd.MarkFlagRequired(ProbeOptionName)
	cmd.Flags().StringVar(&value, ValueOptionName, "", "Value, decimal or 0x prefixed hexadecimal. Negative values are written in two's complement")
	cmd.MarkFlagRequired(ValueOptionName)
	return cmd
}
