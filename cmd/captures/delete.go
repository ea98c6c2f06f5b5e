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

package captures

import (
	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
)

func NewDeleteCommand() *cobra.Command {
	var core string
	var id uint64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a stored capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := mantacmd.NewClient(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()
			return client.DeleteCapture(core, id)
		},
	}
	cmd.Flags().StringVar(&core, mantacmd.CoreOptionName, "", "Logic analyzer core name")
	cmd.MarkFlagRequired(mantacmd.CoreOptionName)
	cmd.Flags().Uint64Var(&id, IDOptionName, 0, "Capture id")
	cmd.MarkFlagRequired(IDOptionName)
	return cmd
}
