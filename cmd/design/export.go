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
	"io/ioutil"

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
	"jinr.ru/greenlab/go-manta/pkg/manta"
)

func NewExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configuration rebuilt from the composed cores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mantacmd.LoadConfig(cmd).LoadManta()
			if err != nil {
				return err
			}
			m, err := manta.New(cfg)
			if err != nil {
				return err
			}
			defer m.Close()
			data, err := m.ExportConfig()
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return ioutil.WriteFile(output, data, 0644)
		},
	}
	cmd.Flags().StringVar(&output, OutputOptionName, "", "File to write. Standard output when empty")
	return cmd
}
