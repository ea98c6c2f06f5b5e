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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-manta/cmd/capture"
	"jinr.ru/greenlab/go-manta/cmd/captures"
	"jinr.ru/greenlab/go-manta/cmd/completion"
	"jinr.ru/greenlab/go-manta/cmd/config"
	"jinr.ru/greenlab/go-manta/cmd/design"
	cmdio "jinr.ru/greenlab/go-manta/cmd/io"
	"jinr.ru/greenlab/go-manta/cmd/mem"
	"jinr.ru/greenlab/go-manta/cmd/ports"
	"jinr.ru/greenlab/go-manta/cmd/serve"
	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
	pkgconfig "jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/log"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:          "go-manta",
		Short:        "Tool to debug FPGA designs through Manta cores",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand())
	cmd.AddCommand(design.NewCommand())
	cmd.AddCommand(cmdio.NewCommand())
	cmd.AddCommand(mem.NewCommand())
	cmd.AddCommand(capture.NewCommand())
	cmd.AddCommand(captures.NewCommand())
	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(ports.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, mantacmd.LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().String(mantacmd.ServerOptionName, "", "URL of a go-manta server, e.g. http://127.0.0.1:8003. The link is opened locally when empty")
	cmd.PersistentFlags().String(mantacmd.MantaConfigOptionName, "", fmt.Sprintf("Manta design configuration. Defaults to %s", pkgconfig.DefaultMantaConfig))
	return cmd
}
