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

package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mantacmd "jinr.ru/greenlab/go-manta/pkg/cmd"
	"jinr.ru/greenlab/go-manta/pkg/command"
	"jinr.ru/greenlab/go-manta/pkg/config"
)

const (
	AddressOptionName = "address"
	PortOptionName    = "port"
	DBOptionName      = "db"
)

// NewCommand creates a command serving the REST API over the local link
func NewCommand() *cobra.Command {
	var address, db string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := mantacmd.LoadConfig(cmd)
			cfg.Server = ""
			if address != "" {
				cfg.ApiAddress = address
			}
			if port != 0 {
				cfg.ApiPort = port
			}
			if db != "" {
				cfg.DBPath = db
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return command.StartApiServer(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&address, AddressOptionName, "", fmt.Sprintf("Address to bind. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().IntVar(&port, PortOptionName, 0, fmt.Sprintf("Port to listen. E.g. %d", config.DefaultApiPort))
	cmd.Flags().StringVar(&db, DBOptionName, "", "Capture database path")
	return cmd
}
