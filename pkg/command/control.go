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

package command

import (
	"context"

	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv"
	"jinr.ru/greenlab/go-manta/pkg/store"
)

// StartApiServer opens the design link and the capture database and serves
// the REST API until ctx is cancelled
func StartApiServer(ctx context.Context, cfg *config.Config) error {
	mantaCfg, err := cfg.LoadManta()
	if err != nil {
		return err
	}
	m, err := manta.New(mantaCfg)
	if err != nil {
		return err
	}
	defer m.Close()

	st, err := store.NewCaptureStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := srv.NewApiServer(ctx, cfg, m, st)
	if err != nil {
		return err
	}
	return s.Run()
}
