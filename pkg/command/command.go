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
	"math/big"

	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/command/ifc"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv"
	"jinr.ru/greenlab/go-manta/pkg/store"
)

// LocalClient drives the cores over a link opened by this process
type LocalClient struct {
	manta *manta.Manta
	store *store.CaptureStore
}

var _ ifc.ApiClient = &LocalClient{}

// NewLocalClient wraps a composed design. Captures are stored when st is not nil.
func NewLocalClient(m *manta.Manta, st *store.CaptureStore) *LocalClient {
	return &LocalClient{manta: m, store: st}
}

// NewClient returns the REST client when a server is configured, otherwise
// it opens the design and its link locally. The capture database is only
// opened when withStore is set.
func NewClient(cfg *config.Config, withStore bool) (ifc.ApiClient, error) {
	if cfg.Server != "" {
		log.Debug("Using go-manta server %s", cfg.Server)
		return NewApiClient(cfg), nil
	}
	mantaCfg, err := cfg.LoadManta()
	if err != nil {
		return nil, err
	}
	m, err := manta.New(mantaCfg)
	if err != nil {
		return nil, err
	}
	var st *store.CaptureStore
	if withStore {
		st, err = store.NewCaptureStore(cfg.DBPath)
		if err != nil {
			m.Close()
			return nil, err
		}
	}
	return NewLocalClient(m, st), nil
}

func (c *LocalClient) Cores() ([]*manta.CoreDescription, error) {
	return c.manta.MemoryMapDescription(), nil
}

func (c *LocalClient) GetProbe(core, probe string) (*big.Int, error) {
	io, err := c.manta.Cores().IO(core)
	if err != nil {
		return nil, err
	}
	return io.GetProbe(probe)
}

func (c *LocalClient) SetProbe(core, probe string, value *big.Int) error {
	io, err := c.manta.Cores().IO(core)
	if err != nil {
		return err
	}
	return io.SetProbe(probe, value)
}

func (c *LocalClient) MemRead(core string, addrs []int) ([]*big.Int, error) {
	mem, err := c.manta.Cores().Memory(core)
	if err != nil {
		return nil, err
	}
	return mem.Read(addrs)
}

func (c *LocalClient) MemWrite(core string, addrs []int, values []*big.Int) error {
	mem, err := c.manta.Cores().Memory(core)
	if err != nil {
		return err
	}
	return mem.Write(addrs, values)
}

func (c *LocalClient) Capture(core string, cr *srv.CaptureRequest) (*capture.Record, error) {
	if cr == nil {
		cr = &srv.CaptureRequest{}
	}
	l, err := c.manta.Cores().LogicAnalyzer(core)
	if err != nil {
		return nil, err
	}
	if err := cr.Apply(l); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cr.CaptureTimeout())
	defer cancel()
	captured, err := l.Capture(ctx)
	if err != nil {
		return nil, err
	}
	record := captured.Record()
	if c.store != nil {
		id, err := c.store.Save(captured)
		if err != nil {
			return nil, err
		}
		record.ID = id
	}
	return record, nil
}

func (c *LocalClient) checkStore(core string) error {
	if c.store == nil {
		return errors.New("capture database is not open")
	}
	_, err := c.manta.Cores().LogicAnalyzer(core)
	return err
}

func (c *LocalClient) ListCaptures(core string) ([]*store.Summary, error) {
	if err := c.checkStore(core); err != nil {
		return nil, err
	}
	return c.store.List(core)
}

func (c *LocalClient) GetCapture(core string, id uint64) (*capture.Record, error) {
	if err := c.checkStore(core); err != nil {
		return nil, err
	}
	return c.store.LoadRecord(core, id)
}

func (c *LocalClient) DeleteCapture(core string, id uint64) error {
	if err := c.checkStore(core); err != nil {
		return err
	}
	return c.store.Delete(core, id)
}

// Close releases the link and the capture database
func (c *LocalClient) Close() error {
	var storeErr error
	if c.store != nil {
		storeErr = c.store.Close()
	}
	if err := c.manta.Close(); err != nil {
		return err
	}
	return storeErr
}
