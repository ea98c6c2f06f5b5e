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

package command_test

import (
	"context"
	"math/big"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/command"
	"jinr.ru/greenlab/go-manta/pkg/command/ifc"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/devsim"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv"
	"jinr.ru/greenlab/go-manta/pkg/store"
	"jinr.ru/greenlab/go-manta/pkg/uart"
)

const design = `
interface:
  uart:
    port: /dev/ttyUSB1
    clock_freq: 100000000
    baudrate: 3000000
cores:
  my_io:
    type: io
    inputs:
      buttons: 4
    outputs:
      led: 8
  my_mem:
    type: memory
    mode: bidirectional
    width: 20
    depth: 16
  my_la:
    type: logic_analyzer
    sample_depth: 8
    probes:
      a: 1
      b: 7
`

type target struct {
	manta *manta.Manta
	store *store.CaptureStore
	io    *devsim.IOModel
	la    *devsim.LAModel
}

func newTarget(t *testing.T) *target {
	t.Helper()
	cfg, err := config.ParseManta([]byte(design))
	assert.NoError(t, err)
	dev := devsim.NewDevice()
	m, err := manta.New(cfg, manta.WithUARTOptions(uart.WithLink(devsim.NewUARTLink(dev))))
	assert.NoError(t, err)
	st, err := store.NewCaptureStore(filepath.Join(t.TempDir(), "captures.db"))
	assert.NoError(t, err)

	tg := &target{manta: m, store: st}
	io, err := m.Cores().IO("my_io")
	assert.NoError(t, err)
	tg.io = devsim.NewIOModel(dev, io)
	l, err := m.Cores().LogicAnalyzer("my_la")
	assert.NoError(t, err)
	tg.la = devsim.NewLAModel(dev, l)
	for i := int64(0); i < 8; i++ {
		tg.la.Samples = append(tg.la.Samples, big.NewInt(i<<1|1))
	}
	return tg
}

func exercise(t *testing.T, client ifc.ApiClient, tg *target) {
	cores, err := client.Cores()
	assert.NoError(t, err)
	assert.Len(t, cores, 3)
	assert.Equal(t, "logic_analyzer", cores[2].Type)

	tg.io.SetInput("buttons", big.NewInt(6))
	v, err := client.GetProbe("my_io", "buttons")
	assert.NoError(t, err)
	assert.Equal(t, int64(6), v.Int64())
	assert.NoError(t, client.SetProbe("my_io", "led", big.NewInt(-1)))
	assert.Equal(t, int64(0xFF), tg.io.Output("led").Int64())
	_, err = client.GetProbe("my_io", "nope")
	assert.Error(t, err)

	assert.NoError(t, client.MemWrite("my_mem", []int{2, 3}, []*big.Int{big.NewInt(7), big.NewInt(0x12345)}))
	values, err := client.MemRead("my_mem", []int{3, 2})
	assert.NoError(t, err)
	assert.Len(t, values, 2)
	assert.Equal(t, int64(0x12345), values[0].Int64())
	assert.Equal(t, int64(7), values[1].Int64())
	_, err = client.MemRead("my_io", []int{0})
	assert.Error(t, err)

	immediate := &srv.CaptureRequest{TriggerMode: config.TriggerModeImmediate}
	record, err := client.Capture("my_la", immediate)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), record.ID)
	assert.Equal(t, config.TriggerModeImmediate, record.TriggerMode)
	assert.Len(t, record.Samples, 8)

	summaries, err := client.ListCaptures("my_la")
	assert.NoError(t, err)
	assert.Len(t, summaries, 1)
	stored, err := client.GetCapture("my_la", 1)
	assert.NoError(t, err)
	assert.Equal(t, record.Samples, stored.Samples)
	c, err := stored.Capture()
	assert.NoError(t, err)
	trace, err := c.GetTrace("a")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), trace[3].Int64())

	_, err = client.GetCapture("my_la", 2)
	assert.Error(t, err)

	assert.NoError(t, client.DeleteCapture("my_la", 1))
	summaries, err = client.ListCaptures("my_la")
	assert.NoError(t, err)
	assert.Len(t, summaries, 0)
	assert.Error(t, client.DeleteCapture("my_la", 1))
}

func TestApiClient(t *testing.T) {
	tg := newTarget(t)
	defer tg.store.Close()
	s, err := srv.NewApiServer(context.Background(), config.NewDefaultConfig(), tg.manta, tg.store)
	assert.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	cfg := config.NewDefaultConfig()
	cfg.Server = ts.URL
	client, err := command.NewClient(cfg, true)
	assert.NoError(t, err)
	exercise(t, client, tg)
	assert.NoError(t, client.Close())
}

func TestLocalClient(t *testing.T) {
	tg := newTarget(t)
	client := command.NewLocalClient(tg.manta, tg.store)
	exercise(t, client, tg)
	assert.NoError(t, client.Close())
}

func TestApiPrefix(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.Equal(t, "http://127.0.0.1:8003/api", command.NewApiClient(cfg).ApiPrefix)
	cfg.Server = "http://fpga-host:9000/"
	assert.Equal(t, "http://fpga-host:9000/api", command.NewApiClient(cfg).ApiPrefix)
}

func TestNewClientMissingDesign(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.MantaConfig = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := command.NewClient(cfg, false)
	assert.Error(t, err)
}
