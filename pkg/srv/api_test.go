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

package srv_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"math/big"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/capture"
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
    triggers:
      - b GT 3
`

type fixture struct {
	server *httptest.Server
	io     *devsim.IOModel
	la     *devsim.LAModel
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	cfg, err := config.ParseManta([]byte(design))
	assert.NoError(t, err)
	dev := devsim.NewDevice()
	m, err := manta.New(cfg, manta.WithUARTOptions(uart.WithLink(devsim.NewUARTLink(dev))))
	assert.NoError(t, err)

	f := &fixture{}
	io, err := m.Cores().IO("my_io")
	assert.NoError(t, err)
	f.io = devsim.NewIOModel(dev, io)
	l, err := m.Cores().LogicAnalyzer("my_la")
	assert.NoError(t, err)
	f.la = devsim.NewLAModel(dev, l)
	for i := int64(0); i < 8; i++ {
		f.la.Samples = append(f.la.Samples, big.NewInt(i<<1))
	}
	f.la.ReadPointer = 4
	f.la.PollsUntilCaptured = 1

	var st *store.CaptureStore
	if withStore {
		st, err = store.NewCaptureStore(filepath.Join(t.TempDir(), "captures.db"))
		assert.NoError(t, err)
		t.Cleanup(func() { st.Close() })
	}
	s, err := srv.NewApiServer(context.Background(), config.NewDefaultConfig(), m, st)
	assert.NoError(t, err)
	f.server = httptest.NewServer(s.Handler())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	assert.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, body
}

func (f *fixture) post(t *testing.T, path string, v interface{}) (int, []byte) {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(data))
	assert.NoError(t, err)
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, body
}

func TestCores(t *testing.T) {
	f := newFixture(t, false)
	code, body := f.get(t, "/api/cores")
	assert.Equal(t, http.StatusOK, code)
	var cores []*manta.CoreDescription
	assert.NoError(t, json.Unmarshal(body, &cores))
	assert.Len(t, cores, 3)
	assert.Equal(t, "my_io", cores[0].Name)
	assert.Equal(t, "memory", cores[1].Type)
	assert.Equal(t, uint16(3), cores[1].Base)
}

func TestProbe(t *testing.T) {
	f := newFixture(t, false)
	f.io.SetInput("buttons", big.NewInt(9))

	code, body := f.get(t, "/api/io/my_io/buttons")
	assert.Equal(t, http.StatusOK, code)
	pv := &srv.ProbeValue{}
	assert.NoError(t, json.Unmarshal(body, pv))
	assert.Equal(t, "9", pv.Value)

	code, _ = f.post(t, "/api/io/my_io/led", &srv.ProbeValue{Value: "0xA5"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0xA5), f.io.Output("led").Int64())

	code, _ = f.post(t, "/api/io/my_io/led", &srv.ProbeValue{Value: "256"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.post(t, "/api/io/my_io/led", &srv.ProbeValue{Value: "lots"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.post(t, "/api/io/my_io/buttons", &srv.ProbeValue{Value: "1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = f.get(t, "/api/io/my_io/nope")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.get(t, "/api/io/nope/led")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.get(t, "/api/io/my_mem/led")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMemory(t *testing.T) {
	f := newFixture(t, false)
	code, _ := f.post(t, "/api/mem/my_mem/write", &srv.MemWrite{Addrs: []int{0, 15}, Data: []string{"0xFFFFF", "12"}})
	assert.Equal(t, http.StatusOK, code)

	code, body := f.post(t, "/api/mem/my_mem/read", &srv.MemRead{Addrs: []int{15, 0, 1}})
	assert.Equal(t, http.StatusOK, code)
	data := &srv.MemData{}
	assert.NoError(t, json.Unmarshal(body, data))
	assert.Equal(t, []string{"12", "1048575", "0"}, data.Data)

	code, _ = f.post(t, "/api/mem/my_mem/read", &srv.MemRead{Addrs: []int{16}})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.post(t, "/api/mem/my_mem/write", &srv.MemWrite{Addrs: []int{0}, Data: []string{"0x100000"}})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = f.post(t, "/api/mem/nope/read", &srv.MemRead{Addrs: []int{0}})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCapture(t *testing.T) {
	f := newFixture(t, true)

	code, body := f.post(t, "/api/la/my_la/capture", &srv.CaptureRequest{Triggers: []string{"b EQ 5"}})
	assert.Equal(t, http.StatusOK, code)
	record := &capture.Record{}
	assert.NoError(t, json.Unmarshal(body, record))
	assert.Equal(t, uint64(1), record.ID)
	assert.Len(t, record.Samples, 8)
	assert.Equal(t, "0x8", record.Samples[0])
	assert.Equal(t, uint64(5), f.la.Armed().Args["b"].Uint64())

	code, body = f.get(t, "/api/la/my_la/captures")
	assert.Equal(t, http.StatusOK, code)
	var summaries []*store.Summary
	assert.NoError(t, json.Unmarshal(body, &summaries))
	assert.Len(t, summaries, 1)
	assert.Equal(t, "single_shot", summaries[0].TriggerMode)

	code, body = f.get(t, "/api/la/my_la/captures/1")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"core":"my_la"`)

	code, body = f.get(t, "/api/la/my_la/captures/1/csv")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(string(body), "a,b\n0,4\n"))
	code, body = f.get(t, "/api/la/my_la/captures/1/vcd")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "$var wire 7 $ b $end")
	code, body = f.get(t, "/api/la/my_la/captures/1/v")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "module my_la_playback")

	code, _ = f.get(t, "/api/la/my_la/captures/2")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = f.get(t, "/api/la/my_io/captures")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCaptureBadSettings(t *testing.T) {
	f := newFixture(t, false)
	code, _ := f.post(t, "/api/la/my_la/capture", &srv.CaptureRequest{Triggers: []string{"c EQ 1"}})
	assert.Equal(t, http.StatusBadRequest, code)
	loc := 8
	code, _ = f.post(t, "/api/la/my_la/capture", &srv.CaptureRequest{TriggerLocation: &loc})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 0, f.la.Starts())

	code, _ = f.get(t, "/api/la/my_la/captures")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCaptureStuck(t *testing.T) {
	f := newFixture(t, false)
	f.la.PollsUntilCaptured = 1 << 30
	code, _ := f.post(t, "/api/la/my_la/capture", &srv.CaptureRequest{Timeout: 0.05})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestDocs(t *testing.T) {
	f := newFixture(t, false)
	code, body := f.get(t, srv.SwaggerPath)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "/api/la/{core}/capture")

	code, body = f.get(t, "/"+srv.DocsPath)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go-manta API")
}
