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
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/imroc/req"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/command/ifc"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv"
	"jinr.ru/greenlab/go-manta/pkg/store"
)

// ApiClient talks to a running go-manta API server
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

var _ ifc.ApiClient = &ApiClient{}

func NewApiClient(cfg *config.Config) *ApiClient {
	server := cfg.Server
	if server == "" {
		server = fmt.Sprintf("http://%s:%d", cfg.ApiAddress, cfg.ApiPort)
	}
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: strings.TrimSuffix(server, "/") + "/api",
	}
}

func (c *ApiClient) ioUrl(core, probe string) string {
	return fmt.Sprintf("%s/io/%s/%s", c.ApiPrefix, core, probe)
}

func (c *ApiClient) memUrl(core, action string) string {
	return fmt.Sprintf("%s/mem/%s/%s", c.ApiPrefix, core, action)
}

func (c *ApiClient) laUrl(core, path string) string {
	return fmt.Sprintf("%s/la/%s/%s", c.ApiPrefix, core, path)
}

// checkStatus turns a non 200 response into an error carrying the
// message written by the server
func checkStatus(r *req.Resp) error {
	if r.Response().StatusCode != http.StatusOK {
		return errors.Errorf("%s: %s", r.Response().Status, strings.TrimSpace(r.String()))
	}
	return nil
}

func parseValues(data []string) ([]*big.Int, error) {
	result := make([]*big.Int, len(data))
	for i, d := range data {
		v, ok := new(big.Int).SetString(d, 0)
		if !ok {
			return nil, errors.Errorf("server returned %q which is not an integer", d)
		}
		result[i] = v
	}
	return result, nil
}

// Cores returns the memory map of the design served
func (c *ApiClient) Cores() ([]*manta.CoreDescription, error) {
	r, err := req.Get(fmt.Sprintf("%s/cores", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var cores []*manta.CoreDescription
	if err := r.ToJSON(&cores); err != nil {
		return nil, err
	}
	return cores, nil
}

// GetProbe sends request to read a probe of an IO core
func (c *ApiClient) GetProbe(core, probe string) (*big.Int, error) {
	r, err := req.Get(c.ioUrl(core, probe))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	pv := &srv.ProbeValue{}
	if err := r.ToJSON(pv); err != nil {
		return nil, err
	}
	values, err := parseValues([]string{pv.Value})
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// SetProbe sends request to write an output probe of an IO core
func (c *ApiClient) SetProbe(core, probe string, value *big.Int) error {
	r, err := req.Post(c.ioUrl(core, probe), req.BodyJSON(&srv.ProbeValue{Value: value.String()}))
	if err != nil {
		return err
	}
	return checkStatus(r)
}

// MemRead sends request to read entries of a memory core
func (c *ApiClient) MemRead(core string, addrs []int) ([]*big.Int, error) {
	r, err := req.Post(c.memUrl(core, "read"), req.BodyJSON(&srv.MemRead{Addrs: addrs}))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	data := &srv.MemData{}
	if err := r.ToJSON(data); err != nil {
		return nil, err
	}
	return parseValues(data.Data)
}

// MemWrite sends request to write entries of a memory core
func (c *ApiClient) MemWrite(core string, addrs []int, values []*big.Int) error {
	mw := &srv.MemWrite{Addrs: addrs, Data: make([]string, len(values))}
	for i, v := range values {
		mw.Data[i] = v.String()
	}
	r, err := req.Post(c.memUrl(core, "write"), req.BodyJSON(mw))
	if err != nil {
		return err
	}
	return checkStatus(r)
}

// Capture sends request to run a logic analyzer capture and waits for the result
func (c *ApiClient) Capture(core string, cr *srv.CaptureRequest) (*capture.Record, error) {
	if cr == nil {
		cr = &srv.CaptureRequest{}
	}
	r, err := req.Post(c.laUrl(core, "capture"), req.BodyJSON(cr))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	record := &capture.Record{}
	if err := r.ToJSON(record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListCaptures sends request to list captures stored by the server
func (c *ApiClient) ListCaptures(core string) ([]*store.Summary, error) {
	r, err := req.Get(c.laUrl(core, "captures"))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	var summaries []*store.Summary
	if err := r.ToJSON(&summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetCapture sends request to get a stored capture
func (c *ApiClient) GetCapture(core string, id uint64) (*capture.Record, error) {
	r, err := req.Get(c.laUrl(core, fmt.Sprintf("captures/%d", id)))
	if err != nil {
		return nil, err
	}
	if err := checkStatus(r); err != nil {
		return nil, err
	}
	record := &capture.Record{}
	if err := r.ToJSON(record); err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteCapture sends request to delete a stored capture
func (c *ApiClient) DeleteCapture(core string, id uint64) error {
	r, err := req.Delete(c.laUrl(core, fmt.Sprintf("captures/%d", id)))
	if err != nil {
		return err
	}
	return checkStatus(r)
}

func (c *ApiClient) Close() error {
	return nil
}
