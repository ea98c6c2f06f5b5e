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

package ifc

import (
	"math/big"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/manta"
	"jinr.ru/greenlab/go-manta/pkg/srv"
	"jinr.ru/greenlab/go-manta/pkg/store"
)

// ApiClient is implemented both by the REST client and by the local
// client driving the link directly.
type ApiClient interface {
	Cores() ([]*manta.CoreDescription, error)
	GetProbe(core, probe string) (*big.Int, error)
	SetProbe(core, probe string, value *big.Int) error
	MemRead(core string, addrs []int) ([]*big.Int, error)
	MemWrite(core string, addrs []int, values []*big.Int) error
	Capture(core string, req *srv.CaptureRequest) (*capture.Record, error)
	ListCaptures(core string) ([]*store.Summary, error)
	GetCapture(core string, id uint64) (*capture.Record, error)
	DeleteCapture(core string, id uint64) error
	Close() error
}
