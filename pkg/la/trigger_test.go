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

package la

import (
	"errors"
	"math/big"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/config"
)

func TestParseTrigger(t *testing.T) {
	probes := []*config.Probe{{Name: "probe2", Width: 6}, {Name: "clk", Width: 1}}

	tr, err := ParseTrigger("clk RISING", probes)
	assert.NoError(t, err)
	assert.Equal(t, OpRising, tr.Op)
	assert.Equal(t, "clk RISING", tr.String())

	tr, err = ParseTrigger("probe2  GEQ 0x3f", probes)
	assert.NoError(t, err)
	assert.Equal(t, OpGEQ, tr.Op)
	assert.Equal(t, int64(63), tr.Arg.Int64())
	assert.Equal(t, "probe2 GEQ 63", tr.String())

	tr, err = ParseTrigger("probe2 DISABLE", probes)
	assert.NoError(t, err)
	assert.Equal(t, OpDisable, tr.Op)

	bad := []string{
		"probe2 LT 100",
		"probe2 LT 64",
		"probe2 LT -1",
		"probe2 LT",
		"probe2 RISING 1",
		"probe2 ABOVE 1",
		"probe3 RISING",
		"probe2",
		"probe2 EQ 1 2",
		"probe2 EQ one",
	}
	for _, s := range bad {
		t.Run(s, func(t *testing.T) {
			_, err := ParseTrigger(s, probes)
			var errConfig config.ErrConfig
			assert.True(t, errors.As(err, &errConfig))
		})
	}
}

func TestTriggerModes(t *testing.T) {
	for name, mode := range map[string]TriggerMode{
		config.TriggerModeSingleShot:  TriggerModeSingleShot,
		config.TriggerModeIncremental: TriggerModeIncremental,
		config.TriggerModeImmediate:   TriggerModeImmediate,
	} {
		parsed, err := ParseTriggerMode(name)
		assert.NoError(t, err)
		assert.Equal(t, mode, parsed)
		assert.Equal(t, name, mode.String())
	}
	assert.Equal(t, "CAPTURED", StateCaptured.String())
	assert.Equal(t, "UNKNOWN(9)", State(9).String())
}

func TestRotate(t *testing.T) {
	samples := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	rotated := Rotate(samples, 1)
	assert.Equal(t, int64(2), rotated[0].Int64())
	assert.Equal(t, int64(1), rotated[2].Int64())
	assert.Equal(t, int64(1), samples[0].Int64())
	assert.Len(t, Rotate(samples, 0), 3)
}
