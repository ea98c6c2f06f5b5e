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

package store

import (
	"errors"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/capture"
	"jinr.ru/greenlab/go-manta/pkg/config"
)

func testCapture(core string) *capture.Capture {
	wide, _ := new(big.Int).SetString("ffffffffffffffffffff", 16)
	return &capture.Capture{
		Core:            core,
		Probes:          []*capture.Probe{{Name: "a", Width: 80}},
		TriggerMode:     config.TriggerModeIncremental,
		TriggerLocation: 1,
		ClockFreq:       50000000,
		Timestamp:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Samples:         []*big.Int{big.NewInt(1), wide},
	}
}

func TestSaveLoad(t *testing.T) {
	s, err := NewCaptureStore(filepath.Join(t.TempDir(), "captures.db"))
	assert.NoError(t, err)
	defer s.Close()

	id, err := s.Save(testCapture("la"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	id, err = s.Save(testCapture("la"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), id)
	id, err = s.Save(testCapture("other"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	c, err := s.Load("la", 2)
	assert.NoError(t, err)
	assert.Equal(t, "ffffffffffffffffffff", c.Samples[1].Text(16))
	assert.Equal(t, config.TriggerModeIncremental, c.TriggerMode)
	assert.Equal(t, 50000000, c.ClockFreq)
	assert.True(t, c.Timestamp.Equal(testCapture("la").Timestamp))

	summaries, err := s.List("la")
	assert.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, uint64(2), summaries[1].ID)
	assert.Equal(t, 2, summaries[1].SampleDepth)

	summaries, err = s.List("none")
	assert.NoError(t, err)
	assert.Len(t, summaries, 0)
}

func TestNotFound(t *testing.T) {
	s, err := NewCaptureStore(filepath.Join(t.TempDir(), "captures.db"))
	assert.NoError(t, err)
	defer s.Close()

	var errNotFound ErrNotFound
	_, err = s.Load("la", 1)
	assert.True(t, errors.As(err, &errNotFound))

	_, err = s.Save(testCapture("la"))
	assert.NoError(t, err)
	_, err = s.Load("la", 7)
	assert.True(t, errors.As(err, &errNotFound))

	assert.NoError(t, s.Delete("la", 1))
	assert.True(t, errors.As(s.Delete("la", 1), &errNotFound))
}
