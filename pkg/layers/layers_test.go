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

package layers

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"jinr.ru/greenlab/go-manta/pkg/bus"
)

func TestReadRequestBytes(t *testing.T) {
	data, err := RequestsToBytes(bus.ReadRequests([]uint16{0x1234}))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x34, 0x12, 0x00, 0x00}, data)
}

func TestWriteRequestBytes(t *testing.T) {
	reqs, err := bus.WriteRequests([]uint16{0x0001, 0xbeef}, []uint16{0xcafe, 0x0102})
	assert.NoError(t, err)
	data, err := RequestsToBytes(reqs)
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0xfe, 0xca,
		0x01, 0x00, 0x00, 0x00, 0xef, 0xbe, 0x02, 0x01,
	}, data)

	decoded, err := BytesToRequests(data)
	assert.NoError(t, err)
	assert.Len(t, decoded, 2)
	assert.True(t, decoded[0].Write)
	assert.Equal(t, uint16(0xbeef), decoded[1].Addr)
	assert.Equal(t, uint16(0x0102), decoded[1].Data)
	assert.False(t, decoded[0].Last)
	assert.True(t, decoded[1].Last)
}

func TestReplyDecode(t *testing.T) {
	data, err := BytesToReplies([]byte{0xaa, 0xbb, 0x00, 0x00})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0xbbaa}, data)

	// upper half is ignored
	data, err = BytesToReplies([]byte{0x01, 0x00, 0xff, 0xff, 0x02, 0x00, 0x00, 0x00})
	assert.NoError(t, err)
	assert.Equal(t, []uint16{1, 2}, data)
}

func TestReplyEncode(t *testing.T) {
	data, err := RepliesToBytes([]uint16{0xbbaa, 0x0001})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, data)
}

func TestReplyTruncated(t *testing.T) {
	_, err := BytesToReplies([]byte{0xaa, 0xbb, 0x00})
	assert.Error(t, err)
	var decodeErr bus.ErrDecode
	assert.True(t, errors.As(err, &decodeErr))
}

func TestRequestUnknownOp(t *testing.T) {
	_, err := BytesToRequests([]byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	assert.Error(t, err)
}
