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

package words

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNBanks(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{1, 1}, {16, 1}, {17, 2}, {32, 2}, {33, 3}, {128, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NBanks(tt.width))
	}
}

func TestFits(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		width int
		want  bool
	}{
		{"max unsigned", 15, 4, true},
		{"overflow", 16, 4, false},
		{"min signed", -8, 4, true},
		{"below min signed", -9, 4, false},
		{"single bit one", 1, 1, true},
		{"single bit minus one", -1, 1, true},
		{"zero width", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fits(big.NewInt(tt.value), tt.width))
		})
	}
}

func TestWrapNegative(t *testing.T) {
	assert.Equal(t, uint64(0xff), Wrap(big.NewInt(-1), 8).Uint64())
	assert.Equal(t, uint64(0x80), Wrap(big.NewInt(-128), 8).Uint64())
	assert.Equal(t, uint64(5), Wrap(big.NewInt(5), 8).Uint64())
}

func TestValueToWords(t *testing.T) {
	v, ok := new(big.Int).SetString("100000001", 16)
	assert.True(t, ok)
	ws, err := ValueToWords(v, 3)
	assert.NoError(t, err)
	assert.Equal(t, []uint16{0x0001, 0x0000, 0x0001}, ws)

	_, err = ValueToWords(v, 2)
	assert.Error(t, err)
	_, err = ValueToWords(big.NewInt(-1), 2)
	assert.Error(t, err)
}

func TestWordsRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 1; n <= 8; n++ {
		ws := make([]uint16, n)
		for i := range ws {
			ws[i] = uint16(rnd.Intn(0x10000))
		}
		got, err := ValueToWords(WordsToValue(ws), n)
		assert.NoError(t, err)
		assert.Equal(t, ws, got)
	}
}

func TestSlice(t *testing.T) {
	v := big.NewInt(0xabcd)
	assert.Equal(t, uint64(0xd), Slice(v, 0, 4).Uint64())
	assert.Equal(t, uint64(0xbc), Slice(v, 4, 8).Uint64())
	assert.Equal(t, uint64(0xa), Slice(v, 12, 4).Uint64())
}

func TestChunks(t *testing.T) {
	s := []uint16{1, 2, 3, 4, 5}
	chunks := Chunks(s, 2)
	assert.Len(t, chunks, 3)
	assert.Equal(t, []uint16{5}, chunks[2])
	assert.Len(t, Chunks(nil, 4), 0)
}
