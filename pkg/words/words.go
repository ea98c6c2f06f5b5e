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

// Package words packs arbitrary width values into little-endian lists of
// 16-bit bus words and back.
package words

import (
	"math/big"

	"github.com/pkg/errors"
)

const (
	// WordBits is the width of a single bus word
	WordBits = 16
	wordMask = 0xffff
)

// NBanks returns the number of 16-bit words needed to hold width bits.
func NBanks(width int) int {
	return (width + WordBits - 1) / WordBits
}

// Mask returns 2^width - 1.
func Mask(width int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return m.Sub(m, big.NewInt(1))
}

// Fits reports whether v can be represented in width bits either as an
// unsigned or as a two's complement signed number.
func Fits(v *big.Int, width int) bool {
	if width <= 0 {
		return false
	}
	if v.Sign() >= 0 {
		return v.BitLen() <= width
	}
	// -2^(width-1) <= v
	min := new(big.Int).Lsh(big.NewInt(1), uint(width-1))
	min.Neg(min)
	return v.Cmp(min) >= 0
}

// FitsUnsigned reports whether 0 <= v < 2^width.
func FitsUnsigned(v *big.Int, width int) bool {
	return v.Sign() >= 0 && v.BitLen() <= width
}

// Wrap returns v modulo 2^width as a non-negative number, which is the
// two's complement representation of negative values.
func Wrap(v *big.Int, width int) *big.Int {
	return new(big.Int).And(v, Mask(width))
}

// ValueToWords splits a non-negative value into n little-endian 16-bit words.
func ValueToWords(v *big.Int, n int) ([]uint16, error) {
	if v.Sign() < 0 {
		return nil, errors.Errorf("can not split negative value %s into words", v.String())
	}
	if v.BitLen() > n*WordBits {
		return nil, errors.Errorf("value %s does not fit in %d words", v.String(), n)
	}
	result := make([]uint16, n)
	rest := new(big.Int).Set(v)
	w := new(big.Int)
	for i := 0; i < n; i++ {
		w.And(rest, big.NewInt(wordMask))
		result[i] = uint16(w.Uint64())
		rest.Rsh(rest, WordBits)
	}
	return result, nil
}

// WordsToValue concatenates little-endian 16-bit words into one value.
func WordsToValue(ws []uint16) *big.Int {
	v := new(big.Int)
	for i := len(ws) - 1; i >= 0; i-- {
		v.Lsh(v, WordBits)
		v.Or(v, big.NewInt(int64(ws[i])))
	}
	return v
}

// Slice returns bits [lower, lower+width) of v.
func Slice(v *big.Int, lower, width int) *big.Int {
	s := new(big.Int).Rsh(v, uint(lower))
	return s.And(s, Mask(width))
}

// Chunks splits s into consecutive pieces of at most size elements.
func Chunks(s []uint16, size int) [][]uint16 {
	if size <= 0 {
		size = len(s)
	}
	var result [][]uint16
	for start := 0; start < len(s); start += size {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		result = append(result, s[start:end])
	}
	return result
}
