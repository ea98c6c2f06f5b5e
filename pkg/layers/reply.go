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
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-manta/pkg/bus"
)

const (
	// ReplyLayerNum identifies the layer
	ReplyLayerNum = 1996
	// ReplySize is the size of one reply record in bytes
	ReplySize = 4
)

// ReplyLayer holds read replies. Every record is 4 bytes little-endian,
// the data word sits in the low half and the high half is ignored.
type ReplyLayer struct {
	layers.BaseLayer
	Data []uint16
}

var ReplyLayerType = gopacket.RegisterLayerType(ReplyLayerNum,
	gopacket.LayerTypeMetadata{Name: "ReplyLayerType", Decoder: gopacket.DecodeFunc(DecodeReplyLayer)})

// LayerType returns the type of the reply layer in the layer catalog
func (l *ReplyLayer) LayerType() gopacket.LayerType {
	return ReplyLayerType
}

func (l *ReplyLayer) Serialize(buf []byte) {
	for i, word := range l.Data {
		offset := i * ReplySize
		binary.LittleEndian.PutUint32(buf[offset:offset+ReplySize], uint32(word))
	}
}

// SerializeTo serializes the replies into bytes and writes the bytes to the SerializeBuffer
func (l *ReplyLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(ReplySize * len(l.Data))
	if err != nil {
		return err
	}
	l.Serialize(bytes)
	return nil
}

func (l *ReplyLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data)%ReplySize != 0 {
		df.SetTruncated()
		return bus.ErrDecode{What: fmt.Sprintf("reply length %d is not a multiple of %d", len(data), ReplySize), Frame: data}
	}
	l.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	l.Data = make([]uint16, 0, len(data)/ReplySize)
	for offset := 0; offset < len(data); offset += ReplySize {
		l.Data = append(l.Data, uint16(binary.LittleEndian.Uint32(data[offset:offset+ReplySize])&0xffff))
	}
	return nil
}

func (l *ReplyLayer) CanDecode() gopacket.LayerClass {
	return ReplyLayerType
}

func (l *ReplyLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func DecodeReplyLayer(data []byte, p gopacket.PacketBuilder) error {
	l := &ReplyLayer{}
	err := l.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

// RepliesToBytes encodes read replies as a datagram payload
func RepliesToBytes(data []uint16) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	err := gopacket.SerializeLayers(buf, opts, &ReplyLayer{Data: data})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToReplies decodes a reply payload into data words
func BytesToReplies(data []byte) ([]uint16, error) {
	packet := gopacket.NewPacket(data, ReplyLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	l, ok := packet.Layer(ReplyLayerType).(*ReplyLayer)
	if !ok {
		return nil, bus.ErrDecode{What: "no reply layer in datagram", Frame: data}
	}
	return l.Data, nil
}
