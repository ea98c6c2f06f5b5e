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
	// BusLayerNum identifies the layer
	BusLayerNum = 1997
	// RequestSize is the size of one request record in bytes
	RequestSize = 8

	OpRead  uint32 = 0
	OpWrite uint32 = 1
)

// BusLayer is a batch of bus requests packed into one datagram.
// Each request is 8 bytes little-endian: op (4 bytes), addr (2 bytes), data (2 bytes).
type BusLayer struct {
	layers.BaseLayer
	Requests []*bus.Request
}

var BusLayerType = gopacket.RegisterLayerType(BusLayerNum,
	gopacket.LayerTypeMetadata{Name: "BusLayerType", Decoder: gopacket.DecodeFunc(DecodeBusLayer)})

// LayerType returns the type of the bus request layer in the layer catalog
func (l *BusLayer) LayerType() gopacket.LayerType {
	return BusLayerType
}

// Serialize writes the request records to buf which must hold
// RequestSize * len(l.Requests) bytes.
func (l *BusLayer) Serialize(buf []byte) {
	for i, req := range l.Requests {
		offset := i * RequestSize
		op := OpRead
		data := uint16(0)
		if req.Write {
			op = OpWrite
			data = req.Data
		}
		binary.LittleEndian.PutUint32(buf[offset:offset+4], op)
		binary.LittleEndian.PutUint16(buf[offset+4:offset+6], req.Addr)
		binary.LittleEndian.PutUint16(buf[offset+6:offset+8], data)
	}
}

// SerializeTo serializes the request batch into bytes and writes the bytes to the SerializeBuffer
func (l *BusLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(RequestSize * len(l.Requests))
	if err != nil {
		return err
	}
	l.Serialize(bytes)
	return nil
}

func (l *BusLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data)%RequestSize != 0 {
		df.SetTruncated()
		return bus.ErrDecode{What: fmt.Sprintf("request batch length %d is not a multiple of %d", len(data), RequestSize), Frame: data}
	}
	l.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	l.Requests = make([]*bus.Request, 0, len(data)/RequestSize)
	for offset := 0; offset < len(data); offset += RequestSize {
		op := binary.LittleEndian.Uint32(data[offset : offset+4])
		if op != OpRead && op != OpWrite {
			return bus.ErrDecode{What: fmt.Sprintf("unknown operation %d", op), Frame: data[offset : offset+RequestSize]}
		}
		l.Requests = append(l.Requests, &bus.Request{
			Write: op == OpWrite,
			Addr:  binary.LittleEndian.Uint16(data[offset+4 : offset+6]),
			Data:  binary.LittleEndian.Uint16(data[offset+6 : offset+8]),
			Last:  offset+RequestSize == len(data),
		})
	}
	return nil
}

func (l *BusLayer) CanDecode() gopacket.LayerClass {
	return BusLayerType
}

func (l *BusLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func DecodeBusLayer(data []byte, p gopacket.PacketBuilder) error {
	l := &BusLayer{}
	err := l.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}

// RequestsToBytes encodes a batch of requests as a datagram payload
func RequestsToBytes(reqs []*bus.Request) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	err := gopacket.SerializeLayers(buf, opts, &BusLayer{Requests: reqs})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesToRequests decodes a datagram payload into a batch of requests
func BytesToRequests(data []byte) ([]*bus.Request, error) {
	packet := gopacket.NewPacket(data, BusLayerType, gopacket.Default)
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	l, ok := packet.Layer(BusLayerType).(*BusLayer)
	if !ok {
		return nil, bus.ErrDecode{What: "no bus layer in datagram", Frame: data}
	}
	return l.Requests, nil
}
