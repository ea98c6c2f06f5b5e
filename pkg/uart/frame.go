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

package uart

import (
	"fmt"
	"strconv"

	"jinr.ru/greenlab/go-manta/pkg/bus"
)

const (
	ReadFrameSize  = 7
	WriteFrameSize = 11
	ReplyFrameSize = 7
)

// EncodeRequest returns the ASCII frame for a bus request:
// R<addr>\r\n for reads and W<addr><data>\r\n for writes, upper case hex.
func EncodeRequest(req *bus.Request) []byte {
	if req.Write {
		return []byte(fmt.Sprintf("W%04X%04X\r\n", req.Addr, req.Data))
	}
	return []byte(fmt.Sprintf("R%04X\r\n", req.Addr))
}

// EncodeRequests concatenates the frames of a batch
func EncodeRequests(reqs []*bus.Request) []byte {
	buf := make([]byte, 0, len(reqs)*WriteFrameSize)
	for _, req := range reqs {
		buf = append(buf, EncodeRequest(req)...)
	}
	return buf
}

// EncodeReply returns the D<data>\r\n frame sent by the device for a read.
func EncodeReply(data uint16) []byte {
	return []byte(fmt.Sprintf("D%04X\r\n", data))
}

// DecodeReply parses exactly one reply frame.
func DecodeReply(frame []byte) (uint16, error) {
	if len(frame) != ReplyFrameSize {
		return 0, bus.ErrDecode{What: fmt.Sprintf("reply must be %d bytes, got %d", ReplyFrameSize, len(frame)), Frame: frame}
	}
	if frame[0] != 'D' {
		return 0, bus.ErrDecode{What: "bad reply preamble", Frame: frame}
	}
	value, err := parseHex(frame[1:5])
	if err != nil {
		return 0, bus.ErrDecode{What: err.Error(), Frame: frame}
	}
	if frame[5] != '\r' || frame[6] != '\n' {
		return 0, bus.ErrDecode{What: "reply must end with CRLF", Frame: frame}
	}
	return value, nil
}

// DecodeRequest parses one request frame including the CRLF terminator.
func DecodeRequest(frame []byte) (*bus.Request, error) {
	n := len(frame)
	if n < 2 || frame[n-2] != '\r' || frame[n-1] != '\n' {
		return nil, bus.ErrDecode{What: "request must end with CRLF", Frame: frame}
	}
	switch {
	case n == ReadFrameSize && frame[0] == 'R':
		addr, err := parseHex(frame[1:5])
		if err != nil {
			return nil, bus.ErrDecode{What: err.Error(), Frame: frame}
		}
		return &bus.Request{Addr: addr}, nil
	case n == WriteFrameSize && frame[0] == 'W':
		addr, err := parseHex(frame[1:5])
		if err != nil {
			return nil, bus.ErrDecode{What: err.Error(), Frame: frame}
		}
		data, err := parseHex(frame[5:9])
		if err != nil {
			return nil, bus.ErrDecode{What: err.Error(), Frame: frame}
		}
		return &bus.Request{Addr: addr, Data: data, Write: true}, nil
	}
	return nil, bus.ErrDecode{What: "unknown request", Frame: frame}
}

// parseHex accepts exactly four upper case hex digits
func parseHex(digits []byte) (uint16, error) {
	for _, c := range digits {
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
			return 0, fmt.Errorf("invalid hex digit %q", c)
		}
	}
	v, err := strconv.ParseUint(string(digits), 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
