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

package devsim

import (
	"bytes"
	"io"
	"sync"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/uart"
)

// UARTLink is the device end of a serial line. Bytes written by the host
// are parsed into request frames and handled by the device, replies are
// queued for the host to read. Reads never block.
type UARTLink struct {
	dev *Device

	mu      sync.Mutex
	written bytes.Buffer
	line    []byte
	out     bytes.Buffer
	closed  bool

	// Reply can rewrite or drop (by returning nil) each reply frame
	Reply func(frame []byte) []byte
}

var _ io.ReadWriteCloser = &UARTLink{}

func NewUARTLink(d *Device) *UARTLink {
	return &UARTLink{dev: d}
}

func (l *UARTLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	l.written.Write(p)
	for _, c := range p {
		l.line = append(l.line, c)
		if c != '\n' {
			continue
		}
		req, err := uart.DecodeRequest(l.line)
		l.line = nil
		if err != nil {
			log.Debug("Device dropped frame: %s", err)
			continue
		}
		for _, data := range l.dev.Handle([]*bus.Request{req}) {
			frame := uart.EncodeReply(data)
			if l.Reply != nil {
				frame = l.Reply(frame)
			}
			l.out.Write(frame)
		}
	}
	return len(p), nil
}

func (l *UARTLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	if l.out.Len() == 0 {
		return 0, nil
	}
	return l.out.Read(p)
}

func (l *UARTLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Written returns every byte the host has sent
func (l *UARTLink) Written() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written.String()
}

// ResetWritten forgets the bytes sent so far
func (l *UARTLink) ResetWritten() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.written.Reset()
}

// Closed reports whether the host closed the link
func (l *UARTLink) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
