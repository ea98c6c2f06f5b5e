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
	"io"
	"time"

	"github.com/cesanta/go-serial/serial"
	"github.com/pkg/errors"

	"jinr.ru/greenlab/go-manta/pkg/bus"
	"jinr.ru/greenlab/go-manta/pkg/config"
	"jinr.ru/greenlab/go-manta/pkg/log"
	"jinr.ru/greenlab/go-manta/pkg/words"
)

const (
	// InterCharacterTimeout bounds a single blocking read on the port, in ms
	InterCharacterTimeout = 100
)

// Opener opens the named serial port
type Opener func(name string, baudrate int) (io.ReadWriteCloser, error)

// Transport carries the bus over the ASCII UART protocol. Reads are sent
// in chunks and each chunk's replies are drained before the next one is
// sent. Writes are sent in one piece since the device does not answer them.
type Transport struct {
	cfg    *config.UART
	opener Opener
	lister PortLister
	link   io.ReadWriteCloser
	port   string
	// stale is set when a read failed and late replies may still be queued
	stale bool
}

var _ bus.Bus = &Transport{}

type Option func(*Transport)

// WithOpener replaces the serial port opener
func WithOpener(opener Opener) Option {
	return func(t *Transport) {
		t.opener = opener
	}
}

// WithLister replaces the port lister used to resolve the auto port
func WithLister(lister PortLister) Option {
	return func(t *Transport) {
		t.lister = lister
	}
}

// WithLink makes the transport use an already open link
func WithLink(link io.ReadWriteCloser) Option {
	return func(t *Transport) {
		t.link = link
	}
}

// New validates the configuration. The port is opened on first use.
func New(cfg *config.UART, opts ...Option) (*Transport, error) {
	if cfg == nil {
		return nil, config.NewErrConfig("no uart configuration")
	}
	if cfg.Port == "" {
		return nil, config.NewErrConfig("uart port must be specified")
	}
	if err := CheckBaudrate(cfg.ClockFreq, cfg.Baudrate); err != nil {
		return nil, err
	}
	if cfg.ChunkSize <= 0 || cfg.StallInterval <= 0 {
		return nil, config.NewErrConfig("uart chunk_size and stall_interval must be positive")
	}
	if cfg.Timeout <= 0 {
		return nil, config.NewErrConfig("uart timeout must be positive")
	}
	t := &Transport{
		cfg:    cfg,
		opener: OpenSerial,
		lister: NewSysfsLister(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// OpenSerial opens a port with 8N1 framing.
func OpenSerial(name string, baudrate int) (io.ReadWriteCloser, error) {
	s, err := serial.Open(serial.OpenOptions{
		PortName:              name,
		BaudRate:              uint(baudrate),
		DataBits:              8,
		ParityMode:            serial.PARITY_NONE,
		StopBits:              1,
		HardwareFlowControl:   false,
		InterCharacterTimeout: InterCharacterTimeout,
		MinimumReadSize:       0,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", name)
	}
	return s, nil
}

// ChunkSize is the number of reads in flight before the host drains replies
func (t *Transport) ChunkSize() int {
	if t.cfg.StallInterval < t.cfg.ChunkSize {
		return t.cfg.StallInterval
	}
	return t.cfg.ChunkSize
}

// Port returns the name of the opened port, empty before first use
func (t *Transport) Port() string {
	return t.port
}

func (t *Transport) open() error {
	if t.link != nil {
		return nil
	}
	name := t.cfg.Port
	if name == config.AutoPort {
		var err error
		name, err = SelectPort(t.lister)
		if err != nil {
			return err
		}
	}
	link, err := t.opener(name, t.cfg.Baudrate)
	if err != nil {
		return bus.ErrTransport{What: fmt.Sprintf("opening port %s", name), Err: err}
	}
	log.Info("Opened serial port %s at %d baud", name, t.cfg.Baudrate)
	t.link = link
	t.port = name
	return nil
}

func (t *Transport) Read(addrs []uint16) ([]uint16, error) {
	if len(addrs) == 0 {
		return []uint16{}, nil
	}
	if err := t.open(); err != nil {
		return nil, err
	}
	result := make([]uint16, 0, len(addrs))
	for _, chunk := range words.Chunks(addrs, t.ChunkSize()) {
		log.Debug("UART read chunk of %d addresses starting at 0x%04X", len(chunk), chunk[0])
		if t.stale {
			if err := t.discard(); err != nil {
				return nil, err
			}
		}
		if err := t.send(EncodeRequests(bus.ReadRequests(chunk))); err != nil {
			return nil, err
		}
		replies, err := t.receive(ReplyFrameSize * len(chunk))
		if err != nil {
			t.stale = true
			return nil, err
		}
		for offset := 0; offset < len(replies); offset += ReplyFrameSize {
			data, err := DecodeReply(replies[offset : offset+ReplyFrameSize])
			if err != nil {
				t.stale = true
				return nil, err
			}
			result = append(result, data)
		}
	}
	return result, nil
}

func (t *Transport) Write(addrs []uint16, data []uint16) error {
	reqs, err := bus.WriteRequests(addrs, data)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}
	if err := t.open(); err != nil {
		return err
	}
	log.Debug("UART write of %d addresses", len(reqs))
	return t.send(EncodeRequests(reqs))
}

func (t *Transport) Close() error {
	if t.link == nil {
		return nil
	}
	err := t.link.Close()
	t.link = nil
	t.stale = false
	log.Info("Closed serial port %s", t.port)
	if err != nil {
		return bus.ErrTransport{What: "closing port", Err: err}
	}
	return nil
}

func (t *Transport) send(buf []byte) error {
	n, err := t.link.Write(buf)
	if err != nil {
		return bus.ErrTransport{What: "writing to port", Err: err}
	}
	if n != len(buf) {
		return bus.ErrTransport{What: fmt.Sprintf("short write: %d of %d bytes", n, len(buf))}
	}
	return nil
}

// receive reads exactly n bytes or fails once the read timeout elapses
func (t *Transport) receive(n int) ([]byte, error) {
	timeout := t.cfg.ReadTimeout()
	deadline := time.Now().Add(timeout)
	buf := make([]byte, n)
	got := 0
	for got < n {
		k, err := t.link.Read(buf[got:])
		got += k
		if err != nil && err != io.EOF {
			return nil, bus.ErrTransport{What: "reading from port", Err: err}
		}
		if got < n && time.Now().After(deadline) {
			return nil, bus.ErrTimeout{Expected: n, Received: got, Timeout: timeout}
		}
		if k == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return buf, nil
}

// discard drops whatever is buffered on the port until a read comes back
// empty, so replies to a failed read are not taken for the next ones
func (t *Transport) discard() error {
	deadline := time.Now().Add(t.cfg.ReadTimeout())
	buf := make([]byte, 256)
	dropped := 0
	for {
		k, err := t.link.Read(buf)
		dropped += k
		if err != nil && err != io.EOF {
			return bus.ErrTransport{What: "reading from port", Err: err}
		}
		if k == 0 || time.Now().After(deadline) {
			break
		}
	}
	if dropped > 0 {
		log.Debug("UART discarded %d stale bytes", dropped)
	}
	t.stale = false
	return nil
}
