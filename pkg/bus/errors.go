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

package bus

import (
	"fmt"
	"time"
)

// ErrTransport is returned on short reads, socket or port failures and
// operations on a broken link.
type ErrTransport struct {
	What string
	Err  error
}

func (e ErrTransport) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.What)
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// ErrDecode is returned when a reply frame does not follow the wire format.
type ErrDecode struct {
	What  string
	Frame []byte
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("decode error: %s: %q", e.What, e.Frame)
}

// ErrTimeout is returned when a reply deadline elapsed before all expected
// bytes arrived.
type ErrTimeout struct {
	Expected int
	Received int
	Timeout  time.Duration
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("timeout after %s: received %d of %d bytes", e.Timeout, e.Received, e.Expected)
}
