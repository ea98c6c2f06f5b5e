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
	"math"

	"jinr.ru/greenlab/go-manta/pkg/config"
)

// MaxBaudError is the largest accepted relative baudrate error
const MaxBaudError = 0.05

// BaudError returns the relative error between the requested baudrate and
// the one produced by the integer clock divider.
func BaudError(clockFreq, baudrate int) (float64, error) {
	if clockFreq <= 0 || baudrate <= 0 {
		return 0, config.NewErrConfig("clock_freq and baudrate must be positive")
	}
	divider := clockFreq / baudrate
	if divider < 2 {
		return 0, config.NewErrConfig("clock_freq %d is too low for baudrate %d, divider must be at least 2", clockFreq, baudrate)
	}
	actual := float64(clockFreq) / float64(divider)
	return math.Abs(actual-float64(baudrate)) / float64(baudrate), nil
}

// CheckBaudrate rejects configurations whose baudrate error exceeds MaxBaudError.
func CheckBaudrate(clockFreq, baudrate int) error {
	e, err := BaudError(clockFreq, baudrate)
	if err != nil {
		return err
	}
	if e > MaxBaudError {
		return config.NewErrConfig("baudrate %d can not be produced from clock_freq %d: error is %.2f%%, maximum is %.0f%%",
			baudrate, clockFreq, 100*e, 100*MaxBaudError)
	}
	return nil
}
